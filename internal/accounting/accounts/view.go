package accounts

import (
	"sort"
)

// IndentUnit is the indent in pixels per level of depth.
const IndentUnit = 20

// Row is one visible line of the tree view.
type Row struct {
	ID              string      `json:"id"`
	AccountNumber   string      `json:"accountNumber,omitempty"`
	Name            string      `json:"name"`
	AccountType     AccountType `json:"accountType"`
	Group           Group       `json:"group"`
	Depth           int         `json:"depth"`
	IndentPx        int         `json:"indentPx"`
	HasChildren     bool        `json:"hasChildren"`
	Expanded        bool        `json:"expanded"`
	Balance         string      `json:"balance"`
	IsSystemAccount bool        `json:"isSystemAccount"`
	IsActive        bool        `json:"isActive"`
}

// TreeView renders a Tree with per-node expansion. Nodes start expanded;
// the view only remembers collapsed ids.
type TreeView struct {
	tree      Tree
	known     map[string]struct{}
	collapsed map[string]struct{}
}

// NewTreeView builds a view over tree with the given nodes collapsed.
// Collapsed ids that are not in the tree are dropped.
func NewTreeView(tree Tree, collapsed []string) *TreeView {
	v := &TreeView{tree: tree, known: make(map[string]struct{}), collapsed: make(map[string]struct{})}
	for _, g := range viewGroups(tree) {
		for _, n := range tree[g] {
			v.index(n, 0, make(map[string]struct{}))
		}
	}
	for _, id := range collapsed {
		if _, ok := v.known[id]; ok {
			v.collapsed[id] = struct{}{}
		}
	}
	return v
}

func (v *TreeView) index(n TreeNode, level int, path map[string]struct{}) {
	if level > MaxDepth {
		return
	}
	if _, loop := path[n.ID]; loop {
		return
	}
	v.known[n.ID] = struct{}{}
	path[n.ID] = struct{}{}
	for _, c := range n.Children {
		v.index(c, level+1, path)
	}
	delete(path, n.ID)
}

// Expanded reports whether id shows its children.
func (v *TreeView) Expanded(id string) bool {
	_, collapsed := v.collapsed[id]
	return !collapsed
}

// Toggle flips the expansion of id and returns the new state. ok is false
// when id is not in the tree.
func (v *TreeView) Toggle(id string) (expanded, ok bool) {
	if _, known := v.known[id]; !known {
		return false, false
	}
	if _, collapsed := v.collapsed[id]; collapsed {
		delete(v.collapsed, id)
		return true, true
	}
	v.collapsed[id] = struct{}{}
	return false, true
}

// Collapsed returns the collapsed ids in sorted order.
func (v *TreeView) Collapsed() []string {
	out := make([]string, 0, len(v.collapsed))
	for id := range v.collapsed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Rows returns the visible rows in display order. A collapsed node hides its
// whole subtree; descendants keep their own expansion state.
func (v *TreeView) Rows() []Row {
	var rows []Row
	for _, g := range viewGroups(v.tree) {
		for _, n := range v.tree[g] {
			rows = v.appendRows(rows, g, n, 0, make(map[string]struct{}))
		}
	}
	return rows
}

func (v *TreeView) appendRows(rows []Row, g Group, n TreeNode, level int, path map[string]struct{}) []Row {
	if level > MaxDepth {
		return rows
	}
	if _, loop := path[n.ID]; loop {
		return rows
	}
	expanded := v.Expanded(n.ID)
	rows = append(rows, Row{
		ID:              n.ID,
		AccountNumber:   n.AccountNumber,
		Name:            n.Name,
		AccountType:     n.AccountType,
		Group:           g,
		Depth:           n.Depth,
		IndentPx:        Indent(n.Depth),
		HasChildren:     len(n.Children) > 0,
		Expanded:        expanded,
		Balance:         FormatCurrency(n.CurrentBalance),
		IsSystemAccount: n.IsSystemAccount,
		IsActive:        n.IsActive,
	})
	if !expanded {
		return rows
	}
	path[n.ID] = struct{}{}
	for _, c := range n.Children {
		rows = v.appendRows(rows, g, c, level+1, path)
	}
	delete(path, n.ID)
	return rows
}

// Indent is the pixel indent of a node at depth.
func Indent(depth int) int {
	if depth < 0 {
		depth = 0
	}
	return IndentUnit * depth
}

// viewGroups lists the groups of tree in display order. Keys outside the
// taxonomy follow Other in name order.
func viewGroups(tree Tree) []Group {
	groups := make([]Group, 0, len(tree))
	seen := make(map[Group]struct{}, len(displayOrder))
	for _, g := range displayOrder {
		seen[g] = struct{}{}
		if _, ok := tree[g]; ok {
			groups = append(groups, g)
		}
	}
	var extra []Group
	for g := range tree {
		if _, ok := seen[g]; !ok {
			extra = append(extra, g)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(groups, extra...)
}
