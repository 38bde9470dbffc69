package accounts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxDepth bounds every traversal of account hierarchies.
const MaxDepth = 32

// ErrParentCycle reports accounts whose parent chain never reaches a root.
var ErrParentCycle = errors.New("accounts: parent reference cycle")

// ErrTooDeep reports a hierarchy deeper than MaxDepth.
var ErrTooDeep = errors.New("accounts: hierarchy exceeds maximum depth")

// CycleError lists the accounts cut off by a cycle.
type CycleError struct {
	IDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrParentCycle, strings.Join(e.IDs, ", "))
}

func (e *CycleError) Unwrap() error { return ErrParentCycle }

// BuildTree nests a flat list through parent references. Depth is
// recomputed from the nesting. Accounts whose parent is absent from the list
// become roots. Accounts caught in a cycle are left out and reported through
// a *CycleError; the rest of the tree is still returned.
func BuildTree(accounts []Account) (Tree, error) {
	known := make(map[string]struct{}, len(accounts))
	for _, acc := range accounts {
		known[acc.ID] = struct{}{}
	}
	children := make(map[string][]Account)
	var roots []Account
	for _, acc := range accounts {
		if acc.ParentID == nil || *acc.ParentID == "" {
			roots = append(roots, acc)
			continue
		}
		parent := *acc.ParentID
		if parent == acc.ID {
			continue
		}
		if _, ok := known[parent]; !ok {
			roots = append(roots, acc)
			continue
		}
		children[parent] = append(children[parent], acc)
	}

	b := treeBuilder{children: children, visited: make(map[string]struct{}, len(accounts))}
	tree := make(Tree, len(GroupOrder))
	for _, g := range GroupOrder {
		tree[g] = []TreeNode{}
	}
	for _, root := range roots {
		g := GroupOf(root.AccountType)
		tree[g] = append(tree[g], b.node(root, 0))
	}

	var errs []error
	if b.tooDeep {
		errs = append(errs, ErrTooDeep)
	}
	var cut []string
	for _, acc := range accounts {
		if _, ok := b.visited[acc.ID]; !ok {
			cut = append(cut, acc.ID)
		}
	}
	if len(cut) > 0 && !b.tooDeep {
		sort.Strings(cut)
		errs = append(errs, &CycleError{IDs: cut})
	}
	return tree, errors.Join(errs...)
}

type treeBuilder struct {
	children map[string][]Account
	visited  map[string]struct{}
	tooDeep  bool
}

func (b *treeBuilder) node(acc Account, depth int) TreeNode {
	b.visited[acc.ID] = struct{}{}
	n := TreeNode{
		ID:              acc.ID,
		AccountNumber:   acc.AccountNumber,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		Depth:           depth,
		CurrentBalance:  acc.CurrentBalance,
		IsSystemAccount: acc.IsSystemAccount,
		IsActive:        acc.IsActive,
		Children:        []TreeNode{},
	}
	if depth >= MaxDepth {
		if len(b.children[acc.ID]) > 0 {
			b.tooDeep = true
		}
		return n
	}
	for _, child := range b.children[acc.ID] {
		if _, seen := b.visited[child.ID]; seen {
			continue
		}
		n.Children = append(n.Children, b.node(child, depth+1))
	}
	return n
}
