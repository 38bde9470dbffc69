package accounts

// Grouped maps each group to its accounts in input order. The five named
// groups are always present; GroupOther only when an account needs it.
type Grouped map[Group][]Account

var displayOrder = []Group{GroupAssets, GroupLiabilities, GroupEquity, GroupIncome, GroupExpenses, GroupOther}

// GroupByTypeGroup partitions accounts by the group of their type.
func GroupByTypeGroup(accounts []Account) Grouped {
	grouped := make(Grouped, len(GroupOrder)+1)
	for _, g := range GroupOrder {
		grouped[g] = []Account{}
	}
	for _, acc := range accounts {
		g := GroupOf(acc.AccountType)
		grouped[g] = append(grouped[g], acc)
	}
	return grouped
}

// Section is one non-empty group ready for rendering.
type Section struct {
	Group    Group
	Accounts []Account
}

// Sections returns the non-empty groups in display order with Other last.
func (g Grouped) Sections() []Section {
	sections := make([]Section, 0, len(GroupOrder)+1)
	for _, group := range displayOrder {
		if accs := g[group]; len(accs) > 0 {
			sections = append(sections, Section{Group: group, Accounts: accs})
		}
	}
	return sections
}

// Flatten concatenates the buckets in display order with Other last.
func (g Grouped) Flatten() []Account {
	var out []Account
	for _, group := range displayOrder {
		out = append(out, g[group]...)
	}
	return out
}
