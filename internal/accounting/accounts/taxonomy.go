package accounts

// AccountType is one entry of the fixed account taxonomy.
type AccountType string

const (
	TypeBank                    AccountType = "Bank"
	TypeAccountsReceivable      AccountType = "Accounts Receivable"
	TypeOtherCurrentAssets      AccountType = "Other Current Assets"
	TypeFixedAssets             AccountType = "Fixed Assets"
	TypeOtherAssets             AccountType = "Other Assets"
	TypeAccountsPayable         AccountType = "Accounts Payable"
	TypeCreditCard              AccountType = "Credit Card"
	TypeOtherCurrentLiabilities AccountType = "Other Current Liabilities"
	TypeLongTermLiabilities     AccountType = "Long Term Liabilities"
	TypeEquity                  AccountType = "Equity"
	TypeIncome                  AccountType = "Income"
	TypeOtherIncome             AccountType = "Other Income"
	TypeCostOfGoodsSold         AccountType = "Cost of Goods Sold"
	TypeExpenses                AccountType = "Expenses"
	TypeOtherExpense            AccountType = "Other Expense"
)

// Group is a top-level section of the chart of accounts.
type Group string

const (
	GroupAssets      Group = "Assets"
	GroupLiabilities Group = "Liabilities"
	GroupEquity      Group = "Equity"
	GroupIncome      Group = "Income"
	GroupExpenses    Group = "Expenses"
	// GroupOther collects accounts whose type is not in the taxonomy.
	GroupOther Group = "Other"
)

// GroupOrder is the fixed display order of the named groups.
var GroupOrder = []Group{GroupAssets, GroupLiabilities, GroupEquity, GroupIncome, GroupExpenses}

// NormalBalance is the side on which an account increases.
type NormalBalance string

const (
	Debit  NormalBalance = "DEBIT"
	Credit NormalBalance = "CREDIT"
)

var accountTypes = []AccountType{
	TypeBank, TypeAccountsReceivable, TypeOtherCurrentAssets, TypeFixedAssets, TypeOtherAssets,
	TypeAccountsPayable, TypeCreditCard, TypeOtherCurrentLiabilities, TypeLongTermLiabilities,
	TypeEquity,
	TypeIncome, TypeOtherIncome,
	TypeCostOfGoodsSold, TypeExpenses, TypeOtherExpense,
}

var groupOfType = map[AccountType]Group{
	TypeBank:                    GroupAssets,
	TypeAccountsReceivable:      GroupAssets,
	TypeOtherCurrentAssets:      GroupAssets,
	TypeFixedAssets:             GroupAssets,
	TypeOtherAssets:             GroupAssets,
	TypeAccountsPayable:         GroupLiabilities,
	TypeCreditCard:              GroupLiabilities,
	TypeOtherCurrentLiabilities: GroupLiabilities,
	TypeLongTermLiabilities:     GroupLiabilities,
	TypeEquity:                  GroupEquity,
	TypeIncome:                  GroupIncome,
	TypeOtherIncome:             GroupIncome,
	TypeCostOfGoodsSold:         GroupExpenses,
	TypeExpenses:                GroupExpenses,
	TypeOtherExpense:            GroupExpenses,
}

// AccountTypes lists the taxonomy in display order.
func AccountTypes() []AccountType {
	return append([]AccountType(nil), accountTypes...)
}

// KnownType reports whether t is part of the taxonomy.
func KnownType(t AccountType) bool {
	_, ok := groupOfType[t]
	return ok
}

// GroupOf returns the group of t, or GroupOther for unknown types.
func GroupOf(t AccountType) Group {
	if g, ok := groupOfType[t]; ok {
		return g
	}
	return GroupOther
}

// DefaultNormalBalance is debit for asset and expense types, credit otherwise.
func DefaultNormalBalance(t AccountType) NormalBalance {
	switch GroupOf(t) {
	case GroupAssets, GroupExpenses:
		return Debit
	default:
		return Credit
	}
}
