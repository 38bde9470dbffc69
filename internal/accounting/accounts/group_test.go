package accounts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/ledger-console/testing"
)

func acct(id string, t AccountType) Account {
	return Account{ID: id, Name: "Account " + id, AccountType: t, IsActive: true}
}

func TestGroupOfScenarios(t *testing.T) {
	require.Equal(t, GroupAssets, GroupOf("Bank"))
	require.Equal(t, GroupEquity, GroupOf("Equity"))
	require.Equal(t, GroupOther, GroupOf("Unknown-Type"))
	require.Equal(t, GroupExpenses, GroupOf(TypeCostOfGoodsSold))
	require.Equal(t, GroupLiabilities, GroupOf(TypeCreditCard))
}

func TestEveryTaxonomyTypeHasAGroup(t *testing.T) {
	types := AccountTypes()
	require.Len(t, types, 15)
	for _, typ := range types {
		require.NotEqual(t, GroupOther, GroupOf(typ), typ)
	}
}

func TestGroupByTypeGroupEmptyInput(t *testing.T) {
	grouped := GroupByTypeGroup(nil)
	require.Len(t, grouped, len(GroupOrder))
	for _, g := range GroupOrder {
		accs, ok := grouped[g]
		require.True(t, ok, g)
		require.Empty(t, accs)
	}
	_, hasOther := grouped[GroupOther]
	require.False(t, hasOther)
	require.Empty(t, grouped.Sections())
}

func TestGroupByTypeGroupPartitionsPreservingOrder(t *testing.T) {
	input := []Account{
		acct("1", TypeExpenses),
		acct("2", TypeBank),
		acct("3", "Unknown-Type"),
		acct("4", TypeEquity),
		acct("5", TypeFixedAssets),
		acct("6", TypeIncome),
		acct("7", TypeAccountsPayable),
		acct("8", "Crypto"),
		acct("9", TypeBank),
	}
	grouped := GroupByTypeGroup(input)

	ids := func(accs []Account) []string {
		out := make([]string, 0, len(accs))
		for _, a := range accs {
			out = append(out, a.ID)
		}
		return out
	}
	require.Equal(t, []string{"2", "5", "9"}, ids(grouped[GroupAssets]))
	require.Equal(t, []string{"7"}, ids(grouped[GroupLiabilities]))
	require.Equal(t, []string{"4"}, ids(grouped[GroupEquity]))
	require.Equal(t, []string{"6"}, ids(grouped[GroupIncome]))
	require.Equal(t, []string{"1"}, ids(grouped[GroupExpenses]))
	require.Equal(t, []string{"3", "8"}, ids(grouped[GroupOther]))

	flat := grouped.Flatten()
	require.ElementsMatch(t, input, flat)
	require.Len(t, flat, len(input))

	sections := grouped.Sections()
	require.Equal(t, GroupOther, sections[len(sections)-1].Group)
}

func TestGroupByTypeGroupIsIdempotent(t *testing.T) {
	var input []Account
	for i, typ := range append(AccountTypes(), "Other Thing") {
		input = append(input, acct(fmt.Sprint(i), typ))
	}
	require.Equal(t, GroupByTypeGroup(input), GroupByTypeGroup(input))
}

func TestSectionsSkipEmptyGroups(t *testing.T) {
	grouped := GroupByTypeGroup([]Account{acct("1", TypeIncome), acct("2", TypeBank)})
	sections := grouped.Sections()
	require.Len(t, sections, 2)
	require.Equal(t, GroupAssets, sections[0].Group)
	require.Equal(t, GroupIncome, sections[1].Group)
}

func TestDefaultNormalBalance(t *testing.T) {
	require.Equal(t, Debit, DefaultNormalBalance(TypeBank))
	require.Equal(t, Debit, DefaultNormalBalance(TypeOtherExpense))
	require.Equal(t, Credit, DefaultNormalBalance(TypeAccountsPayable))
	require.Equal(t, Credit, DefaultNormalBalance(TypeIncome))
}
