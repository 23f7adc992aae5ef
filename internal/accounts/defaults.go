package accounts

import "github.com/tallyhq/tally/internal/model"

// Well-known transaction type ids seeded by DefaultTransactionTypes.
const (
	TypeIncome     = "income"
	TypeExpense    = "expense"
	TypeTransfer   = "transfer"
	TypeInvestment = "investment"
	TypeDonation   = "donation"
	TypeTax        = "tax"
	TypeSavings    = "savings"
	TypeDebt       = "debt"
)

// CategoryUncategorized is assigned to imports no rule has categorized.
const CategoryUncategorized = "uncategorized"

// DefaultAccounts returns the starter accounts for a new project.
func DefaultAccounts() []model.Account {
	return []model.Account{
		{ID: "checking", Name: "Checking", Type: model.AccountTypeChecking},
		{ID: "savings", Name: "Savings", Type: model.AccountTypeSavings},
		{ID: "credit-card", Name: "Credit Card", Type: model.AccountTypeCreditCard},
		{ID: "cash", Name: "Cash", Type: model.AccountTypeCash},
	}
}

// DefaultTransactionTypes returns one type per balance effect.
func DefaultTransactionTypes() []model.TransactionType {
	return []model.TransactionType{
		{ID: TypeIncome, Name: "Income", BalanceEffect: model.EffectIncome},
		{ID: TypeExpense, Name: "Purchase", BalanceEffect: model.EffectExpense},
		{ID: TypeTransfer, Name: "Transfer", BalanceEffect: model.EffectTransfer},
		{ID: TypeInvestment, Name: "Investment", BalanceEffect: model.EffectInvestment},
		{ID: TypeDonation, Name: "Donation", BalanceEffect: model.EffectDonation},
		{ID: TypeTax, Name: "Tax", BalanceEffect: model.EffectTax},
		{ID: TypeSavings, Name: "Savings", BalanceEffect: model.EffectSavings},
		{ID: TypeDebt, Name: "Debt Payment", BalanceEffect: model.EffectDebt},
	}
}

// DefaultCategories returns the starter categories.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: CategoryUncategorized, Name: "Uncategorized"},
		{ID: "groceries", Name: "Groceries"},
		{ID: "dining", Name: "Dining"},
		{ID: "transportation", Name: "Transportation"},
		{ID: "fuel", Name: "Fuel", ParentID: "transportation"},
		{ID: "housing", Name: "Housing"},
		{ID: "utilities", Name: "Utilities", ParentID: "housing"},
		{ID: "shopping", Name: "Shopping"},
		{ID: "entertainment", Name: "Entertainment"},
		{ID: "health", Name: "Health"},
		{ID: "salary", Name: "Salary"},
		{ID: "affiliate-income", Name: "Affiliate Income"},
	}
}
