package core

// Summary holds the dashboard totals derived from a loaded ledger.
type Summary struct {
	TotalIncome  Money
	TotalExpense Money
	NetProfit    Money
}

// ServiceAmount represents income aggregated by service name.
type ServiceAmount struct {
	Name   string
	Amount Money
}
