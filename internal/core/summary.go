package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount int64
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year          int
	Month         int // 1-12
	Income        int64
	Expense       int64
	TopCategories []CategoryAmount
}

// Net is income minus expense for the month.
func (o MonthOverview) Net() int64 {
	return o.Income - o.Expense
}
