package finance

// CashflowRow is one year of the amortization schedule.
type CashflowRow struct {
	Year        int
	Savings     float64
	RunningCost float64
	Net         float64
	Cumulative  float64
	BreakEven   bool // first year whose cumulative balance is non-negative
}

// Cashflow builds the year-by-year schedule over the configured horizon.
// The balance starts at the negative purchase price and accumulates the
// yearly net savings; the first non-negative year is flagged as the
// amortization year.
func Cashflow(principal float64, cfg Config) []CashflowRow {
	horizon := cfg.HorizonYears
	if horizon <= 0 {
		horizon = DefaultHorizonYears
	}

	rows := make([]CashflowRow, 0, horizon)
	cum := -principal
	marked := false

	for year := 1; year <= horizon; year++ {
		net := cfg.AnnualSavings - cfg.AnnualRunningCost
		cum += net
		row := CashflowRow{
			Year:        year,
			Savings:     cfg.AnnualSavings,
			RunningCost: cfg.AnnualRunningCost,
			Net:         net,
			Cumulative:  cum,
		}
		if !marked && cum >= 0 {
			row.BreakEven = true
			marked = true
		}
		rows = append(rows, row)
	}
	return rows
}

// AmortizationYear returns the flagged break-even year, or 0 when the
// schedule never reaches a non-negative balance within its horizon.
func AmortizationYear(rows []CashflowRow) int {
	for _, r := range rows {
		if r.BreakEven {
			return r.Year
		}
	}
	return 0
}
