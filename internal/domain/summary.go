package domain

import "github.com/shopspring/decimal"

type CategorySummary struct {
	FeeCategoryID   int64           `json:"fee_category_id"`
	FeeCategoryName string          `json:"fee_category_name"`
	TotalPayable    decimal.Decimal `json:"total_payable"`
	TotalCollected  decimal.Decimal `json:"total_collected"`
	TotalPending    decimal.Decimal `json:"total_pending"`
}

// MonthlyCategorySummary is the server's collection summary for one month.
type MonthlyCategorySummary struct {
	Month                   int               `json:"month"`
	SummaryByCategory       []CategorySummary `json:"summary_by_category"`
	TotalPayableThisMonth   decimal.Decimal   `json:"total_payable_this_month"`
	TotalCollectedThisMonth decimal.Decimal   `json:"total_collected_this_month"`
	TotalPendingThisMonth   decimal.Decimal   `json:"total_pending_this_month"`
}

// ZeroMonthlySummary is the row used when a month could not be fetched.
func ZeroMonthlySummary(month int) MonthlyCategorySummary {
	return MonthlyCategorySummary{
		Month:                   month,
		SummaryByCategory:       []CategorySummary{},
		TotalPayableThisMonth:   decimal.Zero,
		TotalCollectedThisMonth: decimal.Zero,
		TotalPendingThisMonth:   decimal.Zero,
	}
}
