package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"feedesk/internal/domain"
	"feedesk/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// WithDueAmounts derives due_amount = billed - paid for each record. It is
// applied once when the cumulative list is fetched.
func WithDueAmounts(records []domain.CumulativePaymentRecord) []domain.CumulativePaymentRecord {
	out := make([]domain.CumulativePaymentRecord, len(records))
	for i, r := range records {
		r.DueAmount = r.TotalFeesToBePaid.Sub(r.TotalFeesPaid)
		out[i] = r
	}
	return out
}

// ComputeStats aggregates the cumulative list into dashboard figures.
//
// A defaulter is a student with no payment at all. A partially paid student
// counts as paid even when an amount is still due.
func ComputeStats(records []domain.CumulativePaymentRecord) domain.PaymentStats {
	stats := domain.PaymentStats{
		TotalStudents:  len(records),
		TotalCollected: decimal.Zero,
		PendingFees:    decimal.Zero,
		CollectionRate: decimal.Zero,
	}

	for _, r := range records {
		stats.TotalCollected = stats.TotalCollected.Add(r.TotalFeesPaid)
		stats.PendingFees = stats.PendingFees.Add(r.DueAmount)
		if r.TotalFeesPaid.IsPositive() {
			stats.PaidStudents++
		}
	}
	stats.Defaulters = stats.TotalStudents - stats.PaidStudents
	stats.CollectionRate = CollectionRate(stats.TotalCollected, stats.PendingFees)

	return stats
}

// CollectionRate is collected / (collected + pending) as a percentage with
// two decimal places. It is zero when nothing is billed.
func CollectionRate(collected, pending decimal.Decimal) decimal.Decimal {
	billed := collected.Add(pending)
	if !billed.IsPositive() {
		return decimal.Zero
	}
	return collected.Div(billed).Mul(hundred).Round(2)
}

// MonthFetcher loads the summary for the month starting at target.
type MonthFetcher func(ctx context.Context, target domain.Date) (*domain.MonthlyCategorySummary, error)

// CollectMonthly fetches the twelve monthly summaries of year, at most limit
// at a time. Each month is independent: a failed month becomes a zero row and
// never aborts the others. The result is ordered January to December.
func CollectMonthly(ctx context.Context, year int, limit int, fetch MonthFetcher) []domain.MonthlyCategorySummary {
	rows := make([]domain.MonthlyCategorySummary, 12)

	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range rows {
		month := i + 1
		g.Go(func() error {
			rows[month-1] = fetchMonth(ctx, year, month, fetch)
			return nil
		})
	}
	_ = g.Wait()

	return rows
}

func fetchMonth(ctx context.Context, year, month int, fetch MonthFetcher) (row domain.MonthlyCategorySummary) {
	row = domain.ZeroMonthlySummary(month)

	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().WithFields(map[string]interface{}{
				"year":  year,
				"month": month,
				"panic": fmt.Sprint(r),
			}).Error("Monthly summary fetch panicked")
			row = domain.ZeroMonthlySummary(month)
		}
	}()

	summary, err := fetch(ctx, domain.FirstOfMonth(year, time.Month(month)))
	if err != nil {
		logger.GetLogger().WithError(err).WithFields(map[string]interface{}{
			"year":  year,
			"month": month,
		}).Warn("Failed to fetch monthly summary, using zero row")
		return row
	}
	if summary == nil {
		return row
	}

	row = *summary
	row.Month = month
	if row.SummaryByCategory == nil {
		row.SummaryByCategory = []domain.CategorySummary{}
	}
	return row
}

// SummarizeCategories rolls the monthly per-category breakdowns up into one
// row per category, ordered by first appearance.
func SummarizeCategories(months []domain.MonthlyCategorySummary) []domain.CategorySummary {
	index := make(map[int64]int)
	out := make([]domain.CategorySummary, 0)

	for _, m := range months {
		for _, c := range m.SummaryByCategory {
			i, ok := index[c.FeeCategoryID]
			if !ok {
				i = len(out)
				index[c.FeeCategoryID] = i
				out = append(out, domain.CategorySummary{
					FeeCategoryID:   c.FeeCategoryID,
					FeeCategoryName: c.FeeCategoryName,
					TotalPayable:    decimal.Zero,
					TotalCollected:  decimal.Zero,
					TotalPending:    decimal.Zero,
				})
			}

			out[i].TotalPayable = out[i].TotalPayable.Add(c.TotalPayable)
			out[i].TotalCollected = out[i].TotalCollected.Add(c.TotalCollected)
			out[i].TotalPending = out[i].TotalPending.Add(c.TotalPending)
		}
	}

	return out
}
