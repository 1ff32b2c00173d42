package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedesk/internal/domain"
)

func record(id int64, billed, paid float64) domain.CumulativePaymentRecord {
	return domain.CumulativePaymentRecord{
		StudentID:         id,
		TotalFeesToBePaid: decimal.NewFromFloat(billed),
		TotalFeesPaid:     decimal.NewFromFloat(paid),
	}
}

func TestWithDueAmounts(t *testing.T) {
	records := WithDueAmounts([]domain.CumulativePaymentRecord{
		record(1, 1000, 400),
		record(2, 500, 500),
	})

	assert.Equal(t, "600", records[0].DueAmount.String())
	assert.True(t, records[1].DueAmount.IsZero())
}

func TestComputeStats(t *testing.T) {
	records := WithDueAmounts([]domain.CumulativePaymentRecord{
		record(1, 1000, 1000),
		record(2, 1000, 250),
		record(3, 800, 0),
		record(4, 600, 0),
	})

	stats := ComputeStats(records)

	assert.Equal(t, 4, stats.TotalStudents)
	assert.Equal(t, "1250", stats.TotalCollected.String())
	assert.Equal(t, "2150", stats.PendingFees.String())
	assert.Equal(t, 2, stats.PaidStudents, "partial payers count as paid")
	assert.Equal(t, 2, stats.Defaulters)
	assert.Equal(t, "36.76", stats.CollectionRate.StringFixed(2))
}

func TestComputeStats_UsesStoredDueAmount(t *testing.T) {
	r := record(1, 1000, 100)
	r.DueAmount = decimal.NewFromInt(50)

	stats := ComputeStats([]domain.CumulativePaymentRecord{r})

	assert.Equal(t, "50", stats.PendingFees.String())
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.True(t, stats.TotalCollected.IsZero())
	assert.True(t, stats.PendingFees.IsZero())
	assert.Zero(t, stats.PaidStudents)
	assert.Zero(t, stats.Defaulters)
	assert.True(t, stats.CollectionRate.IsZero())
}

func TestCollectMonthly_IsolatesFailures(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context, target domain.Date) (*domain.MonthlyCategorySummary, error) {
		calls.Add(1)
		if target.Month() == time.July {
			return nil, errors.New("upstream timeout")
		}
		amount := decimal.NewFromInt(int64(target.Month()) * 100)
		return &domain.MonthlyCategorySummary{
			SummaryByCategory: []domain.CategorySummary{
				{FeeCategoryID: 1, FeeCategoryName: "Tuition", TotalCollected: amount},
			},
			TotalCollectedThisMonth: amount,
		}, nil
	}

	rows := CollectMonthly(context.Background(), 2026, 3, fetch)

	require.Len(t, rows, 12)
	assert.EqualValues(t, 12, calls.Load())
	for i, row := range rows {
		month := i + 1
		assert.Equal(t, month, row.Month)
		if month == 7 {
			assert.Equal(t, domain.ZeroMonthlySummary(7), row)
			continue
		}
		assert.Equal(t, int64(month*100), row.TotalCollectedThisMonth.IntPart())
	}
}

func TestCollectMonthly_RecoversPanics(t *testing.T) {
	fetch := func(ctx context.Context, target domain.Date) (*domain.MonthlyCategorySummary, error) {
		if target.Month() == time.March {
			panic("boom")
		}
		return nil, nil
	}

	rows := CollectMonthly(context.Background(), 2026, 0, fetch)

	require.Len(t, rows, 12)
	assert.Equal(t, domain.ZeroMonthlySummary(3), rows[2])
	assert.NotNil(t, rows[0].SummaryByCategory)
}

func TestCollectMonthly_TargetsFirstOfMonth(t *testing.T) {
	seen := make(chan string, 12)
	fetch := func(ctx context.Context, target domain.Date) (*domain.MonthlyCategorySummary, error) {
		seen <- target.String()
		return &domain.MonthlyCategorySummary{}, nil
	}

	CollectMonthly(context.Background(), 2025, 1, fetch)
	close(seen)

	var dates []string
	for d := range seen {
		dates = append(dates, d)
	}
	assert.Contains(t, dates, "2025-01-01")
	assert.Contains(t, dates, "2025-12-01")
	assert.Len(t, dates, 12)
}

func TestSummarizeCategories(t *testing.T) {
	months := []domain.MonthlyCategorySummary{
		{SummaryByCategory: []domain.CategorySummary{
			{FeeCategoryID: 2, FeeCategoryName: "Transport", TotalPayable: decimal.NewFromInt(100), TotalCollected: decimal.NewFromInt(60), TotalPending: decimal.NewFromInt(40)},
			{FeeCategoryID: 1, FeeCategoryName: "Tuition", TotalPayable: decimal.NewFromInt(1000), TotalCollected: decimal.NewFromInt(1000)},
		}},
		domain.ZeroMonthlySummary(2),
		{SummaryByCategory: []domain.CategorySummary{
			{FeeCategoryID: 1, FeeCategoryName: "Tuition", TotalPayable: decimal.NewFromInt(1000), TotalPending: decimal.NewFromInt(1000)},
		}},
	}

	out := SummarizeCategories(months)

	require.Len(t, out, 2)
	assert.Equal(t, "Transport", out[0].FeeCategoryName)
	assert.Equal(t, "Tuition", out[1].FeeCategoryName)
	assert.Equal(t, "2000", out[1].TotalPayable.String())
	assert.Equal(t, "1000", out[1].TotalCollected.String())
	assert.Equal(t, "1000", out[1].TotalPending.String())
}
