package reconcile

import (
	"time"

	"feedesk/internal/domain"
)

// Classification splits a student's open installments by due date.
type Classification struct {
	Pending  []domain.PaymentLine `json:"pending"`
	Upcoming []domain.PaymentLine `json:"upcoming"`
}

// Lines returns pending followed by upcoming lines.
func (c Classification) Lines() []domain.PaymentLine {
	lines := make([]domain.PaymentLine, 0, len(c.Pending)+len(c.Upcoming))
	lines = append(lines, c.Pending...)
	return append(lines, c.Upcoming...)
}

// Today normalizes now to local midnight.
func Today(now time.Time) domain.Date {
	return domain.NewDate(now.Local())
}

// Classify partitions installments into pending (due on or before today) and
// upcoming (due after today). Fully paid installments are dropped and source
// order is kept. Each line starts with the full balance and today's date.
func Classify(installments []domain.StudentFeeInstallment, today domain.Date) Classification {
	out := Classification{
		Pending:  make([]domain.PaymentLine, 0),
		Upcoming: make([]domain.PaymentLine, 0),
	}

	for _, inst := range installments {
		if !inst.PendingAmount.IsPositive() {
			continue
		}

		line := domain.NewPaymentLine(inst, today)
		if inst.PaymentDueDate.After(today) {
			out.Upcoming = append(out.Upcoming, line)
		} else {
			out.Pending = append(out.Pending, line)
		}
	}

	return out
}
