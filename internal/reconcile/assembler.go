package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"feedesk/internal/domain"
)

var (
	ErrNoStudent          = errors.New("please select a student")
	ErrNoPayableLines     = errors.New("please enter a valid payment amount greater than zero for at least one fee")
	ErrMissingPaymentDate = errors.New("payment date is required")
)

// Overpayment names a line whose amount is above its balance.
type Overpayment struct {
	Category string
	Max      decimal.Decimal
}

// OverpaymentError rejects a whole submission listing every offending line.
type OverpaymentError struct {
	Lines []Overpayment
}

func (e *OverpaymentError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = fmt.Sprintf("%s (max %s)", l.Category, l.Max.StringFixed(2))
	}
	return "payment amount exceeds pending amount for: " + strings.Join(parts, ", ")
}

// Submission carries the form-level fields of a payment.
type Submission struct {
	StudentID      int64
	AcademicYearID int64
	PaymentMethod  string
	Description    string
	Lines          []domain.PaymentLine
}

// PayableDetails keeps the lines whose amount parses to a number above zero
// and maps them to the wire format. It does not modify lines.
func PayableDetails(lines []domain.PaymentLine) []domain.PaymentDetail {
	details := make([]domain.PaymentDetail, 0, len(lines))

	for _, line := range lines {
		amount, err := decimal.NewFromString(strings.TrimSpace(line.AmountPaying))
		if err != nil || !amount.IsPositive() {
			continue
		}

		details = append(details, domain.PaymentDetail{
			FeeID:             line.FeeID,
			FeeCategoryID:     line.FeeCategoryID,
			StudentFixedFeeID: line.StudentFixedFeeID,
			ScheduleMappingID: line.ScheduleMappingID,
			AmountPaying:      amount,
			PendingAmount:     line.PendingAmount,
			PaymentDate:       line.PaymentDate,
		})
	}

	return details
}

// Assemble builds the process_payment request. Nothing is partially
// submitted: any overpaid line, an empty selection, a missing payment date or
// a missing student rejects the whole batch.
func Assemble(sub Submission) (*domain.PaymentRequest, error) {
	details := PayableDetails(sub.Lines)

	names := categoryNames(sub.Lines)
	var over []Overpayment
	for _, d := range details {
		if d.AmountPaying.GreaterThan(d.PendingAmount) {
			over = append(over, Overpayment{Category: names[d.ScheduleMappingID], Max: d.PendingAmount})
		}
	}
	if len(over) > 0 {
		return nil, &OverpaymentError{Lines: over}
	}

	if len(details) == 0 {
		return nil, ErrNoPayableLines
	}

	if sub.StudentID == 0 {
		return nil, ErrNoStudent
	}

	for _, d := range details {
		if d.PaymentDate.IsZero() {
			return nil, fmt.Errorf("%w for %s", ErrMissingPaymentDate, names[d.ScheduleMappingID])
		}
	}

	return &domain.PaymentRequest{
		StudentID:      sub.StudentID,
		AcademicYearID: sub.AcademicYearID,
		PaymentMethod:  sub.PaymentMethod,
		Description:    sub.Description,
		PaymentDetails: details,
	}, nil
}

func categoryNames(lines []domain.PaymentLine) map[int64]string {
	names := make(map[int64]string, len(lines))
	for _, l := range lines {
		names[l.ScheduleMappingID] = l.FeeCategoryName
	}
	return names
}
