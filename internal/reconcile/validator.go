package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"feedesk/internal/domain"
)

var (
	ErrInvalidNumber  = errors.New("invalid number")
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// ExceedsPendingError reports an amount above the installment balance.
type ExceedsPendingError struct {
	Category string
	Max      decimal.Decimal
}

func (e *ExceedsPendingError) Error() string {
	return fmt.Sprintf("amount for %s cannot exceed the pending amount of %s", e.Category, e.Max.StringFixed(2))
}

// AmountCheck is the outcome of validating one keystroke's worth of input.
type AmountCheck struct {
	// Value is the accepted amount, clamped to the balance. Zero when the
	// input is empty or rejected.
	Value decimal.Decimal
	// Stored is the text the line should keep.
	Stored string
	Err    error
}

// OK reports whether the input was accepted as entered.
func (c AmountCheck) OK() bool { return c.Err == nil }

// Clamped reports whether the input was replaced by the balance.
func (c AmountCheck) Clamped() bool {
	var exceeds *ExceedsPendingError
	return errors.As(c.Err, &exceeds)
}

// ValidateAmount checks text against 0 <= amount <= pending.
//
// Empty input is accepted as "not entered yet". Unparseable or negative input
// is rejected but kept so it can be corrected. Input above pending is clamped
// to pending and reported with an *ExceedsPendingError naming category.
func ValidateAmount(text string, pending decimal.Decimal, category string) AmountCheck {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return AmountCheck{Value: decimal.Zero, Stored: ""}
	}

	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return AmountCheck{Value: decimal.Zero, Stored: text, Err: ErrInvalidNumber}
	}

	if amount.IsNegative() {
		return AmountCheck{Value: decimal.Zero, Stored: text, Err: ErrNegativeAmount}
	}

	if amount.GreaterThan(pending) {
		return AmountCheck{
			Value:  pending,
			Stored: pending.String(),
			Err:    &ExceedsPendingError{Category: category, Max: pending},
		}
	}

	return AmountCheck{Value: amount, Stored: text}
}

// ApplyAmount validates text for line and updates it in place.
func ApplyAmount(line *domain.PaymentLine, text string) AmountCheck {
	check := ValidateAmount(text, line.PendingAmount, line.FeeCategoryName)

	line.AmountPaying = check.Stored
	line.Error = ""
	if check.Err != nil {
		line.Error = check.Err.Error()
	}

	return check
}
