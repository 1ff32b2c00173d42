package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedesk/internal/domain"
)

func lines(amounts ...string) []domain.PaymentLine {
	today := Today(time.Now())
	out := make([]domain.PaymentLine, len(amounts))
	for i, a := range amounts {
		out[i] = domain.NewPaymentLine(installment(int64(i+1), "Fee"+string(rune('A'+i)), 500, today), today)
		out[i].AmountPaying = a
	}
	return out
}

func TestPayableDetails_FiltersNonPositive(t *testing.T) {
	details := PayableDetails(lines("", "0", "abc", "-5", "120.5", "500"))

	require.Len(t, details, 2)
	assert.Equal(t, int64(5), details[0].ScheduleMappingID)
	assert.Equal(t, "120.5", details[0].AmountPaying.String())
	assert.Equal(t, int64(50), details[0].FeeID)
	assert.Equal(t, int64(500), details[0].FeeCategoryID)
	assert.Equal(t, int64(5000), details[0].StudentFixedFeeID)
	assert.Equal(t, "500", details[0].PendingAmount.String())
}

func TestPayableDetails_Idempotent(t *testing.T) {
	input := lines("100", "", "250")

	first := PayableDetails(input)
	second := PayableDetails(input)

	assert.Equal(t, first, second)
	assert.Equal(t, "100", input[0].AmountPaying, "input is not modified")
}

func TestAssemble(t *testing.T) {
	req, err := Assemble(Submission{
		StudentID:      42,
		AcademicYearID: 7,
		PaymentMethod:  "cash",
		Description:    "term one",
		Lines:          lines("100", "", "400"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), req.StudentID)
	assert.Equal(t, int64(7), req.AcademicYearID)
	assert.Equal(t, "cash", req.PaymentMethod)
	assert.Len(t, req.PaymentDetails, 2)
	assert.Equal(t, "500", req.Total().String())
}

func TestAssemble_RejectsEmptySelection(t *testing.T) {
	_, err := Assemble(Submission{StudentID: 42, Lines: lines("", "", "")})

	assert.ErrorIs(t, err, ErrNoPayableLines)
	assert.Contains(t, err.Error(), "enter a valid payment amount")
	assert.Contains(t, err.Error(), "for at least one fee")
}

func TestAssemble_RejectsMissingStudent(t *testing.T) {
	_, err := Assemble(Submission{Lines: lines("10")})

	assert.ErrorIs(t, err, ErrNoStudent)
}

func TestAssemble_RejectsWholeBatchOnOverpayment(t *testing.T) {
	input := lines("100", "600", "700.25")

	req, err := Assemble(Submission{StudentID: 1, Lines: input})

	assert.Nil(t, req)
	var over *OverpaymentError
	require.True(t, errors.As(err, &over))
	require.Len(t, over.Lines, 2)
	assert.Equal(t, "FeeB", over.Lines[0].Category)
	assert.Equal(t, "FeeC", over.Lines[1].Category)
	assert.True(t, over.Lines[0].Max.Equal(decimal.NewFromInt(500)))
	assert.Contains(t, err.Error(), "FeeB (max 500.00)")
	assert.Contains(t, err.Error(), "FeeC (max 500.00)")
}

func TestAssemble_RequiresPaymentDate(t *testing.T) {
	input := lines("100")
	input[0].PaymentDate = domain.Date{}

	_, err := Assemble(Submission{StudentID: 1, Lines: input})

	assert.ErrorIs(t, err, ErrMissingPaymentDate)
	assert.Contains(t, err.Error(), "FeeA")
}
