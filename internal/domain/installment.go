package domain

import "github.com/shopspring/decimal"

// StudentFeeInstallment is one scheduled obligation for a student against a
// fee category. ScheduleMappingID is its identity.
type StudentFeeInstallment struct {
	FeeID             int64           `json:"fee_id"`
	FeeCategoryID     int64           `json:"fee_category_id" validate:"required"`
	StudentFixedFeeID int64           `json:"student_fixed_fee_id"`
	ScheduleMappingID int64           `json:"student_fixed_fee_payment_schedule_mapping_id" validate:"required"`
	PendingAmount     decimal.Decimal `json:"pending_amount"`
	PaymentDueDate    Date            `json:"payment_due_date"`
	FeeCategoryName   string          `json:"fee_category_name"`
	PaymentStatus     string          `json:"payment_status"`
}

// PaymentLine is an installment being edited in the payment entry form.
// AmountPaying holds the text as entered so invalid input can be corrected.
type PaymentLine struct {
	StudentFeeInstallment
	AmountPaying string `json:"amount_paying"`
	PaymentDate  Date   `json:"payment_date"`
	Error        string `json:"error,omitempty"`
}

// NewPaymentLine defaults the amount to the full pending balance.
func NewPaymentLine(inst StudentFeeInstallment, today Date) PaymentLine {
	return PaymentLine{
		StudentFeeInstallment: inst,
		AmountPaying:          inst.PendingAmount.String(),
		PaymentDate:           today,
	}
}
