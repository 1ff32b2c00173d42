package domain

import "github.com/shopspring/decimal"

// CumulativePaymentRecord is a per-student rollup of billed vs paid for an
// academic year. DueAmount is derived once when the list is fetched.
type CumulativePaymentRecord struct {
	StudentID         int64           `json:"student_id" validate:"required"`
	StudentName       string          `json:"student_name"`
	TotalFeesToBePaid decimal.Decimal `json:"total_fees_to_be_paid"`
	TotalFeesPaid     decimal.Decimal `json:"total_fees_paid"`
	DueAmount         decimal.Decimal `json:"due_amount"`
	PaymentStatus     string          `json:"payment_status"`
}

// PaymentStats are the dashboard cards of the fee manager.
type PaymentStats struct {
	TotalStudents  int             `json:"total_students"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	PendingFees    decimal.Decimal `json:"pending_fees"`
	PaidStudents   int             `json:"paid_students"`
	Defaulters     int             `json:"defaulters"`
	CollectionRate decimal.Decimal `json:"collection_rate"`
}

// PaymentDetail is one line of a process_payment request.
type PaymentDetail struct {
	FeeID             int64           `json:"fee_id"`
	FeeCategoryID     int64           `json:"fee_category_id"`
	StudentFixedFeeID int64           `json:"student_fixed_fee_id"`
	ScheduleMappingID int64           `json:"student_fixed_fee_payment_schedule_mapping_id"`
	AmountPaying      decimal.Decimal `json:"amount_paying"`
	PendingAmount     decimal.Decimal `json:"pending_amount"`
	PaymentDate       Date            `json:"payment_date"`
}

// PaymentRequest is the body of POST /finance/fees-payments/process_payment.
type PaymentRequest struct {
	StudentID      int64           `json:"student_id"`
	AcademicYearID int64           `json:"academic_year_id"`
	PaymentMethod  string          `json:"payment_method"`
	Description    string          `json:"description"`
	PaymentDetails []PaymentDetail `json:"payment_details"`
}

// Total sums the amounts being paid.
func (r *PaymentRequest) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range r.PaymentDetails {
		total = total.Add(d.AmountPaying)
	}
	return total
}
