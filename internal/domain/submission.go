package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmissionStatus tracks a payment submission through the platform call.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "PENDING"
	SubmissionCompleted SubmissionStatus = "COMPLETED"
	SubmissionFailed    SubmissionStatus = "FAILED"
)

// PaymentSubmission is the audit record of one process_payment attempt.
type PaymentSubmission struct {
	ID             int              `json:"id" db:"id"`
	SubmissionID   string           `json:"submission_id" db:"submission_id"`
	StudentID      int64            `json:"student_id" db:"student_id"`
	AcademicYearID int64            `json:"academic_year_id" db:"academic_year_id"`
	PaymentMethod  string           `json:"payment_method" db:"payment_method"`
	Description    string           `json:"description" db:"description"`
	TotalAmount    decimal.Decimal  `json:"total_amount" db:"total_amount"`
	LineCount      int              `json:"line_count" db:"line_count"`
	Status         SubmissionStatus `json:"status" db:"status"`
	ErrorMessage   *string          `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`

	Lines []SubmissionLine `json:"lines,omitempty" db:"-"`
}

// SubmissionLine is one payment detail sent in a submission.
type SubmissionLine struct {
	ID                int             `json:"id" db:"id"`
	SubmissionID      string          `json:"submission_id" db:"submission_id"`
	FeeCategoryID     int64           `json:"fee_category_id" db:"fee_category_id"`
	ScheduleMappingID int64           `json:"schedule_mapping_id" db:"schedule_mapping_id"`
	AmountPaying      decimal.Decimal `json:"amount_paying" db:"amount_paying"`
	PendingAmount     decimal.Decimal `json:"pending_amount" db:"pending_amount"`
	PaymentDate       Date            `json:"payment_date" db:"payment_date"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}
