package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FeeCategory identifies a kind of fee such as Tuition or Transport.
type FeeCategory struct {
	ID                 int64  `json:"id" validate:"required"`
	CategoryName       string `json:"category_name" validate:"required"`
	IsOptional         bool   `json:"is_optional"`
	IsClassSpecificFee bool   `json:"is_class_specific_fee"`
}

// ClassFee binds an amount to a class, academic year and fee category.
// RouteID is set for transport fees tied to a route.
type ClassFee struct {
	ID              int64           `json:"id" validate:"required"`
	FeeCategoryID   int64           `json:"fee_category_id" validate:"required"`
	ClassID         int64           `json:"class_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentSchedule int             `json:"payment_schedule" validate:"gte=0"`
	IsOptional      bool            `json:"is_optional"`
	AcademicYearID  int64           `json:"academic_year_id" validate:"required"`
	RouteID         *int64          `json:"route_id"`
}

// FeeCatalog is the read-only fee configuration for one academic year.
type FeeCatalog struct {
	AcademicYearID int64         `json:"academic_year_id"`
	Categories     []FeeCategory `json:"categories"`
	ClassFees      []ClassFee    `json:"class_fees"`
}

// AcademicYear scopes fee and payment queries.
type AcademicYear struct {
	ID        int64  `json:"id" validate:"required"`
	Name      string `json:"year_name"`
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
	IsActive  bool   `json:"is_active"`
}

// UnmarshalJSON accepts both year_name and year for the display name.
func (y *AcademicYear) UnmarshalJSON(data []byte) error {
	type plain AcademicYear
	var raw struct {
		plain
		Year string `json:"year"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*y = AcademicYear(raw.plain)
	if y.Name == "" {
		y.Name = raw.Year
	}
	return nil
}
