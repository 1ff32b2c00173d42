package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"feedesk/internal/domain"
	"feedesk/internal/service"
	"feedesk/pkg/response"
)

type FeeHandler struct {
	service service.FeeService
}

func NewFeeHandler(service service.FeeService) *FeeHandler {
	return &FeeHandler{service: service}
}

type YearQuery struct {
	AcademicYearID int64 `form:"academic_year_id" binding:"omitempty,gt=0"`
}

type MonthlyQuery struct {
	AcademicYearID int64 `form:"academic_year_id" binding:"omitempty,gt=0"`
	Year           int   `form:"year" binding:"omitempty,gte=2000,lte=2100"`
}

type StatsResponse struct {
	Stats domain.PaymentStats `json:"stats"`
	Stale bool                `json:"stale"`
}

// resolveYear binds academic_year_id and falls back to the active year.
func (h *FeeHandler) resolveYear(c *gin.Context) (int64, bool) {
	var q YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, err.Error())
		return 0, false
	}

	yearID, err := h.service.ResolveYear(c.Request.Context(), q.AcademicYearID)
	if err != nil {
		respondError(c, "Failed to resolve academic year", err)
		return 0, false
	}
	return yearID, true
}

// GetActiveYear godoc
// @Summary Get the active academic year
// @Tags academic-years
// @Produce json
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/academic-years/active [get]
func (h *FeeHandler) GetActiveYear(c *gin.Context) {
	year, err := h.service.ActiveYear(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to load active academic year", err)
		return
	}

	response.Success(c, http.StatusOK, "Active academic year retrieved successfully", year)
}

// GetCatalog godoc
// @Summary Get fee categories and class fees
// @Tags fees
// @Produce json
// @Param academic_year_id query int false "Academic year ID (defaults to active)"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/fees/catalog [get]
func (h *FeeHandler) GetCatalog(c *gin.Context) {
	yearID, ok := h.resolveYear(c)
	if !ok {
		return
	}

	catalog, err := h.service.Catalog(c.Request.Context(), yearID)
	if err != nil {
		respondError(c, "Failed to load fee catalog", err)
		return
	}

	response.Success(c, http.StatusOK, "Fee catalog retrieved successfully", catalog)
}

// GetCumulative godoc
// @Summary Get cumulative payment records
// @Description Per-student billed vs paid. Serves the last known list when the platform is unavailable.
// @Tags fees
// @Produce json
// @Param academic_year_id query int false "Academic year ID (defaults to active)"
// @Success 200 {object} response.Response
// @Router /api/v1/fees/cumulative [get]
func (h *FeeHandler) GetCumulative(c *gin.Context) {
	yearID, ok := h.resolveYear(c)
	if !ok {
		return
	}

	list := h.service.CumulativeDetails(c.Request.Context(), yearID)
	response.SuccessWithWarning(c, http.StatusOK, "Cumulative payment details retrieved", list.Warning, list)
}

// GetStats godoc
// @Summary Get fee collection statistics
// @Tags fees
// @Produce json
// @Param academic_year_id query int false "Academic year ID (defaults to active)"
// @Success 200 {object} response.Response
// @Router /api/v1/fees/stats [get]
func (h *FeeHandler) GetStats(c *gin.Context) {
	yearID, ok := h.resolveYear(c)
	if !ok {
		return
	}

	stats, list := h.service.Stats(c.Request.Context(), yearID)
	response.SuccessWithWarning(c, http.StatusOK, "Payment statistics computed", list.Warning, StatsResponse{
		Stats: stats,
		Stale: list.Stale,
	})
}

// GetMonthlySummary godoc
// @Summary Get monthly collection summaries
// @Description Twelve rows, January to December. Months that fail to load are zero-filled.
// @Tags fees
// @Produce json
// @Param academic_year_id query int false "Academic year ID (defaults to active)"
// @Param year query int false "Calendar year (defaults to current)"
// @Success 200 {object} response.Response
// @Router /api/v1/fees/monthly-summary [get]
func (h *FeeHandler) GetMonthlySummary(c *gin.Context) {
	q, yearID, ok := h.bindMonthly(c)
	if !ok {
		return
	}

	rows := h.service.MonthlySummaries(c.Request.Context(), yearID, q.Year)
	response.Success(c, http.StatusOK, "Monthly summaries retrieved", rows)
}

// GetCategorySummary godoc
// @Summary Get yearly totals per fee category
// @Tags fees
// @Produce json
// @Param academic_year_id query int false "Academic year ID (defaults to active)"
// @Param year query int false "Calendar year (defaults to current)"
// @Success 200 {object} response.Response
// @Router /api/v1/fees/category-summary [get]
func (h *FeeHandler) GetCategorySummary(c *gin.Context) {
	q, yearID, ok := h.bindMonthly(c)
	if !ok {
		return
	}

	rows := h.service.CategorySummary(c.Request.Context(), yearID, q.Year)
	response.Success(c, http.StatusOK, "Category summary retrieved", rows)
}

func (h *FeeHandler) bindMonthly(c *gin.Context) (MonthlyQuery, int64, bool) {
	var q MonthlyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, err.Error())
		return q, 0, false
	}

	yearID, err := h.service.ResolveYear(c.Request.Context(), q.AcademicYearID)
	if err != nil {
		respondError(c, "Failed to resolve academic year", err)
		return q, 0, false
	}
	return q, yearID, true
}

// GetStudentInstallments godoc
// @Summary Get a student's pending and upcoming installments
// @Tags students
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/students/{student_id}/installments [get]
func (h *FeeHandler) GetStudentInstallments(c *gin.Context) {
	studentID, ok := parseIDParam(c, "student_id")
	if !ok {
		return
	}

	out, err := h.service.StudentInstallments(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, "Failed to load installments", err)
		return
	}

	response.Success(c, http.StatusOK, "Installments retrieved successfully", out)
}

// OpenPaymentDetails godoc
// @Summary Open a student's payment details view
// @Description The view is refreshed after every payment for the student until closed.
// @Tags students
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/students/{student_id}/payment-details [get]
func (h *FeeHandler) OpenPaymentDetails(c *gin.Context) {
	studentID, ok := parseIDParam(c, "student_id")
	if !ok {
		return
	}

	details, err := h.service.OpenDetails(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, "Failed to load payment details", err)
		return
	}

	response.Success(c, http.StatusOK, "Payment details retrieved successfully", details)
}

// ClosePaymentDetails godoc
// @Summary Close a student's payment details view
// @Tags students
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {object} response.Response
// @Router /api/v1/students/{student_id}/payment-details [delete]
func (h *FeeHandler) ClosePaymentDetails(c *gin.Context) {
	studentID, ok := parseIDParam(c, "student_id")
	if !ok {
		return
	}

	h.service.CloseDetails(studentID)
	response.Success(c, http.StatusOK, "Payment details closed", nil)
}
