package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"feedesk/internal/domain"
	"feedesk/internal/service"
	"feedesk/pkg/logger"
	"feedesk/pkg/response"
)

type DraftHandler struct {
	service service.DraftService
}

func NewDraftHandler(service service.DraftService) *DraftHandler {
	return &DraftHandler{service: service}
}

type OpenDraftRequest struct {
	StudentID      int64 `json:"student_id"`
	AcademicYearID int64 `json:"academic_year_id" binding:"omitempty,gt=0"`
}

type UpdateLineRequest struct {
	AmountPaying *string `json:"amount_paying"`
	PaymentDate  *string `json:"payment_date"`
}

type SubmitDraftRequest struct {
	PaymentMethod string `json:"payment_method" binding:"max=50"`
	Description   string `json:"description" binding:"max=500"`
}

// DraftResponse adds the running total to a draft.
type DraftResponse struct {
	*service.Draft
	Total decimal.Decimal `json:"total"`
}

func newDraftResponse(d *service.Draft) DraftResponse {
	return DraftResponse{Draft: d, Total: d.Total()}
}

// OpenDraft godoc
// @Summary Open a payment entry form for a student
// @Tags payment-drafts
// @Accept json
// @Produce json
// @Param request body OpenDraftRequest true "Student and academic year"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/payment-drafts [post]
func (h *DraftHandler) OpenDraft(c *gin.Context) {
	var req OpenDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	draft, err := h.service.Open(c.Request.Context(), req.StudentID, req.AcademicYearID)
	if err != nil {
		respondError(c, "Failed to open payment draft", err)
		return
	}

	response.Success(c, http.StatusCreated, "Payment draft opened", newDraftResponse(draft))
}

// GetDraft godoc
// @Summary Get a payment draft
// @Tags payment-drafts
// @Produce json
// @Param draft_id path string true "Draft ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/payment-drafts/{draft_id} [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	draft, err := h.service.Get(c.Param("draft_id"))
	if err != nil {
		respondError(c, "Failed to get payment draft", err)
		return
	}

	response.SuccessWithWarning(c, http.StatusOK, "Payment draft retrieved", draft.Warning, newDraftResponse(draft))
}

// UpdateLine godoc
// @Summary Edit the amount or payment date of one installment
// @Description Validated on every edit. Amounts above the balance are clamped and reported as a warning.
// @Tags payment-drafts
// @Accept json
// @Produce json
// @Param draft_id path string true "Draft ID"
// @Param mapping_id path int true "Schedule mapping ID"
// @Param request body UpdateLineRequest true "Line edit"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/payment-drafts/{draft_id}/lines/{mapping_id} [patch]
func (h *DraftHandler) UpdateLine(c *gin.Context) {
	mappingID, err := strconv.ParseInt(c.Param("mapping_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid mapping_id", "Must be an integer")
		return
	}

	var req UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	upd := service.LineUpdate{AmountPaying: req.AmountPaying}
	if req.PaymentDate != nil {
		date, err := domain.ParseDate(*req.PaymentDate)
		if err != nil {
			response.BadRequest(c, "Invalid payment_date format", "Use YYYY-MM-DD format")
			return
		}
		upd.PaymentDate = &date
	}

	draft, err := h.service.UpdateLine(c.Param("draft_id"), mappingID, upd)
	if err != nil {
		respondError(c, "Failed to update payment line", err)
		return
	}

	response.SuccessWithWarning(c, http.StatusOK, "Payment line updated", draft.Warning, newDraftResponse(draft))
}

// SubmitDraft godoc
// @Summary Process the payment entered in a draft
// @Description Sends every line with an amount above zero. On success the draft is closed and the cumulative list, monthly summaries and open details view are refetched.
// @Tags payment-drafts
// @Accept json
// @Produce json
// @Param draft_id path string true "Draft ID"
// @Param request body SubmitDraftRequest true "Payment method and description"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/payment-drafts/{draft_id}/submit [post]
func (h *DraftHandler) SubmitDraft(c *gin.Context) {
	var req SubmitDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	draftID := c.Param("draft_id")
	logger.GetLogger().WithFields(map[string]interface{}{
		"draft_id":       draftID,
		"payment_method": req.PaymentMethod,
	}).Info("Submitting payment")

	result, err := h.service.Submit(c.Request.Context(), draftID, service.SubmitInput{
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	})
	if err != nil {
		respondError(c, "Payment failed", err)
		return
	}

	response.SuccessWithWarning(c, http.StatusOK, "Payment processed successfully", result.Refreshed.Cumulative.Warning, result)
}

// DiscardDraft godoc
// @Summary Close a payment draft without submitting
// @Tags payment-drafts
// @Produce json
// @Param draft_id path string true "Draft ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/payment-drafts/{draft_id} [delete]
func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	if err := h.service.Discard(c.Param("draft_id")); err != nil {
		respondError(c, "Failed to discard payment draft", err)
		return
	}

	response.Success(c, http.StatusOK, "Payment draft discarded", nil)
}

// GetSubmission godoc
// @Summary Get a payment submission audit record
// @Tags submissions
// @Produce json
// @Param submission_id path string true "Submission ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/submissions/{submission_id} [get]
func (h *DraftHandler) GetSubmission(c *gin.Context) {
	submissionID := c.Param("submission_id")

	sub, err := h.service.Submission(c.Request.Context(), submissionID)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("submission_id", submissionID).Error("Submission not found")
		respondError(c, "Failed to get submission", err)
		return
	}

	response.Success(c, http.StatusOK, "Submission retrieved successfully", sub)
}

// ListSubmissions godoc
// @Summary List a student's payment submissions
// @Tags submissions
// @Produce json
// @Param student_id path int true "Student ID"
// @Param academic_year_id query int false "Academic year ID (defaults to active)"
// @Success 200 {object} response.Response
// @Router /api/v1/students/{student_id}/submissions [get]
func (h *DraftHandler) ListSubmissions(c *gin.Context) {
	studentID, ok := parseIDParam(c, "student_id")
	if !ok {
		return
	}

	var q YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	subs, err := h.service.Submissions(c.Request.Context(), studentID, q.AcademicYearID)
	if err != nil {
		respondError(c, "Failed to list submissions", err)
		return
	}

	response.Success(c, http.StatusOK, "Submissions retrieved successfully", subs)
}
