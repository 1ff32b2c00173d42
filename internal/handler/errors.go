package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"feedesk/internal/platform"
	"feedesk/internal/reconcile"
	"feedesk/internal/repository"
	"feedesk/internal/service"
	"feedesk/pkg/response"
)

// respondError maps service and platform errors to response envelopes.
func respondError(c *gin.Context, message string, err error) {
	var (
		apiErr  *platform.APIError
		overErr *reconcile.OverpaymentError
	)

	switch {
	case errors.Is(err, reconcile.ErrNoStudent),
		errors.Is(err, reconcile.ErrNoPayableLines),
		errors.Is(err, reconcile.ErrMissingPaymentDate),
		errors.As(err, &overErr):
		response.ValidationError(c, err.Error())

	case errors.Is(err, service.ErrDraftNotFound),
		errors.Is(err, service.ErrLineNotFound),
		errors.Is(err, repository.ErrSubmissionNotFound):
		response.NotFound(c, err.Error())

	case errors.Is(err, platform.ErrSessionExpired):
		response.Unauthorized(c, platform.ErrSessionExpired.Error())

	case errors.Is(err, platform.ErrNoActiveAcademicYear):
		response.NotFound(c, platform.ErrNoActiveAcademicYear.Error())

	case errors.As(err, &apiErr) && apiErr.NotFound():
		response.NotFound(c, apiErr.Message)

	case errors.As(err, &apiErr):
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", message, apiErr.Message)

	default:
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", message, platform.UserMessage(err))
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid "+name, "Must be a positive integer")
		return 0, false
	}
	return id, true
}
