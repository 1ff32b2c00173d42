package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"feedesk/internal/domain"
	"feedesk/internal/events"
	"feedesk/internal/session"
	"feedesk/pkg/logger"
)

const (
	pathActiveAcademicYears = "/timetable/academic-years/active_academic_years"
	pathFeeCategories       = "/finance/fee-categories/"
	pathClassFees           = "/finance/class-fees/"
	pathCumulativeDetails   = "/finance/fees-payments/cumulative_details"
	pathCategorySummary     = "/finance/fees-payments/category_summary"
	pathStudentStatus       = "/finance/fees-payments/student_payment_status/"
	pathProcessPayment      = "/finance/fees-payments/process_payment"
)

// ErrNoActiveAcademicYear is returned when the platform reports no active year.
var ErrNoActiveAcademicYear = errors.New("no active academic year")

// API is the subset of the school platform consumed by feedesk.
type API interface {
	ActiveAcademicYear(ctx context.Context) (*domain.AcademicYear, error)
	FeeCategories(ctx context.Context) ([]domain.FeeCategory, error)
	ClassFees(ctx context.Context, academicYearID int64) ([]domain.ClassFee, error)
	CumulativeDetails(ctx context.Context, academicYearID int64) ([]domain.CumulativePaymentRecord, error)
	CategorySummary(ctx context.Context, target domain.Date, academicYearID int64) (*domain.MonthlyCategorySummary, error)
	StudentPaymentStatus(ctx context.Context, studentID int64) ([]domain.StudentFeeInstallment, error)
	ProcessPayment(ctx context.Context, req *domain.PaymentRequest) error
}

// Client talks to the school platform REST API. Requests carry the token of
// the session in their context, or the service token when there is none.
type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	validate     *validator.Validate
	bus          events.Bus
}

func NewClient(baseURL, serviceToken string, timeout time.Duration, bus events.Bus) *Client {
	return &Client{
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient:   &http.Client{Timeout: timeout},
		validate:     validator.New(),
		bus:          bus,
	}
}

func (c *Client) ActiveAcademicYear(ctx context.Context) (*domain.AcademicYear, error) {
	var raw json.RawMessage
	if err := c.get(ctx, pathActiveAcademicYears, nil, &raw); err != nil {
		return nil, err
	}

	years, err := decodeOneOrMany[domain.AcademicYear](raw)
	if err != nil {
		return nil, fmt.Errorf("decode academic years: %w", err)
	}

	for i := range years {
		if years[i].ID == 0 {
			continue
		}
		if years[i].IsActive || len(years) == 1 {
			return &years[i], nil
		}
	}
	if len(years) > 0 && years[0].ID != 0 {
		return &years[0], nil
	}
	return nil, ErrNoActiveAcademicYear
}

func (c *Client) FeeCategories(ctx context.Context) ([]domain.FeeCategory, error) {
	var categories []domain.FeeCategory
	if err := c.get(ctx, pathFeeCategories, nil, &categories); err != nil {
		return nil, err
	}
	return keepValid(c.validate, categories, "fee category"), nil
}

func (c *Client) ClassFees(ctx context.Context, academicYearID int64) ([]domain.ClassFee, error) {
	query := url.Values{"academic_year_id": {strconv.FormatInt(academicYearID, 10)}}

	var fees []domain.ClassFee
	if err := c.get(ctx, pathClassFees, query, &fees); err != nil {
		return nil, err
	}
	return keepValid(c.validate, fees, "class fee"), nil
}

func (c *Client) CumulativeDetails(ctx context.Context, academicYearID int64) ([]domain.CumulativePaymentRecord, error) {
	query := url.Values{"current_year_id": {strconv.FormatInt(academicYearID, 10)}}

	var records []domain.CumulativePaymentRecord
	if err := c.get(ctx, pathCumulativeDetails, query, &records); err != nil {
		return nil, err
	}
	return keepValid(c.validate, records, "cumulative payment record"), nil
}

func (c *Client) CategorySummary(ctx context.Context, target domain.Date, academicYearID int64) (*domain.MonthlyCategorySummary, error) {
	query := url.Values{
		"target_date":      {target.String()},
		"academic_year_id": {strconv.FormatInt(academicYearID, 10)},
	}

	var summary domain.MonthlyCategorySummary
	if err := c.get(ctx, pathCategorySummary, query, &summary); err != nil {
		return nil, err
	}
	if summary.SummaryByCategory == nil {
		summary.SummaryByCategory = []domain.CategorySummary{}
	}
	return &summary, nil
}

func (c *Client) StudentPaymentStatus(ctx context.Context, studentID int64) ([]domain.StudentFeeInstallment, error) {
	var installments []domain.StudentFeeInstallment
	if err := c.get(ctx, pathStudentStatus+strconv.FormatInt(studentID, 10), nil, &installments); err != nil {
		return nil, err
	}
	return keepValid(c.validate, installments, "installment"), nil
}

func (c *Client) ProcessPayment(ctx context.Context, req *domain.PaymentRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode payment request: %w", err)
	}
	return c.do(ctx, http.MethodPost, pathProcessPayment, nil, bytes.NewReader(body), nil)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.GetLogger().WithError(err).WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
		}).Error("Platform request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.sessionExpired(ctx, path)
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, payload)
		logger.GetLogger().WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"error":  apiErr.Message,
		}).Error("Platform returned an error")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(payload), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	if s, ok := session.FromContext(ctx); ok && s.Token() != "" {
		return s.Token()
	}
	return c.serviceToken
}

func (c *Client) sessionExpired(ctx context.Context, path string) {
	logger.GetLogger().WithField("path", path).Warn("Platform rejected session token")
	if c.bus == nil {
		return
	}

	payload := events.SessionExpired{Reason: "platform returned 401"}
	if s, ok := session.FromContext(ctx); ok {
		payload.Subject = s.Subject()
	}
	c.bus.Publish(ctx, events.Event{Topic: events.TopicSessionExpired, Payload: payload})
}

// keepValid drops records that fail struct validation, logging each one.
func keepValid[T any](v *validator.Validate, items []T, kind string) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if err := v.Struct(items[i]); err != nil {
			logger.GetLogger().WithError(err).WithFields(map[string]interface{}{
				"kind":  kind,
				"index": i,
			}).Warn("Dropping invalid record from platform response")
			continue
		}
		out = append(out, items[i])
	}
	return out
}
