package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"feedesk/internal/domain"
	"feedesk/internal/events"
	"feedesk/internal/platform"
	"feedesk/internal/reconcile"
	"feedesk/internal/repository"
	"feedesk/pkg/logger"
)

var (
	ErrDraftNotFound = errors.New("payment draft not found")
	ErrLineNotFound  = errors.New("installment not found in draft")
)

// Draft is the payment entry form opened for one student. Lines keep the
// user's text between edits and survive failed submissions.
type Draft struct {
	ID             string               `json:"draft_id"`
	StudentID      int64                `json:"student_id"`
	AcademicYearID int64                `json:"academic_year_id"`
	Pending        []domain.PaymentLine `json:"pending"`
	Upcoming       []domain.PaymentLine `json:"upcoming"`
	Warning        string               `json:"warning,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// LineUpdate is one edit of a line. Nil fields are left unchanged.
type LineUpdate struct {
	AmountPaying *string
	PaymentDate  *domain.Date
}

type SubmitInput struct {
	PaymentMethod string
	Description   string
}

type SubmitResult struct {
	Submission *domain.PaymentSubmission `json:"submission"`
	Refreshed  *Refreshed                `json:"refreshed"`
}

type DraftService interface {
	Open(ctx context.Context, studentID, academicYearID int64) (*Draft, error)
	Get(draftID string) (*Draft, error)
	UpdateLine(draftID string, mappingID int64, upd LineUpdate) (*Draft, error)
	Submit(ctx context.Context, draftID string, in SubmitInput) (*SubmitResult, error)
	Discard(draftID string) error
	Submission(ctx context.Context, submissionID string) (*domain.PaymentSubmission, error)
	Submissions(ctx context.Context, studentID, academicYearID int64) ([]domain.PaymentSubmission, error)
}

type draftService struct {
	api  platform.API
	fees FeeService
	repo repository.SubmissionRepository
	bus  events.Bus
	now  func() time.Time

	mu     sync.Mutex
	drafts map[string]*Draft
}

func NewDraftService(api platform.API, fees FeeService, repo repository.SubmissionRepository, bus events.Bus) DraftService {
	return &draftService{
		api:    api,
		fees:   fees,
		repo:   repo,
		bus:    bus,
		now:    time.Now,
		drafts: make(map[string]*Draft),
	}
}

// Open loads the student's installments and starts a draft with every open
// installment prefilled to its full balance.
func (s *draftService) Open(ctx context.Context, studentID, academicYearID int64) (*Draft, error) {
	if studentID == 0 {
		return nil, reconcile.ErrNoStudent
	}

	yearID, err := s.fees.ResolveYear(ctx, academicYearID)
	if err != nil {
		return nil, err
	}

	installments, err := s.api.StudentPaymentStatus(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments for student %d: %w", studentID, err)
	}

	now := s.now()
	classified := reconcile.Classify(installments, reconcile.Today(now))
	draft := &Draft{
		ID:             uuid.New().String(),
		StudentID:      studentID,
		AcademicYearID: yearID,
		Pending:        classified.Pending,
		Upcoming:       classified.Upcoming,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.mu.Lock()
	s.drafts[draft.ID] = draft
	s.mu.Unlock()

	logger.GetLogger().WithFields(map[string]interface{}{
		"draft_id":   draft.ID,
		"student_id": studentID,
		"pending":    len(draft.Pending),
		"upcoming":   len(draft.Upcoming),
	}).Info("Payment draft opened")

	return draft.clone(), nil
}

func (s *draftService) Get(draftID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return draft.clone(), nil
}

// UpdateLine applies one edit. Amounts are validated on every change: invalid
// text is kept with an error, amounts over the balance are clamped and the
// draft carries a warning naming the fee.
func (s *draftService) UpdateLine(draftID string, mappingID int64, upd LineUpdate) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}

	line := draft.line(mappingID)
	if line == nil {
		return nil, ErrLineNotFound
	}

	draft.Warning = ""
	if upd.AmountPaying != nil {
		check := reconcile.ApplyAmount(line, *upd.AmountPaying)
		if check.Clamped() {
			draft.Warning = check.Err.Error()
		}
	}
	if upd.PaymentDate != nil {
		line.PaymentDate = *upd.PaymentDate
	}
	draft.UpdatedAt = s.now()

	return draft.clone(), nil
}

// Submit sends the draft's payable lines to the platform. Client-side
// validation failures never reach the network. On success the draft is closed
// and the dependent views are refetched; on failure the draft is kept as is.
func (s *draftService) Submit(ctx context.Context, draftID string, in SubmitInput) (*SubmitResult, error) {
	draft, err := s.Get(draftID)
	if err != nil {
		return nil, err
	}

	req, err := reconcile.Assemble(reconcile.Submission{
		StudentID:      draft.StudentID,
		AcademicYearID: draft.AcademicYearID,
		PaymentMethod:  in.PaymentMethod,
		Description:    in.Description,
		Lines:          draft.lines(),
	})
	if err != nil {
		s.warn(ctx, draftID, err.Error())
		return nil, err
	}

	submission := s.record(ctx, req)

	if err := s.api.ProcessPayment(ctx, req); err != nil {
		message := platform.UserMessage(err)
		s.markSubmission(ctx, submission, domain.SubmissionFailed, &message)
		s.warn(ctx, draftID, message)

		logger.GetLogger().WithError(err).WithFields(map[string]interface{}{
			"draft_id":   draftID,
			"student_id": req.StudentID,
		}).Error("Payment processing failed")
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	s.markSubmission(ctx, submission, domain.SubmissionCompleted, nil)

	s.mu.Lock()
	delete(s.drafts, draftID)
	s.mu.Unlock()

	logger.GetLogger().WithFields(map[string]interface{}{
		"submission_id": submission.SubmissionID,
		"student_id":    req.StudentID,
		"total":         submission.TotalAmount.StringFixed(2),
		"lines":         submission.LineCount,
	}).Info("Payment processed")

	if s.bus != nil {
		s.bus.Publish(ctx, events.Event{
			Topic: events.TopicPaymentProcessed,
			Payload: events.PaymentProcessed{
				SubmissionID:   submission.SubmissionID,
				StudentID:      req.StudentID,
				AcademicYearID: req.AcademicYearID,
				TotalAmount:    submission.TotalAmount.StringFixed(2),
				LineCount:      submission.LineCount,
			},
		})
	}
	events.Notify(ctx, s.bus, events.LevelInfo, "Payment processed successfully")

	return &SubmitResult{
		Submission: submission,
		Refreshed:  s.fees.RefreshAfterPayment(ctx, req.StudentID, req.AcademicYearID),
	}, nil
}

func (s *draftService) Discard(draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[draftID]; !ok {
		return ErrDraftNotFound
	}
	delete(s.drafts, draftID)
	return nil
}

func (s *draftService) Submission(ctx context.Context, submissionID string) (*domain.PaymentSubmission, error) {
	if _, err := uuid.Parse(submissionID); err != nil {
		return nil, repository.ErrSubmissionNotFound
	}
	return s.repo.GetByID(ctx, submissionID)
}

// Submissions lists the audit records of a student for one academic year,
// newest first.
func (s *draftService) Submissions(ctx context.Context, studentID, academicYearID int64) ([]domain.PaymentSubmission, error) {
	yearID, err := s.fees.ResolveYear(ctx, academicYearID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByStudent(ctx, studentID, yearID)
}

// record writes the PENDING audit row. Audit failures are logged and do not
// block the payment.
func (s *draftService) record(ctx context.Context, req *domain.PaymentRequest) *domain.PaymentSubmission {
	sub := &domain.PaymentSubmission{
		SubmissionID:   uuid.New().String(),
		StudentID:      req.StudentID,
		AcademicYearID: req.AcademicYearID,
		PaymentMethod:  req.PaymentMethod,
		Description:    req.Description,
		TotalAmount:    req.Total(),
		LineCount:      len(req.PaymentDetails),
		Status:         domain.SubmissionPending,
		Lines:          make([]domain.SubmissionLine, 0, len(req.PaymentDetails)),
	}
	for _, d := range req.PaymentDetails {
		sub.Lines = append(sub.Lines, domain.SubmissionLine{
			SubmissionID:      sub.SubmissionID,
			FeeCategoryID:     d.FeeCategoryID,
			ScheduleMappingID: d.ScheduleMappingID,
			AmountPaying:      d.AmountPaying,
			PendingAmount:     d.PendingAmount,
			PaymentDate:       d.PaymentDate,
		})
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		logger.GetLogger().WithError(err).WithField("submission_id", sub.SubmissionID).Error("Failed to record payment submission")
	}
	return sub
}

func (s *draftService) markSubmission(ctx context.Context, sub *domain.PaymentSubmission, status domain.SubmissionStatus, message *string) {
	sub.Status = status
	sub.ErrorMessage = message
	if err := s.repo.UpdateStatus(ctx, sub); err != nil {
		logger.GetLogger().WithError(err).WithField("submission_id", sub.SubmissionID).Error("Failed to update payment submission")
	}
}

func (s *draftService) warn(ctx context.Context, draftID, message string) {
	s.mu.Lock()
	if draft, ok := s.drafts[draftID]; ok {
		draft.Warning = message
	}
	s.mu.Unlock()

	events.Notify(ctx, s.bus, events.LevelWarning, message)
}

func (d *Draft) line(mappingID int64) *domain.PaymentLine {
	for i := range d.Pending {
		if d.Pending[i].ScheduleMappingID == mappingID {
			return &d.Pending[i]
		}
	}
	for i := range d.Upcoming {
		if d.Upcoming[i].ScheduleMappingID == mappingID {
			return &d.Upcoming[i]
		}
	}
	return nil
}

func (d *Draft) lines() []domain.PaymentLine {
	return reconcile.Classification{Pending: d.Pending, Upcoming: d.Upcoming}.Lines()
}

func (d *Draft) clone() *Draft {
	c := *d
	c.Pending = append(make([]domain.PaymentLine, 0, len(d.Pending)), d.Pending...)
	c.Upcoming = append(make([]domain.PaymentLine, 0, len(d.Upcoming)), d.Upcoming...)
	return &c
}

// Total is the sum of the amounts currently entered on payable lines.
func (d *Draft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, detail := range reconcile.PayableDetails(d.lines()) {
		total = total.Add(detail.AmountPaying)
	}
	return total
}
