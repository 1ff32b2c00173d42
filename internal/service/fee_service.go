package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"feedesk/internal/domain"
	"feedesk/internal/events"
	"feedesk/internal/platform"
	"feedesk/internal/reconcile"
	"feedesk/pkg/logger"
)

type FeeService interface {
	ActiveYear(ctx context.Context) (*domain.AcademicYear, error)
	ResolveYear(ctx context.Context, academicYearID int64) (int64, error)
	Catalog(ctx context.Context, academicYearID int64) (*domain.FeeCatalog, error)
	CumulativeDetails(ctx context.Context, academicYearID int64) CumulativeList
	Stats(ctx context.Context, academicYearID int64) (domain.PaymentStats, CumulativeList)
	MonthlySummaries(ctx context.Context, academicYearID int64, year int) []domain.MonthlyCategorySummary
	CategorySummary(ctx context.Context, academicYearID int64, year int) []domain.CategorySummary
	StudentInstallments(ctx context.Context, studentID int64) (*reconcile.Classification, error)
	OpenDetails(ctx context.Context, studentID int64) (*StudentDetails, error)
	CloseDetails(studentID int64)
	RefreshAfterPayment(ctx context.Context, studentID, academicYearID int64) *Refreshed
}

// CumulativeList is the cumulative payment view of one academic year.
// Stale is set when the latest fetch failed and a previous list is served.
type CumulativeList struct {
	AcademicYearID int64                            `json:"academic_year_id"`
	Records        []domain.CumulativePaymentRecord `json:"records"`
	Stale          bool                             `json:"stale"`
	Warning        string                           `json:"warning,omitempty"`
	FetchedAt      time.Time                        `json:"fetched_at"`
}

// StudentDetails is an open payment-details view for one student.
type StudentDetails struct {
	StudentID    int64                          `json:"student_id"`
	Installments []domain.StudentFeeInstallment `json:"installments"`
	FetchedAt    time.Time                      `json:"fetched_at"`
}

// Refreshed holds the views reloaded after a successful payment.
type Refreshed struct {
	Cumulative CumulativeList                  `json:"cumulative"`
	Monthly    []domain.MonthlyCategorySummary `json:"monthly"`
	Details    *StudentDetails                 `json:"details,omitempty"`
}

type feeService struct {
	api         platform.API
	bus         events.Bus
	concurrency int
	now         func() time.Time

	mu        sync.Mutex
	lastGood  map[int64]CumulativeList
	openViews map[int64]*StudentDetails
}

func NewFeeService(api platform.API, bus events.Bus, monthlyConcurrency int) FeeService {
	return &feeService{
		api:         api,
		bus:         bus,
		concurrency: monthlyConcurrency,
		now:         time.Now,
		lastGood:    make(map[int64]CumulativeList),
		openViews:   make(map[int64]*StudentDetails),
	}
}

func (s *feeService) ActiveYear(ctx context.Context) (*domain.AcademicYear, error) {
	year, err := s.api.ActiveAcademicYear(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active academic year: %w", err)
	}
	return year, nil
}

// ResolveYear returns academicYearID, or the active year when it is zero.
func (s *feeService) ResolveYear(ctx context.Context, academicYearID int64) (int64, error) {
	if academicYearID != 0 {
		return academicYearID, nil
	}
	year, err := s.ActiveYear(ctx)
	if err != nil {
		return 0, err
	}
	return year.ID, nil
}

func (s *feeService) Catalog(ctx context.Context, academicYearID int64) (*domain.FeeCatalog, error) {
	categories, err := s.api.FeeCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee categories: %w", err)
	}

	classFees, err := s.api.ClassFees(ctx, academicYearID)
	if err != nil {
		return nil, fmt.Errorf("failed to load class fees: %w", err)
	}

	return &domain.FeeCatalog{
		AcademicYearID: academicYearID,
		Categories:     categories,
		ClassFees:      classFees,
	}, nil
}

// CumulativeDetails fetches the cumulative list. On failure it serves the
// last list fetched for the year, or an empty one, and never errors.
func (s *feeService) CumulativeDetails(ctx context.Context, academicYearID int64) CumulativeList {
	records, err := s.api.CumulativeDetails(ctx, academicYearID)
	if err == nil {
		list := CumulativeList{
			AcademicYearID: academicYearID,
			Records:        reconcile.WithDueAmounts(records),
			FetchedAt:      s.now(),
		}

		s.mu.Lock()
		s.lastGood[academicYearID] = list
		s.mu.Unlock()
		return list
	}

	message := platform.UserMessage(err)
	logger.GetLogger().WithError(err).WithField("academic_year_id", academicYearID).Error("Failed to fetch cumulative payment details")
	events.Notify(ctx, s.bus, events.LevelError, message)

	s.mu.Lock()
	list, ok := s.lastGood[academicYearID]
	s.mu.Unlock()

	if !ok {
		list = CumulativeList{
			AcademicYearID: academicYearID,
			Records:        []domain.CumulativePaymentRecord{},
		}
	}
	list.Stale = true
	list.Warning = message
	return list
}

func (s *feeService) Stats(ctx context.Context, academicYearID int64) (domain.PaymentStats, CumulativeList) {
	list := s.CumulativeDetails(ctx, academicYearID)
	return reconcile.ComputeStats(list.Records), list
}

func (s *feeService) MonthlySummaries(ctx context.Context, academicYearID int64, year int) []domain.MonthlyCategorySummary {
	if year == 0 {
		year = s.now().Year()
	}

	return reconcile.CollectMonthly(ctx, year, s.concurrency, func(ctx context.Context, target domain.Date) (*domain.MonthlyCategorySummary, error) {
		return s.api.CategorySummary(ctx, target, academicYearID)
	})
}

func (s *feeService) CategorySummary(ctx context.Context, academicYearID int64, year int) []domain.CategorySummary {
	return reconcile.SummarizeCategories(s.MonthlySummaries(ctx, academicYearID, year))
}

func (s *feeService) StudentInstallments(ctx context.Context, studentID int64) (*reconcile.Classification, error) {
	if studentID == 0 {
		return nil, reconcile.ErrNoStudent
	}

	installments, err := s.api.StudentPaymentStatus(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments for student %d: %w", studentID, err)
	}

	out := reconcile.Classify(installments, reconcile.Today(s.now()))
	return &out, nil
}

// OpenDetails fetches a student's payment details and keeps the view open so
// it is refreshed after payments for that student.
func (s *feeService) OpenDetails(ctx context.Context, studentID int64) (*StudentDetails, error) {
	installments, err := s.api.StudentPaymentStatus(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment details for student %d: %w", studentID, err)
	}

	details := &StudentDetails{
		StudentID:    studentID,
		Installments: installments,
		FetchedAt:    s.now(),
	}

	s.mu.Lock()
	s.openViews[studentID] = details
	s.mu.Unlock()

	return details, nil
}

func (s *feeService) CloseDetails(studentID int64) {
	s.mu.Lock()
	delete(s.openViews, studentID)
	s.mu.Unlock()
}

func (s *feeService) detailsOpen(studentID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.openViews[studentID]
	return ok
}

// RefreshAfterPayment reloads the cumulative list, the monthly summaries of
// the current year and, when open, the student's details view.
func (s *feeService) RefreshAfterPayment(ctx context.Context, studentID, academicYearID int64) *Refreshed {
	refreshed := &Refreshed{
		Cumulative: s.CumulativeDetails(ctx, academicYearID),
		Monthly:    s.MonthlySummaries(ctx, academicYearID, 0),
	}

	if s.detailsOpen(studentID) {
		details, err := s.OpenDetails(ctx, studentID)
		if err != nil {
			logger.GetLogger().WithError(err).WithField("student_id", studentID).Warn("Failed to refresh payment details view")
			events.Notify(ctx, s.bus, events.LevelWarning, platform.UserMessage(err))
		} else {
			refreshed.Details = details
		}
	}

	return refreshed
}
