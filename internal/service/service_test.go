package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedesk/internal/domain"
	"feedesk/internal/events"
	"feedesk/internal/platform"
	"feedesk/internal/reconcile"
	"feedesk/internal/repository"
)

var fixedNow = time.Date(2026, 10, 19, 10, 30, 0, 0, time.Local)

const installmentsJSON = `[
	{"fee_id": 1, "fee_category_id": 10, "student_fixed_fee_id": 100, "student_fixed_fee_payment_schedule_mapping_id": 1001,
	 "pending_amount": 1000, "payment_due_date": "2026-09-01", "fee_category_name": "Tuition"},
	{"fee_id": 2, "fee_category_id": 20, "student_fixed_fee_id": 200, "student_fixed_fee_payment_schedule_mapping_id": 1002,
	 "pending_amount": 500, "payment_due_date": "2026-10-19", "fee_category_name": "Transport"},
	{"fee_id": 3, "fee_category_id": 30, "student_fixed_fee_id": 300, "student_fixed_fee_payment_schedule_mapping_id": 1003,
	 "pending_amount": 750, "payment_due_date": "2026-12-01", "fee_category_name": "Exam"},
	{"fee_id": 4, "fee_category_id": 40, "student_fixed_fee_id": 400, "student_fixed_fee_payment_schedule_mapping_id": 1004,
	 "pending_amount": 0, "payment_due_date": "2026-08-01", "fee_category_name": "Library"}
]`

// fakePlatform is an httptest double of the school platform that counts calls.
type fakePlatform struct {
	cumulative     atomic.Int32
	monthly        atomic.Int32
	studentStatus  atomic.Int32
	processPayment atomic.Int32

	failCumulative atomic.Bool
	failPayment    atomic.Bool
	failMonth      string

	mu       sync.Mutex
	lastBody []byte
}

func (f *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/active_academic_years"):
		w.Write([]byte(`[{"id": 5, "year_name": "2026-27", "is_active": true}]`))

	case strings.HasSuffix(r.URL.Path, "/cumulative_details"):
		f.cumulative.Add(1)
		if f.failCumulative.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail": "database unavailable"}`))
			return
		}
		w.Write([]byte(`[
			{"student_id": 42, "student_name": "Asha", "total_fees_to_be_paid": 2250, "total_fees_paid": 0},
			{"student_id": 43, "student_name": "Ravi", "total_fees_to_be_paid": 1000, "total_fees_paid": 1000}
		]`))

	case strings.HasSuffix(r.URL.Path, "/category_summary"):
		f.monthly.Add(1)
		if f.failMonth != "" && r.URL.Query().Get("target_date") == f.failMonth {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"summary_by_category": [{"fee_category_id": 10, "fee_category_name": "Tuition", "total_payable": 100, "total_collected": 60, "total_pending": 40}],
			"total_payable_this_month": 100, "total_collected_this_month": 60, "total_pending_this_month": 40}`))

	case strings.Contains(r.URL.Path, "/student_payment_status/"):
		f.studentStatus.Add(1)
		if strings.HasSuffix(r.URL.Path, "/404") {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Student not found."}`))
			return
		}
		w.Write([]byte(installmentsJSON))

	case strings.HasSuffix(r.URL.Path, "/process_payment"):
		f.processPayment.Add(1)
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.lastBody = body
		f.mu.Unlock()
		if f.failPayment.Load() {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"payment_method": ["This field is required."]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success": true}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// fakeRepo keeps submissions in memory.
type fakeRepo struct {
	mu          sync.Mutex
	submissions map[string]domain.PaymentSubmission
	createErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{submissions: make(map[string]domain.PaymentSubmission)}
}

func (r *fakeRepo) Create(ctx context.Context, sub *domain.PaymentSubmission) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub.CreatedAt = time.Now()
	r.submissions[sub.SubmissionID] = *sub
	return nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, sub *domain.PaymentSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.submissions[sub.SubmissionID]
	if !ok {
		return repository.ErrSubmissionNotFound
	}
	stored.Status = sub.Status
	stored.ErrorMessage = sub.ErrorMessage
	r.submissions[sub.SubmissionID] = stored
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, submissionID string) (*domain.PaymentSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[submissionID]
	if !ok {
		return nil, repository.ErrSubmissionNotFound
	}
	return &sub, nil
}

func (r *fakeRepo) ListByStudent(ctx context.Context, studentID, academicYearID int64) ([]domain.PaymentSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PaymentSubmission
	for _, s := range r.submissions {
		if s.StudentID == studentID && s.AcademicYearID == academicYearID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fixture struct {
	platform *fakePlatform
	repo     *fakeRepo
	bus      *events.MemoryBus
	fees     *feeService
	drafts   *draftService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fp := &fakePlatform{}
	srv := httptest.NewServer(fp)
	t.Cleanup(srv.Close)

	bus := events.NewMemoryBus()
	api := platform.NewClient(srv.URL, "", 5*time.Second, bus)

	fees := NewFeeService(api, bus, 4).(*feeService)
	fees.now = func() time.Time { return fixedNow }

	repo := newFakeRepo()
	drafts := NewDraftService(api, fees, repo, bus).(*draftService)
	drafts.now = func() time.Time { return fixedNow }

	return &fixture{platform: fp, repo: repo, bus: bus, fees: fees, drafts: drafts}
}

func strPtr(s string) *string { return &s }

func TestFeeService_CumulativeDetailsDerivesDueAmount(t *testing.T) {
	f := newFixture(t)

	list := f.fees.CumulativeDetails(context.Background(), 5)

	require.Len(t, list.Records, 2)
	assert.False(t, list.Stale)
	assert.Equal(t, "2250", list.Records[0].DueAmount.String())
	assert.True(t, list.Records[1].DueAmount.IsZero())
}

func TestFeeService_CumulativeDetailsFallsBackToLastGood(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var notes []string
	f.bus.Subscribe(events.TopicNotification, func(ctx context.Context, e events.Event) {
		notes = append(notes, e.Payload.(events.Notification).Message)
	})

	f.platform.failCumulative.Store(true)
	first := f.fees.CumulativeDetails(ctx, 5)
	assert.True(t, first.Stale)
	assert.NotNil(t, first.Records)
	assert.Empty(t, first.Records, "first load falls back to an empty list")
	assert.Equal(t, "database unavailable", first.Warning)

	f.platform.failCumulative.Store(false)
	good := f.fees.CumulativeDetails(ctx, 5)
	require.Len(t, good.Records, 2)

	f.platform.failCumulative.Store(true)
	stale := f.fees.CumulativeDetails(ctx, 5)
	assert.True(t, stale.Stale)
	assert.Len(t, stale.Records, 2, "last known good list is served")

	assert.Equal(t, []string{"database unavailable", "database unavailable"}, notes)
}

func TestFeeService_Stats(t *testing.T) {
	f := newFixture(t)

	stats, _ := f.fees.Stats(context.Background(), 5)

	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, "1000", stats.TotalCollected.String())
	assert.Equal(t, "2250", stats.PendingFees.String())
	assert.Equal(t, 1, stats.PaidStudents)
	assert.Equal(t, 1, stats.Defaulters)
}

func TestFeeService_MonthlySummariesPartialFailure(t *testing.T) {
	f := newFixture(t)
	f.platform.failMonth = "2026-07-01"

	rows := f.fees.MonthlySummaries(context.Background(), 5, 0)

	require.Len(t, rows, 12)
	assert.EqualValues(t, 12, f.platform.monthly.Load())
	for i, row := range rows {
		if i == 6 {
			assert.True(t, row.TotalPayableThisMonth.IsZero())
			assert.Empty(t, row.SummaryByCategory)
			continue
		}
		assert.Equal(t, "100", row.TotalPayableThisMonth.String(), "month %d", i+1)
	}
}

func TestFeeService_CategorySummary(t *testing.T) {
	f := newFixture(t)

	out := f.fees.CategorySummary(context.Background(), 5, 2026)

	require.Len(t, out, 1)
	assert.Equal(t, "1200", out[0].TotalPayable.String())
	assert.Equal(t, "720", out[0].TotalCollected.String())
}

func TestFeeService_StudentInstallments(t *testing.T) {
	f := newFixture(t)

	out, err := f.fees.StudentInstallments(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, out.Pending, 2)
	require.Len(t, out.Upcoming, 1)
	assert.Equal(t, int64(1002), out.Pending[1].ScheduleMappingID, "due today is pending")
	assert.Equal(t, int64(1003), out.Upcoming[0].ScheduleMappingID)

	_, err = f.fees.StudentInstallments(context.Background(), 0)
	assert.ErrorIs(t, err, reconcile.ErrNoStudent)
}

func TestFeeService_ResolveYear(t *testing.T) {
	f := newFixture(t)

	id, err := f.fees.ResolveYear(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	id, err = f.fees.ResolveYear(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
}

func TestDraftService_OpenPrefillsLines(t *testing.T) {
	f := newFixture(t)

	draft, err := f.drafts.Open(context.Background(), 42, 0)

	require.NoError(t, err)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, int64(5), draft.AcademicYearID)
	require.Len(t, draft.Pending, 2)
	assert.Equal(t, "1000", draft.Pending[0].AmountPaying)
	assert.Equal(t, "2026-10-19", draft.Pending[0].PaymentDate.String())
	assert.Len(t, draft.Upcoming, 1)
}

func TestDraftService_OpenWithoutStudent(t *testing.T) {
	f := newFixture(t)

	_, err := f.drafts.Open(context.Background(), 0, 5)

	assert.ErrorIs(t, err, reconcile.ErrNoStudent)
	assert.Zero(t, f.platform.studentStatus.Load())
}

func TestDraftService_UpdateLineValidatesEachEdit(t *testing.T) {
	f := newFixture(t)
	draft, err := f.drafts.Open(context.Background(), 42, 5)
	require.NoError(t, err)

	updated, err := f.drafts.UpdateLine(draft.ID, 1002, LineUpdate{AmountPaying: strPtr("500.01")})
	require.NoError(t, err)
	assert.Equal(t, "500", updated.Pending[1].AmountPaying, "clamped to the balance")
	assert.Contains(t, updated.Warning, "Transport")
	assert.Contains(t, updated.Warning, "500.00")

	updated, err = f.drafts.UpdateLine(draft.ID, 1002, LineUpdate{AmountPaying: strPtr("12x")})
	require.NoError(t, err)
	assert.Equal(t, "12x", updated.Pending[1].AmountPaying)
	assert.Equal(t, reconcile.ErrInvalidNumber.Error(), updated.Pending[1].Error)
	assert.Empty(t, updated.Warning)

	date, _ := domain.ParseDate("2026-10-01")
	updated, err = f.drafts.UpdateLine(draft.ID, 1003, LineUpdate{AmountPaying: strPtr(""), PaymentDate: &date})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Upcoming[0].AmountPaying)
	assert.Equal(t, "2026-10-01", updated.Upcoming[0].PaymentDate.String())

	_, err = f.drafts.UpdateLine(draft.ID, 9999, LineUpdate{AmountPaying: strPtr("1")})
	assert.ErrorIs(t, err, ErrLineNotFound)

	_, err = f.drafts.UpdateLine("missing", 1002, LineUpdate{})
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDraftService_SubmitBlocksEmptySelection(t *testing.T) {
	f := newFixture(t)
	draft, err := f.drafts.Open(context.Background(), 42, 5)
	require.NoError(t, err)

	for _, id := range []int64{1001, 1002, 1003} {
		_, err := f.drafts.UpdateLine(draft.ID, id, LineUpdate{AmountPaying: strPtr("")})
		require.NoError(t, err)
	}

	_, err = f.drafts.Submit(context.Background(), draft.ID, SubmitInput{PaymentMethod: "cash"})

	assert.ErrorIs(t, err, reconcile.ErrNoPayableLines)
	assert.Zero(t, f.platform.processPayment.Load(), "no network call")
	assert.Empty(t, f.repo.submissions)

	kept, err := f.drafts.Get(draft.ID)
	require.NoError(t, err)
	assert.Contains(t, kept.Warning, "for at least one fee")
}

func TestDraftService_SubmitRefreshesViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.fees.OpenDetails(ctx, 42)
	require.NoError(t, err)

	draft, err := f.drafts.Open(ctx, 42, 5)
	require.NoError(t, err)
	_, err = f.drafts.UpdateLine(draft.ID, 1003, LineUpdate{AmountPaying: strPtr("")})
	require.NoError(t, err)

	var processed []events.PaymentProcessed
	f.bus.Subscribe(events.TopicPaymentProcessed, func(ctx context.Context, e events.Event) {
		processed = append(processed, e.Payload.(events.PaymentProcessed))
	})

	statusCallsBefore := f.platform.studentStatus.Load()

	result, err := f.drafts.Submit(ctx, draft.ID, SubmitInput{PaymentMethod: "cash", Description: "October"})

	require.NoError(t, err)
	assert.EqualValues(t, 1, f.platform.processPayment.Load())
	assert.EqualValues(t, 1, f.platform.cumulative.Load(), "cumulative list refetched")
	assert.EqualValues(t, 12, f.platform.monthly.Load(), "all twelve months refetched")
	assert.Equal(t, statusCallsBefore+1, f.platform.studentStatus.Load(), "open details view refetched")

	require.NotNil(t, result.Refreshed.Details)
	assert.Len(t, result.Refreshed.Monthly, 12)
	assert.Len(t, result.Refreshed.Cumulative.Records, 2)

	assert.Equal(t, domain.SubmissionCompleted, result.Submission.Status)
	assert.Equal(t, "1500.00", result.Submission.TotalAmount.StringFixed(2))
	stored, err := f.repo.GetByID(ctx, result.Submission.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionCompleted, stored.Status)

	require.Len(t, processed, 1)
	assert.Equal(t, int64(42), processed[0].StudentID)

	var body domain.PaymentRequest
	require.NoError(t, json.Unmarshal(f.platform.lastBody, &body))
	assert.Equal(t, "cash", body.PaymentMethod)
	assert.Len(t, body.PaymentDetails, 2)

	_, err = f.drafts.Get(draft.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound, "form is closed after success")
}

func TestDraftService_SubmitWithoutDetailsViewSkipsDetailRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.drafts.Open(ctx, 42, 5)
	require.NoError(t, err)

	result, err := f.drafts.Submit(ctx, draft.ID, SubmitInput{PaymentMethod: "upi"})

	require.NoError(t, err)
	assert.Nil(t, result.Refreshed.Details)
	assert.EqualValues(t, 1, f.platform.studentStatus.Load(), "only the draft's own fetch")
}

func TestDraftService_SubmitFailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.platform.failPayment.Store(true)

	draft, err := f.drafts.Open(ctx, 42, 5)
	require.NoError(t, err)
	_, err = f.drafts.UpdateLine(draft.ID, 1001, LineUpdate{AmountPaying: strPtr("250")})
	require.NoError(t, err)

	_, err = f.drafts.Submit(ctx, draft.ID, SubmitInput{})

	var apiErr *platform.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, f.platform.cumulative.Load(), "no refresh after failure")

	kept, err := f.drafts.Get(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "250", kept.Pending[0].AmountPaying, "entered values are intact")
	assert.Equal(t, "payment_method: This field is required.", kept.Warning)

	require.Len(t, f.repo.submissions, 1)
	for _, sub := range f.repo.submissions {
		assert.Equal(t, domain.SubmissionFailed, sub.Status)
		require.NotNil(t, sub.ErrorMessage)
		assert.Equal(t, kept.Warning, *sub.ErrorMessage)
	}
}

func TestDraftService_AuditFailureDoesNotBlockPayment(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = errors.New("db down")

	draft, err := f.drafts.Open(context.Background(), 42, 5)
	require.NoError(t, err)

	_, err = f.drafts.Submit(context.Background(), draft.ID, SubmitInput{PaymentMethod: "cash"})

	assert.NoError(t, err)
	assert.EqualValues(t, 1, f.platform.processPayment.Load())
}

func TestDraftService_Discard(t *testing.T) {
	f := newFixture(t)
	draft, err := f.drafts.Open(context.Background(), 42, 5)
	require.NoError(t, err)

	require.NoError(t, f.drafts.Discard(draft.ID))
	assert.ErrorIs(t, f.drafts.Discard(draft.ID), ErrDraftNotFound)
}

func TestDraftService_Submission(t *testing.T) {
	f := newFixture(t)

	_, err := f.drafts.Submission(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrSubmissionNotFound)
}

func TestDraft_Total(t *testing.T) {
	f := newFixture(t)
	draft, err := f.drafts.Open(context.Background(), 42, 5)
	require.NoError(t, err)

	assert.Equal(t, "2250", draft.Total().String())
}
