package repository

import (
	"context"
	"database/sql"
	"errors"

	"feedesk/internal/domain"
	"feedesk/pkg/logger"
)

// ErrSubmissionNotFound is returned when no submission has the given id.
var ErrSubmissionNotFound = errors.New("payment submission not found")

type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.PaymentSubmission) error
	UpdateStatus(ctx context.Context, sub *domain.PaymentSubmission) error
	GetByID(ctx context.Context, submissionID string) (*domain.PaymentSubmission, error)
	ListByStudent(ctx context.Context, studentID, academicYearID int64) ([]domain.PaymentSubmission, error)
}

type submissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create inserts the submission and its lines in one transaction.
func (r *submissionRepository) Create(ctx context.Context, sub *domain.PaymentSubmission) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to begin transaction")
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO payment_submissions (
			submission_id, student_id, academic_year_id, payment_method,
			description, total_amount, line_count, status, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(
		ctx,
		query,
		sub.SubmissionID,
		sub.StudentID,
		sub.AcademicYearID,
		sub.PaymentMethod,
		sub.Description,
		sub.TotalAmount,
		sub.LineCount,
		sub.Status,
		sub.ErrorMessage,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to create payment submission")
		return err
	}

	if len(sub.Lines) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO payment_submission_lines (
				submission_id, fee_category_id, schedule_mapping_id,
				amount_paying, pending_amount, payment_date
			) VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to prepare statement")
			return err
		}
		defer stmt.Close()

		for i := range sub.Lines {
			line := &sub.Lines[i]
			line.SubmissionID = sub.SubmissionID
			err := stmt.QueryRowContext(
				ctx,
				line.SubmissionID,
				line.FeeCategoryID,
				line.ScheduleMappingID,
				line.AmountPaying,
				line.PendingAmount,
				line.PaymentDate,
			).Scan(&line.ID, &line.CreatedAt)
			if err != nil {
				logger.GetLogger().WithError(err).Error("Failed to insert submission line")
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to commit transaction")
		return err
	}

	return nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, sub *domain.PaymentSubmission) error {
	query := `
		UPDATE payment_submissions
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE submission_id = $3
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query, sub.Status, sub.ErrorMessage, sub.SubmissionID).Scan(&sub.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrSubmissionNotFound
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to update payment submission")
		return err
	}

	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, submissionID string) (*domain.PaymentSubmission, error) {
	query := `
		SELECT id, submission_id, student_id, academic_year_id, payment_method,
			   description, total_amount, line_count, status, error_message,
			   created_at, updated_at
		FROM payment_submissions
		WHERE submission_id = $1
	`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, submissionID))
	if err == sql.ErrNoRows {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get payment submission")
		return nil, err
	}

	lines, err := r.getLines(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	sub.Lines = lines

	return sub, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID, academicYearID int64) ([]domain.PaymentSubmission, error) {
	query := `
		SELECT id, submission_id, student_id, academic_year_id, payment_method,
			   description, total_amount, line_count, status, error_message,
			   created_at, updated_at
		FROM payment_submissions
		WHERE student_id = $1 AND academic_year_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, academicYearID)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query payment submissions")
		return nil, err
	}
	defer rows.Close()

	submissions := make([]domain.PaymentSubmission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan payment submission")
			continue
		}
		submissions = append(submissions, *sub)
	}

	return submissions, rows.Err()
}

func (r *submissionRepository) getLines(ctx context.Context, submissionID string) ([]domain.SubmissionLine, error) {
	query := `
		SELECT id, submission_id, fee_category_id, schedule_mapping_id,
			   amount_paying, pending_amount, payment_date, created_at
		FROM payment_submission_lines
		WHERE submission_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query submission lines")
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.SubmissionLine, 0)
	for rows.Next() {
		var line domain.SubmissionLine
		err := rows.Scan(
			&line.ID,
			&line.SubmissionID,
			&line.FeeCategoryID,
			&line.ScheduleMappingID,
			&line.AmountPaying,
			&line.PendingAmount,
			&line.PaymentDate,
			&line.CreatedAt,
		)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan submission line")
			continue
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*domain.PaymentSubmission, error) {
	var sub domain.PaymentSubmission
	err := row.Scan(
		&sub.ID,
		&sub.SubmissionID,
		&sub.StudentID,
		&sub.AcademicYearID,
		&sub.PaymentMethod,
		&sub.Description,
		&sub.TotalAmount,
		&sub.LineCount,
		&sub.Status,
		&sub.ErrorMessage,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
