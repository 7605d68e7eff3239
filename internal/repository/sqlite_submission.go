package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cmorante/poaplan/internal/db"
	"github.com/cmorante/poaplan/internal/domain"
)

// SQLiteSubmissionRepo implements SubmissionRepo using a SQLite database.
type SQLiteSubmissionRepo struct {
	db db.DBTX
}

// NewSQLiteSubmissionRepo creates a new SQLiteSubmissionRepo.
func NewSQLiteSubmissionRepo(dbtx db.DBTX) *SQLiteSubmissionRepo {
	return &SQLiteSubmissionRepo{db: dbtx}
}

func (r *SQLiteSubmissionRepo) Record(ctx context.Context, sub *domain.Submission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO submissions (
			id, plan_id, submitted_at,
			periods_attempted, periods_succeeded,
			poas_attempted, poas_succeeded,
			activities_attempted, activities_succeeded,
			tasks_attempted, tasks_succeeded,
			programmings_attempted, programmings_succeeded,
			skipped, first_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.PlanID, sub.SubmittedAt.Format(time.RFC3339),
		sub.PeriodsAttempted, sub.PeriodsSucceeded,
		sub.POAsAttempted, sub.POAsSucceeded,
		sub.ActivitiesAttempted, sub.ActivitiesSucceeded,
		sub.TasksAttempted, sub.TasksSucceeded,
		sub.ProgrammingsAttempted, sub.ProgrammingsSucceeded,
		sub.Skipped, nullableString(sub.FirstError),
	)
	if err != nil {
		return fmt.Errorf("recording submission: %w", err)
	}
	return nil
}

func (r *SQLiteSubmissionRepo) ListByPlan(ctx context.Context, planID string) ([]*domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_id, submitted_at,
			periods_attempted, periods_succeeded,
			poas_attempted, poas_succeeded,
			activities_attempted, activities_succeeded,
			tasks_attempted, tasks_succeeded,
			programmings_attempted, programmings_succeeded,
			skipped, COALESCE(first_error, '')
		 FROM submissions WHERE plan_id = ? ORDER BY submitted_at`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Submission
	for rows.Next() {
		var sub domain.Submission
		var submittedAt string
		err := rows.Scan(
			&sub.ID, &sub.PlanID, &submittedAt,
			&sub.PeriodsAttempted, &sub.PeriodsSucceeded,
			&sub.POAsAttempted, &sub.POAsSucceeded,
			&sub.ActivitiesAttempted, &sub.ActivitiesSucceeded,
			&sub.TasksAttempted, &sub.TasksSucceeded,
			&sub.ProgrammingsAttempted, &sub.ProgrammingsSucceeded,
			&sub.Skipped, &sub.FirstError,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		if sub.SubmittedAt, err = time.Parse(time.RFC3339, submittedAt); err != nil {
			return nil, fmt.Errorf("parsing submitted_at: %w", err)
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating submissions: %w", err)
	}
	return subs, nil
}

// nullableString converts an empty string to SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
