package repository

import (
	"context"

	"github.com/cmorante/poaplan/internal/domain"
)

// PlanRepo persists draft plans with their full POA/activity/task tree.
type PlanRepo interface {
	// Save inserts or fully replaces a plan and its draft tree.
	Save(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	GetByName(ctx context.Context, name string) (*domain.Plan, error)
	// List returns plan headers only; child trees are loaded via GetByID.
	List(ctx context.Context) ([]*domain.Plan, error)
	UpdateStatus(ctx context.Context, id string, status domain.PlanStatus) error
	Delete(ctx context.Context, id string) error
}

// SubmissionRepo journals submission outcomes per plan.
type SubmissionRepo interface {
	Record(ctx context.Context, sub *domain.Submission) error
	ListByPlan(ctx context.Context, planID string) ([]*domain.Submission, error)
}
