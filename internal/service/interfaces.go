package service

import (
	"context"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/orchestrator"
	"github.com/cmorante/poaplan/internal/planservice"
)

// TaskInput is one costed line item of a plan request. Amount fields
// arrive as entered text and go through ledger validation.
type TaskInput struct {
	DetailID  string
	Name      string
	Quantity  int
	UnitPrice string
	// Months maps month-of-year (1-12) to the planned spend for that month.
	Months map[int]string
}

// ActivityInput selects one catalog activity and its tasks. An empty
// description takes the catalog description for the ordinal.
type ActivityInput struct {
	Ordinal     int
	Description string
	Tasks       []TaskInput
}

// POAInput describes one POA of a plan request, bound to a fiscal year of
// the project's computed periods.
type POAInput struct {
	Year       int
	Type       domain.POAType
	Budget     string
	Activities []ActivityInput
}

// CreatePlanRequest is everything needed to assemble a draft plan.
type CreatePlanRequest struct {
	Name        string
	ProjectCode string
	POAs        []POAInput
}

// PlanService assembles, validates and stores draft plans.
type PlanService interface {
	// Create builds the draft plan for the request, validates it against
	// the project's budget and stores it locally.
	Create(ctx context.Context, req CreatePlanRequest) (*domain.Plan, error)
	// GetByRef resolves a plan by id or name.
	GetByRef(ctx context.Context, ref string) (*domain.Plan, error)
	List(ctx context.Context) ([]*domain.Plan, error)
	Delete(ctx context.Context, ref string) error
	// Validate re-checks a stored plan against current remote state and
	// returns the issues that would block submission.
	Validate(ctx context.Context, plan *domain.Plan) ([]Issue, error)
}

// SubmitResult pairs the orchestrator report with the journaled record.
type SubmitResult struct {
	Report     *orchestrator.Report
	Submission *domain.Submission
}

// SubmitService validates a stored plan and executes it against the
// remote planning service.
type SubmitService interface {
	Submit(ctx context.Context, planRef string) (*SubmitResult, error)
	// History returns the journaled submission attempts for a plan.
	History(ctx context.Context, planRef string) ([]*domain.Submission, error)
}

// InitialData is the read-only reference data loaded at startup.
type InitialData struct {
	Projects     []planservice.ProjectRecord
	ProjectTypes []planservice.ProjectTypeRecord
}

// RefDataService loads remote reference data.
type RefDataService interface {
	// LoadInitial fetches projects and approved project types
	// concurrently, waiting for all and failing together.
	LoadInitial(ctx context.Context) (*InitialData, error)
	// ProjectByCode resolves one project by its institutional code.
	ProjectByCode(ctx context.Context, code string) (*domain.Project, error)
	// TaskDetailsForActivity returns the task-detail catalog filtered for
	// one activity of a POA type.
	TaskDetailsForActivity(ctx context.Context, poaType domain.POAType, ordinal int) ([]domain.TaskDetail, error)
}
