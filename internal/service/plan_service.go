package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cmorante/poaplan/internal/db"
	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/fiscal"
	"github.com/cmorante/poaplan/internal/ledger"
	"github.com/cmorante/poaplan/internal/planservice"
	"github.com/cmorante/poaplan/internal/repository"
)

// ErrPlanNotFound indicates no stored plan matched the given reference.
var ErrPlanNotFound = errors.New("plan not found")

type planService struct {
	plans    repository.PlanRepo
	uow      db.UnitOfWork
	remote   planservice.Client
	observer UseCaseObserver
	now      func() time.Time
}

// NewPlanService creates the plan assembly and storage service.
func NewPlanService(plans repository.PlanRepo, uow db.UnitOfWork, remote planservice.Client, observers ...UseCaseObserver) PlanService {
	return &planService{
		plans:    plans,
		uow:      uow,
		remote:   remote,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *planService) Create(ctx context.Context, req CreatePlanRequest) (plan *domain.Plan, err error) {
	start := s.now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "plan_create",
			Duration:  time.Since(start),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"project_code": req.ProjectCode},
			StartedAt: start,
		})
	}()

	if req.Name == "" {
		return nil, &ValidationError{Issues: []Issue{{Field: "plan", Message: "a plan name is required"}}}
	}
	project, err := s.projectByCode(ctx, req.ProjectCode)
	if err != nil {
		return nil, err
	}

	periods, err := fiscal.ProjectPeriods(project)
	if err != nil {
		return nil, fmt.Errorf("computing periods for %s: %w", project.Code, err)
	}

	plan = &domain.Plan{
		ID:          uuid.New().String(),
		Name:        req.Name,
		ProjectID:   project.ID,
		ProjectCode: project.Code,
		Status:      domain.PlanDraft,
		Periods:     periods,
		CreatedAt:   start,
		UpdatedAt:   start,
	}

	var issues []Issue
	for _, in := range req.POAs {
		poa, poaIssues := buildPOA(plan, in)
		issues = append(issues, poaIssues...)
		if poa != nil {
			plan.POAs = append(plan.POAs, *poa)
		}
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	existing, err := s.remote.ListPOAsByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("listing existing POAs: %w", err)
	}
	if issues := validatePlan(plan, project, existing); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	// The tree replace (delete plus full re-insert) must be atomic.
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLitePlanRepo(tx).Save(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// buildPOA converts one POA input into its draft form. Amount parsing
// issues are collected rather than failing fast so the caller sees every
// problem at once; a nil POA means the input was unusable.
func buildPOA(plan *domain.Plan, in POAInput) (*domain.DraftPOA, []Issue) {
	var issues []Issue
	field := fmt.Sprintf("poa %d", in.Year)

	var period *domain.Period
	for i := range plan.Periods {
		if plan.Periods[i].Year == in.Year {
			period = &plan.Periods[i]
			break
		}
	}
	if period == nil {
		return nil, []Issue{{Field: field, Message: fmt.Sprintf("year %d is outside the project's periods", in.Year)}}
	}

	budget, err := ledger.ParseAmount(in.Budget)
	if err != nil {
		issues = append(issues, Issue{Field: field + " budget", Message: err.Error()})
	}

	poa := &domain.DraftPOA{
		TempID:       domain.NewTempID(),
		PeriodTempID: period.TempID,
		PeriodYear:   period.Year,
		Type:         in.Type,
		Code:         domain.POACode(plan.ProjectCode, period.Year),
		Budget:       budget,
	}

	catalog := domain.ActivityCatalog(in.Type)
	for _, actIn := range in.Activities {
		act := domain.DraftActivity{
			TempID:      domain.NewTempID(),
			Ordinal:     actIn.Ordinal,
			Description: actIn.Description,
		}
		if act.Description == "" {
			for _, tmpl := range catalog {
				if tmpl.Ordinal == actIn.Ordinal {
					act.Description = tmpl.Description
					break
				}
			}
		}
		for _, taskIn := range actIn.Tasks {
			task, taskIssues := buildTask(field, taskIn)
			issues = append(issues, taskIssues...)
			act.Tasks = append(act.Tasks, task)
		}
		poa.Activities = append(poa.Activities, act)
	}
	return poa, issues
}

func buildTask(poaField string, in TaskInput) (domain.DraftTask, []Issue) {
	var issues []Issue
	field := fmt.Sprintf("%s task %q", poaField, in.Name)

	task := domain.DraftTask{
		TempID:   domain.NewTempID(),
		DetailID: in.DetailID,
		Name:     in.Name,
		Quantity: in.Quantity,
	}

	price, err := ledger.ParseAmount(in.UnitPrice)
	if err != nil {
		issues = append(issues, Issue{Field: field + " unit price", Message: err.Error()})
	}
	task.UnitPrice = price

	for month, raw := range in.Months {
		if month < 1 || month > 12 {
			issues = append(issues, Issue{Field: field, Message: fmt.Sprintf("month %d is out of range", month)})
			continue
		}
		value, err := ledger.ParseAmount(raw)
		if err != nil {
			issues = append(issues, Issue{Field: fmt.Sprintf("%s month %d", field, month), Message: err.Error()})
			continue
		}
		task.Months[month-1] = value
	}
	return task, issues
}

func (s *planService) GetByRef(ctx context.Context, ref string) (*domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, ref)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	plan, err = s.plans.GetByName(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrPlanNotFound, ref)
	}
	return plan, err
}

func (s *planService) List(ctx context.Context) ([]*domain.Plan, error) {
	return s.plans.List(ctx)
}

func (s *planService) Delete(ctx context.Context, ref string) error {
	plan, err := s.GetByRef(ctx, ref)
	if err != nil {
		return err
	}
	return s.plans.Delete(ctx, plan.ID)
}

func (s *planService) Validate(ctx context.Context, plan *domain.Plan) ([]Issue, error) {
	project, err := s.projectByCode(ctx, plan.ProjectCode)
	if err != nil {
		return nil, err
	}
	existing, err := s.remote.ListPOAsByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("listing existing POAs: %w", err)
	}
	return validatePlan(plan, project, existing), nil
}

// projectByCode resolves a project through the remote search endpoint,
// requiring an exact code match.
func (s *planService) projectByCode(ctx context.Context, code string) (*domain.Project, error) {
	probe := domain.Project{Code: code}
	if err := probe.ValidateCode(); err != nil {
		return nil, &ValidationError{Issues: []Issue{{Field: "project", Message: err.Error()}}}
	}
	records, err := s.remote.ListProjects(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	for _, rec := range records {
		if rec.Code != code {
			continue
		}
		project, err := rec.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", code, err)
		}
		return project, nil
	}
	return nil, fmt.Errorf("project %q: %w", code, planservice.ErrNotFound)
}
