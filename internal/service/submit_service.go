package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cmorante/poaplan/internal/db"
	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/orchestrator"
	"github.com/cmorante/poaplan/internal/repository"
)

type submitService struct {
	plans    PlanService
	subs     repository.SubmissionRepo
	uow      db.UnitOfWork
	orch     *orchestrator.Orchestrator
	observer UseCaseObserver
	now      func() time.Time
}

// NewSubmitService creates the submission service. It re-validates the
// plan against current remote state before handing it to the
// orchestrator, and journals every attempt whatever its outcome.
func NewSubmitService(
	plans PlanService,
	subs repository.SubmissionRepo,
	uow db.UnitOfWork,
	orch *orchestrator.Orchestrator,
	observers ...UseCaseObserver,
) SubmitService {
	return &submitService{
		plans:    plans,
		subs:     subs,
		uow:      uow,
		orch:     orch,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *submitService) Submit(ctx context.Context, planRef string) (result *SubmitResult, err error) {
	start := s.now()
	defer func() {
		event := UseCaseEvent{
			Name:      "plan_submit",
			Duration:  time.Since(start),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"plan": planRef},
			StartedAt: start,
		}
		if result != nil && result.Report != nil {
			event.Fields["summary"] = result.Report.Summary()
		}
		s.observer.ObserveUseCase(ctx, event)
	}()

	plan, err := s.plans.GetByRef(ctx, planRef)
	if err != nil {
		return nil, err
	}

	issues, err := s.plans.Validate(ctx, plan)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	report, err := s.orch.Submit(ctx, plan)
	if err != nil {
		// Precondition failures (another submission in flight, empty plan)
		// never reach the remote service, so nothing is journaled.
		return nil, err
	}

	// Journal entry and status change land together or not at all.
	sub := submissionFromReport(plan.ID, report, s.now())
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSubmissionRepo(tx).Record(ctx, sub); err != nil {
			return err
		}
		return repository.NewSQLitePlanRepo(tx).UpdateStatus(ctx, plan.ID, statusForReport(report))
	})
	if err != nil {
		return nil, err
	}

	return &SubmitResult{Report: report, Submission: sub}, nil
}

func (s *submitService) History(ctx context.Context, planRef string) ([]*domain.Submission, error) {
	plan, err := s.plans.GetByRef(ctx, planRef)
	if err != nil {
		return nil, err
	}
	return s.subs.ListByPlan(ctx, plan.ID)
}

func submissionFromReport(planID string, report *orchestrator.Report, at time.Time) *domain.Submission {
	sub := &domain.Submission{
		ID:          uuid.New().String(),
		PlanID:      planID,
		SubmittedAt: at,

		PeriodsAttempted:      report.Periods.Attempted,
		PeriodsSucceeded:      report.Periods.Succeeded,
		POAsAttempted:         report.POAs.Attempted,
		POAsSucceeded:         report.POAs.Succeeded,
		ActivitiesAttempted:   report.Activities.Attempted,
		ActivitiesSucceeded:   report.Activities.Succeeded,
		TasksAttempted:        report.Tasks.Attempted,
		TasksSucceeded:        report.Tasks.Succeeded,
		ProgrammingsAttempted: report.Programmings.Attempted,
		ProgrammingsSucceeded: report.Programmings.Succeeded,

		Skipped: len(report.Skipped),
	}
	if report.FirstError != nil {
		sub.FirstError = report.FirstError.Error()
	}
	return sub
}

// statusForReport maps a submission outcome to the plan's stored status:
// everything committed, something committed, or nothing committed.
func statusForReport(report *orchestrator.Report) domain.PlanStatus {
	if report.Complete() {
		return domain.PlanSubmitted
	}
	committed := report.Periods.Succeeded + report.POAs.Succeeded +
		report.Activities.Succeeded + report.Tasks.Succeeded +
		report.Programmings.Succeeded
	if committed > 0 {
		return domain.PlanPartial
	}
	return domain.PlanFailed
}
