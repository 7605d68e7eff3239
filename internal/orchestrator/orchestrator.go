// Package orchestrator executes a validated draft plan against the remote
// planning service in dependency order: periods, then POAs, then
// activities, then tasks, then monthly programmings. It is deliberately
// not transactional: entities committed before a failure stay persisted,
// and the aggregated report tells the operator what remains.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/planservice"
)

// IDMap reconciles client-side temporary identifiers with server-assigned
// identifiers. It is exclusive to one in-flight submission.
type IDMap map[string]string

// ProgressEvent reports one entity outcome while a submission runs.
type ProgressEvent struct {
	Stage  Stage
	Entity string
	Err    error
}

// createdTask pairs a draft task with its server-assigned id, in
// declaration order, for the programming stage.
type createdTask struct {
	realID string
	draft  domain.DraftTask
}

// Orchestrator drives the five-stage creation sequence. It must not be
// invoked concurrently for two submissions; a single in-progress flag
// enforces that.
type Orchestrator struct {
	client          planservice.Client
	logger          *slog.Logger
	progress        func(ProgressEvent)
	programmingYear int // 0 means: calendar year at submission time
	inFlight        atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithProgress sets a callback invoked after each entity is processed.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// WithProgrammingYear fixes the calendar year used in monthly programming
// keys. The default is the year at submission time, matching how the
// planning service has always been fed, even for periods of another
// fiscal year.
func WithProgrammingYear(year int) Option {
	return func(o *Orchestrator) { o.programmingYear = year }
}

// New creates an Orchestrator over the given planning-service client.
func New(client planservice.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) emit(stage Stage, entity string, err error) {
	if o.progress != nil {
		o.progress(ProgressEvent{Stage: stage, Entity: entity, Err: err})
	}
}

// Submit executes the plan. The returned report always describes how much
// of the plan committed; the error return covers preconditions only.
func (o *Orchestrator) Submit(ctx context.Context, plan *domain.Plan) (*Report, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer o.inFlight.Store(false)

	if len(plan.POAs) == 0 {
		return nil, fmt.Errorf("plan %q has no POAs to submit", plan.Name)
	}

	report := &Report{}
	ids := make(IDMap)

	if ok := o.reconcilePeriods(ctx, plan, ids, report); !ok {
		return report, nil
	}
	if ok := o.createPOAs(ctx, plan, ids, report); !ok {
		return report, nil
	}
	if ok := o.createActivities(ctx, plan, ids, report); !ok {
		return report, nil
	}
	created, ok := o.createTasks(ctx, plan, ids, report)
	if !ok {
		return report, nil
	}
	o.createProgrammings(ctx, created, report)
	return report, nil
}

// reconcilePeriods reuses existing remote periods by derived code and
// creates the missing ones. Any failure here is fatal to the submission.
func (o *Orchestrator) reconcilePeriods(ctx context.Context, plan *domain.Plan, ids IDMap, report *Report) bool {
	for _, period := range plan.Periods {
		report.Periods.Attempted++

		// A period carrying a server id needs no lookup.
		if period.Persisted() {
			ids[period.TempID] = period.ID
			report.Periods.Succeeded++
			o.emit(StagePeriods, period.Code, nil)
			continue
		}

		existing, err := o.client.FindPeriodByCode(ctx, period.Code)
		switch {
		case err == nil:
			ids[period.TempID] = existing.ID
			o.logger.Debug("period reused", "code", period.Code, "id", existing.ID)
		case errors.Is(err, planservice.ErrNotFound):
			created, createErr := o.client.CreatePeriod(ctx, planservice.NewPeriodDraft(period))
			if createErr != nil {
				stageErr := &StageError{Stage: StagePeriods, Entity: period.Code, Err: createErr}
				report.fail(stageErr)
				o.emit(StagePeriods, period.Code, stageErr)
				return false
			}
			ids[period.TempID] = created.ID
		default:
			stageErr := &StageError{Stage: StagePeriods, Entity: period.Code, Err: err}
			report.fail(stageErr)
			o.emit(StagePeriods, period.Code, stageErr)
			return false
		}

		report.Periods.Succeeded++
		o.emit(StagePeriods, period.Code, nil)
	}
	return true
}

// createPOAs substitutes each POA's period reference with the real id and
// creates it. A failure aborts the remaining POAs; periods committed in
// the previous stage are not rolled back.
func (o *Orchestrator) createPOAs(ctx context.Context, plan *domain.Plan, ids IDMap, report *Report) bool {
	for _, poa := range plan.POAs {
		report.POAs.Attempted++

		periodID, ok := ids[poa.PeriodTempID]
		if !ok {
			stageErr := &StageError{Stage: StagePOAs, Entity: poa.Code,
				Err: fmt.Errorf("no reconciled period for year %d", poa.PeriodYear)}
			report.fail(stageErr)
			o.emit(StagePOAs, poa.Code, stageErr)
			return false
		}

		created, err := o.client.CreatePOA(ctx, planservice.POADraft{
			ProjectID: plan.ProjectID,
			PeriodID:  periodID,
			Type:      string(poa.Type),
			Code:      poa.Code,
			Budget:    poa.Budget,
		})
		if err != nil {
			stageErr := &StageError{Stage: StagePOAs, Entity: poa.Code, Err: err}
			report.fail(stageErr)
			o.emit(StagePOAs, poa.Code, stageErr)
			return false
		}

		ids[poa.TempID] = created.ID
		report.POAs.Succeeded++
		o.emit(StagePOAs, poa.Code, nil)
	}
	return true
}

// createActivities submits all activities of each POA in one batched call
// and maps the positional response. A response of the wrong length is a
// server contract violation: it is recorded as the fatal error, but the
// positions that did come back are still mapped so their tasks proceed.
func (o *Orchestrator) createActivities(ctx context.Context, plan *domain.Plan, ids IDMap, report *Report) bool {
	for _, poa := range plan.POAs {
		if len(poa.Activities) == 0 {
			continue
		}

		drafts := make([]planservice.ActivityDraft, len(poa.Activities))
		for i, act := range poa.Activities {
			drafts[i] = planservice.ActivityDraft{Ordinal: act.Ordinal, Description: act.Description}
		}
		report.Activities.Attempted += len(drafts)

		records, err := o.client.CreateActivitiesBatch(ctx, ids[poa.TempID], drafts)
		if err != nil {
			stageErr := &StageError{Stage: StageActivities, Entity: poa.Code, Err: err}
			report.fail(stageErr)
			o.emit(StageActivities, poa.Code, stageErr)
			return false
		}

		if len(records) != len(drafts) {
			recErr := &ReconciliationError{POACode: poa.Code, Requested: len(drafts), Received: len(records)}
			report.fail(recErr)
			o.emit(StageActivities, poa.Code, recErr)
			o.logger.Error("activity batch length mismatch",
				"poa", poa.Code, "requested", len(drafts), "received", len(records))
		}

		mapped := min(len(records), len(drafts))
		for i := 0; i < mapped; i++ {
			ids[poa.Activities[i].TempID] = records[i].ID
		}
		report.Activities.Succeeded += mapped
		if report.FirstError == nil {
			o.emit(StageActivities, poa.Code, nil)
		}
	}
	return true
}

// createTasks creates tasks strictly sequentially, in declaration order,
// so each task's real id is known before its programmings and error
// attribution stays unambiguous. Activities with no mapped id are skipped
// and reported, not fatal.
func (o *Orchestrator) createTasks(ctx context.Context, plan *domain.Plan, ids IDMap, report *Report) ([]createdTask, bool) {
	var created []createdTask

	for _, poa := range plan.POAs {
		for _, act := range poa.Activities {
			activityID, ok := ids[act.TempID]
			if !ok {
				skip := &IntegrityError{POACode: poa.Code, Ordinal: act.Ordinal}
				report.Skipped = append(report.Skipped, skip)
				o.logger.Warn("skipping tasks of unmapped activity", "poa", poa.Code, "ordinal", act.Ordinal)
				o.emit(StageTasks, fmt.Sprintf("%s/activity-%d", poa.Code, act.Ordinal), skip)
				continue
			}

			for _, task := range act.Tasks {
				report.Tasks.Attempted++

				record, err := o.client.CreateTask(ctx, activityID, planservice.TaskDraft{
					DetailID:  task.DetailID,
					Name:      task.Name,
					Quantity:  task.Quantity,
					UnitPrice: task.UnitPrice,
				})
				if err != nil {
					stageErr := &StageError{Stage: StageTasks, Entity: task.Name, Err: err}
					report.fail(stageErr)
					o.emit(StageTasks, task.Name, stageErr)
					return created, false
				}

				ids[task.TempID] = record.ID
				created = append(created, createdTask{realID: record.ID, draft: task})
				report.Tasks.Succeeded++
				o.emit(StageTasks, task.Name, nil)
			}
		}
	}
	return created, true
}

// createProgrammings issues one create per non-zero month slot of each
// created task. Month keys use the calendar year at submission time, not
// the period's fiscal year; see WithProgrammingYear.
func (o *Orchestrator) createProgrammings(ctx context.Context, created []createdTask, report *Report) {
	year := o.programmingYear
	if year == 0 {
		year = time.Now().Year()
	}

	for _, task := range created {
		for slot, value := range task.draft.Months {
			if value.IsZero() {
				continue
			}
			month := fmt.Sprintf("%02d-%d", slot+1, year)
			report.Programmings.Attempted++

			_, err := o.client.CreateMonthlyProgramming(ctx, planservice.ProgrammingDraft{
				TaskID: task.realID,
				Month:  month,
				Value:  value,
			})
			if err != nil {
				var failure error
				if errors.Is(err, planservice.ErrConflict) {
					failure = &ConflictError{TaskName: task.draft.Name, Month: month}
				} else {
					failure = &StageError{Stage: StageProgrammings,
						Entity: fmt.Sprintf("%s %s", task.draft.Name, month), Err: err}
				}
				report.fail(failure)
				o.emit(StageProgrammings, task.draft.Name, failure)
				return
			}

			report.Programmings.Succeeded++
			o.emit(StageProgrammings, fmt.Sprintf("%s %s", task.draft.Name, month), nil)
		}
	}
}
