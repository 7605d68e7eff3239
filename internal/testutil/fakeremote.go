package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/cmorante/poaplan/internal/planservice"
)

// FakeRemote is an in-memory planning service for tests. It assigns
// sequential server ids, records the order of calls, detects duplicate
// monthly programmings, and can be scripted to fail specific operations.
type FakeRemote struct {
	mu     sync.Mutex
	nextID int

	PeriodsByCode map[string]planservice.PeriodRecord
	POAs          []planservice.POARecord
	Activities    []planservice.ActivityRecord
	Tasks         []planservice.TaskRecord
	Programmings  map[string]planservice.ProgrammingRecord
	BudgetLines   map[string]planservice.BudgetLineRecord
	TaskDetails   map[string][]planservice.TaskDetailRecord
	Projects      []planservice.ProjectRecord
	ProjectTypes  []planservice.ProjectTypeRecord

	// Calls records "op:entity" in invocation order.
	Calls []string

	// FailOn maps an "op:entity" key to the error that call should return.
	FailOn map[string]error

	// TrimActivityBatch drops this many records from the tail of every
	// activity batch response, simulating a positional contract violation.
	TrimActivityBatch int
}

// NewFakeRemote creates an empty FakeRemote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		PeriodsByCode: make(map[string]planservice.PeriodRecord),
		Programmings:  make(map[string]planservice.ProgrammingRecord),
		BudgetLines:   make(map[string]planservice.BudgetLineRecord),
		TaskDetails:   make(map[string][]planservice.TaskDetailRecord),
		FailOn:        make(map[string]error),
	}
}

func (f *FakeRemote) record(op, entity string) error {
	key := op + ":" + entity
	f.Calls = append(f.Calls, key)
	if err, ok := f.FailOn[key]; ok {
		return err
	}
	if err, ok := f.FailOn[op]; ok {
		return err
	}
	return nil
}

func (f *FakeRemote) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// CallsFor returns the recorded calls matching the given op.
func (f *FakeRemote) CallsFor(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.Calls {
		if len(c) >= len(op) && c[:len(op)] == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeRemote) FindPeriodByCode(_ context.Context, code string) (*planservice.PeriodRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("find_period", code); err != nil {
		return nil, err
	}
	rec, ok := f.PeriodsByCode[code]
	if !ok {
		return nil, planservice.ErrNotFound
	}
	return &rec, nil
}

func (f *FakeRemote) CreatePeriod(_ context.Context, draft planservice.PeriodDraft) (*planservice.PeriodRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create_period", draft.Code); err != nil {
		return nil, err
	}
	rec := planservice.PeriodRecord{
		ID: f.id("per"), Code: draft.Code, Name: draft.Name, Year: draft.Year,
		StartDate: draft.StartDate, EndDate: draft.EndDate, MonthLabel: draft.MonthLabel,
	}
	f.PeriodsByCode[draft.Code] = rec
	return &rec, nil
}

func (f *FakeRemote) CreatePOA(_ context.Context, draft planservice.POADraft) (*planservice.POARecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create_poa", draft.Code); err != nil {
		return nil, err
	}
	rec := planservice.POARecord{
		ID: f.id("poa"), ProjectID: draft.ProjectID, PeriodID: draft.PeriodID,
		Type: draft.Type, Code: draft.Code, Budget: draft.Budget,
	}
	f.POAs = append(f.POAs, rec)
	return &rec, nil
}

func (f *FakeRemote) ListPOAsByProject(_ context.Context, projectID string) ([]planservice.POARecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list_poas", projectID); err != nil {
		return nil, err
	}
	var out []planservice.POARecord
	for _, poa := range f.POAs {
		if poa.ProjectID == projectID {
			out = append(out, poa)
		}
	}
	return out, nil
}

func (f *FakeRemote) CreateActivitiesBatch(_ context.Context, poaID string, drafts []planservice.ActivityDraft) ([]planservice.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create_activities", poaID); err != nil {
		return nil, err
	}
	records := make([]planservice.ActivityRecord, 0, len(drafts))
	for _, d := range drafts {
		rec := planservice.ActivityRecord{
			ID: f.id("act"), POAID: poaID, Ordinal: d.Ordinal, Description: d.Description,
		}
		f.Activities = append(f.Activities, rec)
		records = append(records, rec)
	}
	if f.TrimActivityBatch > 0 && f.TrimActivityBatch < len(records) {
		records = records[:len(records)-f.TrimActivityBatch]
	}
	return records, nil
}

func (f *FakeRemote) CreateTask(_ context.Context, activityID string, draft planservice.TaskDraft) (*planservice.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create_task", draft.Name); err != nil {
		return nil, err
	}
	total := draft.UnitPrice.Mul(decimalFromInt(draft.Quantity))
	rec := planservice.TaskRecord{
		ID: f.id("task"), ActivityID: activityID, DetailID: draft.DetailID,
		Name: draft.Name, Quantity: draft.Quantity, UnitPrice: draft.UnitPrice,
		Total: total, AvailableBalance: total,
	}
	f.Tasks = append(f.Tasks, rec)
	return &rec, nil
}

func (f *FakeRemote) CreateMonthlyProgramming(_ context.Context, draft planservice.ProgrammingDraft) (*planservice.ProgrammingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := draft.TaskID + "|" + draft.Month
	if err := f.record("create_programming", key); err != nil {
		return nil, err
	}
	if _, exists := f.Programmings[key]; exists {
		return nil, planservice.ErrConflict
	}
	rec := planservice.ProgrammingRecord{
		ID: f.id("prog"), TaskID: draft.TaskID, Month: draft.Month, Value: draft.Value,
	}
	f.Programmings[key] = rec
	return &rec, nil
}

func (f *FakeRemote) GetBudgetLine(_ context.Context, id string) (*planservice.BudgetLineRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("get_budget_line", id); err != nil {
		return nil, err
	}
	rec, ok := f.BudgetLines[id]
	if !ok {
		return nil, planservice.ErrNotFound
	}
	return &rec, nil
}

func (f *FakeRemote) ListTaskDetails(_ context.Context, poaType string) ([]planservice.TaskDetailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list_task_details", poaType); err != nil {
		return nil, err
	}
	return f.TaskDetails[poaType], nil
}

func (f *FakeRemote) ListProjects(_ context.Context, filter string) ([]planservice.ProjectRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list_projects", filter); err != nil {
		return nil, err
	}
	return f.Projects, nil
}

func (f *FakeRemote) ListApprovedProjectTypes(_ context.Context) ([]planservice.ProjectTypeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list_project_types", ""); err != nil {
		return nil, err
	}
	return f.ProjectTypes, nil
}
