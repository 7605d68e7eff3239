package planservice

import (
	"time"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// PeriodDraft is the request body for creating a fiscal period.
type PeriodDraft struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Year       int    `json:"year"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	MonthLabel string `json:"month_label"`
}

// PeriodRecord is a persisted fiscal period as returned by the service.
type PeriodRecord struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Year       int    `json:"year"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	MonthLabel string `json:"month_label"`
}

// NewPeriodDraft maps a domain period to its wire draft.
func NewPeriodDraft(p domain.Period) PeriodDraft {
	return PeriodDraft{
		Code:       p.Code,
		Name:       p.Name,
		Year:       p.Year,
		StartDate:  p.StartDate.Format(dateLayout),
		EndDate:    p.EndDate.Format(dateLayout),
		MonthLabel: p.MonthLabel,
	}
}

// POADraft is the request body for creating an annual operating plan.
type POADraft struct {
	ProjectID string          `json:"project_id"`
	PeriodID  string          `json:"period_id"`
	Type      string          `json:"type"`
	Code      string          `json:"code"`
	Budget    decimal.Decimal `json:"budget"`
}

// POARecord is a persisted POA as returned by the service.
type POARecord struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	PeriodID  string          `json:"period_id"`
	Type      string          `json:"type"`
	Code      string          `json:"code"`
	Budget    decimal.Decimal `json:"budget"`
}

// ActivityDraft is one element of the batched activity create request.
// Total and balance start at zero; the service computes them once tasks
// are attached.
type ActivityDraft struct {
	Ordinal     int             `json:"ordinal"`
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
	Balance     decimal.Decimal `json:"balance"`
}

// ActivityRecord is a persisted activity. The response to a batch create
// is positional: index i corresponds to request index i.
type ActivityRecord struct {
	ID          string `json:"id"`
	POAID       string `json:"poa_id"`
	Ordinal     int    `json:"ordinal"`
	Description string `json:"description"`
}

// TaskDraft is the request body for creating a task under an activity.
type TaskDraft struct {
	DetailID  string          `json:"detail_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// TaskRecord is a persisted task. Total and AvailableBalance are computed
// server-side.
type TaskRecord struct {
	ID               string          `json:"id"`
	ActivityID       string          `json:"activity_id"`
	DetailID         string          `json:"detail_id"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Total            decimal.Decimal `json:"total"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

// ProgrammingDraft is the request body for one monthly programming entry.
// Month uses the MM-YYYY key format.
type ProgrammingDraft struct {
	TaskID string          `json:"task_id"`
	Month  string          `json:"month"`
	Value  decimal.Decimal `json:"value"`
}

// ProgrammingRecord is a persisted monthly programming entry.
type ProgrammingRecord struct {
	ID     string          `json:"id"`
	TaskID string          `json:"task_id"`
	Month  string          `json:"month"`
	Value  decimal.Decimal `json:"value"`
}

// BudgetLineRecord is the classifier reference data behind a task detail.
type BudgetLineRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Classifier string `json:"classifier"`
}

// ToDomain converts the wire record to its domain form.
func (r BudgetLineRecord) ToDomain() domain.BudgetLine {
	return domain.BudgetLine{ID: r.ID, Name: r.Name, Classifier: r.Classifier}
}

// TaskDetailRecord is one entry of a POA type's task-detail catalog.
type TaskDetailRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BudgetLineID string `json:"budget_line_id"`
}

// ToDomain converts the wire record to its domain form.
func (r TaskDetailRecord) ToDomain() domain.TaskDetail {
	return domain.TaskDetail{ID: r.ID, Name: r.Name, BudgetLineID: r.BudgetLineID}
}

// ProjectRecord is a project as returned by the service.
type ProjectRecord struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Title          string          `json:"title"`
	ApprovedBudget decimal.Decimal `json:"approved_budget"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	ExtensionStart string          `json:"extension_start,omitempty"`
	ExtensionEnd   string          `json:"extension_end,omitempty"`
}

// ToDomain converts the wire record to a domain project. Malformed dates
// are a service contract violation and surface as an error.
func (r ProjectRecord) ToDomain() (*domain.Project, error) {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return nil, err
	}
	p := &domain.Project{
		ID:             r.ID,
		Code:           r.Code,
		Title:          r.Title,
		ApprovedBudget: r.ApprovedBudget,
		StartDate:      start,
		EndDate:        end,
	}
	if r.ExtensionStart != "" && r.ExtensionEnd != "" {
		extStart, err := time.Parse(dateLayout, r.ExtensionStart)
		if err != nil {
			return nil, err
		}
		extEnd, err := time.Parse(dateLayout, r.ExtensionEnd)
		if err != nil {
			return nil, err
		}
		p.Extension = &domain.DateRange{Start: extStart, End: extEnd}
	}
	return p, nil
}

// ProjectTypeRecord is one approved project type.
type ProjectTypeRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
