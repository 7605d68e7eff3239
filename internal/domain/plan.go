package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewTempID returns a locally-unique temporary identifier for a draft
// entity. Temp ids are retired once the remote service assigns real ones.
func NewTempID() string {
	return "tmp-" + uuid.New().String()
}

// Plan is a client-side draft of everything one submission creates:
// periods, POAs, activities, tasks and monthly programmings. All entities
// below the project are identified by temp ids until submitted.
type Plan struct {
	ID          string
	Name        string
	ProjectID   string
	ProjectCode string
	Status      PlanStatus
	Periods     []Period
	POAs        []DraftPOA
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DraftPOA is an annual operating plan draft tied to one period of the
// plan by the period's temp id.
type DraftPOA struct {
	TempID       string
	PeriodTempID string
	PeriodYear   int
	Type         POAType
	Code         string
	Budget       decimal.Decimal
	Activities   []DraftActivity
}

// DraftActivity is a numbered work category under a POA, drawn from the
// POA type's fixed catalog. At most one activity per ordinal per POA.
type DraftActivity struct {
	TempID      string
	Ordinal     int
	Description string
	Tasks       []DraftTask
}

// DraftTask is a costed line item under an activity. Months holds the
// planned spend per calendar month slot (index 0 = January).
type DraftTask struct {
	TempID    string
	DetailID  string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Months    [12]decimal.Decimal
}

// Total returns quantity × unit price.
func (t *DraftTask) Total() decimal.Decimal {
	return t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// MonthSum returns the sum of all twelve monthly values.
func (t *DraftTask) MonthSum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t.Months {
		sum = sum.Add(v)
	}
	return sum
}

// HasProgramming reports whether at least one month carries a non-zero value.
func (t *DraftTask) HasProgramming() bool {
	for _, v := range t.Months {
		if !v.IsZero() {
			return true
		}
	}
	return false
}

// BudgetTotal returns the sum of all POA budgets in the plan.
func (p *Plan) BudgetTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, poa := range p.POAs {
		sum = sum.Add(poa.Budget)
	}
	return sum
}

// PeriodByTempID returns the draft period with the given temp id.
func (p *Plan) PeriodByTempID(tempID string) (*Period, bool) {
	for i := range p.Periods {
		if p.Periods[i].TempID == tempID {
			return &p.Periods[i], true
		}
	}
	return nil, false
}

// POACode derives a POA's code from its base code and period year,
// e.g. "POA-INFR-024-2025".
func POACode(projectCode string, year int) string {
	return fmt.Sprintf("POA-%s-%d", projectCode, year)
}
