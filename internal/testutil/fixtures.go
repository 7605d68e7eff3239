package testutil

import (
	"time"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/planservice"
	"github.com/shopspring/decimal"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// Dec parses a decimal literal, panicking on bad test input.
func Dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Date builds a UTC date at midnight.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SampleProjectRecord is the remote-side project that SamplePlan drafts
// against: a single 2025 fiscal year and room for four POAs of its size.
func SampleProjectRecord() planservice.ProjectRecord {
	return planservice.ProjectRecord{
		ID:             "proj-1",
		Code:           "INFR-024",
		Title:          "Regional infrastructure renewal",
		ApprovedBudget: Dec("20000.00"),
		StartDate:      "2025-01-01",
		EndDate:        "2025-12-31",
	}
}

// SamplePlan builds a one-period, one-POA draft plan with two activities:
// the first carries one fully programmed task, the second carries one
// task programmed over two months.
func SamplePlan() *domain.Plan {
	periodTemp := domain.NewTempID()

	taskA := domain.DraftTask{
		TempID:    domain.NewTempID(),
		DetailID:  "det-1",
		Name:      "Office supplies",
		Quantity:  10,
		UnitPrice: Dec("25.00"),
	}
	taskA.Months[2] = Dec("250.00")

	taskB := domain.DraftTask{
		TempID:    domain.NewTempID(),
		DetailID:  "det-2",
		Name:      "Consulting services",
		Quantity:  2,
		UnitPrice: Dec("500.00"),
	}
	taskB.Months[4] = Dec("600.00")
	taskB.Months[7] = Dec("400.00")

	return &domain.Plan{
		ID:          "plan-1",
		Name:        "infrastructure 2025",
		ProjectID:   "proj-1",
		ProjectCode: "INFR-024",
		Status:      domain.PlanDraft,
		Periods: []domain.Period{{
			TempID:     periodTemp,
			Code:       domain.PeriodCode(2025),
			Name:       "Fiscal period 2025",
			Year:       2025,
			StartDate:  Date(2025, time.January, 1),
			EndDate:    Date(2025, time.December, 31),
			MonthLabel: "January-December",
		}},
		POAs: []domain.DraftPOA{{
			TempID:       domain.NewTempID(),
			PeriodTempID: periodTemp,
			PeriodYear:   2025,
			Type:         domain.POAOperational,
			Code:         domain.POACode("INFR-024", 2025),
			Budget:       Dec("5000.00"),
			Activities: []domain.DraftActivity{
				{
					TempID:      domain.NewTempID(),
					Ordinal:     1,
					Description: "Administrative and financial management",
					Tasks:       []domain.DraftTask{taskA},
				},
				{
					TempID:      domain.NewTempID(),
					Ordinal:     2,
					Description: "Institutional services delivery",
					Tasks:       []domain.DraftTask{taskB},
				},
			},
		}},
		CreatedAt: Date(2025, time.February, 1),
		UpdatedAt: Date(2025, time.February, 1),
	}
}
