package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDraftTask_Total(t *testing.T) {
	task := DraftTask{Quantity: 3, UnitPrice: dec("12.50")}
	assert.True(t, task.Total().Equal(dec("37.50")))
}

func TestDraftTask_MonthSum(t *testing.T) {
	task := DraftTask{}
	task.Months[0] = dec("100")
	task.Months[5] = dec("49.99")
	assert.True(t, task.MonthSum().Equal(dec("149.99")))
	assert.True(t, task.HasProgramming())

	empty := DraftTask{}
	assert.True(t, empty.MonthSum().IsZero())
	assert.False(t, empty.HasProgramming())
}

func TestPlan_BudgetTotal(t *testing.T) {
	plan := Plan{POAs: []DraftPOA{
		{Budget: dec("4000")},
		{Budget: dec("3000.25")},
	}}
	assert.True(t, plan.BudgetTotal().Equal(dec("7000.25")))
}

func TestPOAType_ClassifierIndex(t *testing.T) {
	assert.Equal(t, 0, POAOperational.ClassifierIndex())
	assert.Equal(t, 1, POAInvestment.ClassifierIndex())
	assert.Equal(t, 2, POAResearch.ClassifierIndex())
	assert.Equal(t, 2, POAType("custom").ClassifierIndex())
}

func TestActivityCatalog_ReturnsCopy(t *testing.T) {
	first := ActivityCatalog(POAOperational)
	first[0].Description = "mutated"
	second := ActivityCatalog(POAOperational)
	assert.NotEqual(t, "mutated", second[0].Description)
}

func TestDateRange_Valid(t *testing.T) {
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, DateRange{Start: day, End: day}.Valid())
	assert.True(t, DateRange{Start: day, End: day.AddDate(1, 0, 0)}.Valid())
	assert.False(t, DateRange{Start: day.AddDate(0, 0, 1), End: day}.Valid())
}

func TestPeriod_Persisted(t *testing.T) {
	assert.False(t, (&Period{TempID: NewTempID()}).Persisted())
	assert.True(t, (&Period{ID: "per-1"}).Persisted())
}

func TestProject_ValidateCode(t *testing.T) {
	cases := []struct {
		code  string
		valid bool
	}{
		{"INFR-024", true},
		{"AB-24", true},
		{"infr-024", false},
		{"INFR024", false},
		{"", false},
	}
	for _, tc := range cases {
		p := Project{Code: tc.code}
		err := p.ValidateCode()
		if tc.valid {
			assert.NoError(t, err, tc.code)
		} else {
			assert.Error(t, err, tc.code)
		}
	}
}
