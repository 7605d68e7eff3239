package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var projectCodePattern = regexp.MustCompile(`^[A-Z]{2,6}-[0-9]{2,4}$`)

// DateRange is an inclusive [Start, End] interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether Start does not come after End.
func (r DateRange) Valid() bool {
	return !r.Start.After(r.End)
}

// Project is a funded initiative with an approved budget and a date range.
// The planning core only reads projects; they are owned by the remote
// planning service.
type Project struct {
	ID             string
	Code           string
	Title          string
	ApprovedBudget decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
	Extension      *DateRange
}

// ValidateCode checks that Code matches the institutional format:
// 2-6 uppercase letters, a dash, and 2-4 digits (e.g. INFR-024).
func (p *Project) ValidateCode() error {
	if p.Code == "" {
		return fmt.Errorf("project code is required")
	}
	if !projectCodePattern.MatchString(p.Code) {
		return fmt.Errorf("project code %q must be 2-6 uppercase letters, a dash and 2-4 digits (e.g. INFR-024)", p.Code)
	}
	return nil
}

// Range returns the project's primary date range.
func (p *Project) Range() DateRange {
	return DateRange{Start: p.StartDate, End: p.EndDate}
}
