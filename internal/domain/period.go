package domain

import (
	"fmt"
	"time"
)

// Period is one fiscal-year slice of a project's timeline. ID is empty
// until the period is persisted by the remote service; TempID identifies
// the draft locally in the meantime.
type Period struct {
	ID         string
	TempID     string
	Code       string
	Name       string
	Year       int
	StartDate  time.Time
	EndDate    time.Time
	MonthLabel string
}

// PeriodCode derives the canonical period code for a fiscal year.
// One period exists per year, so the code is unique within a project.
func PeriodCode(year int) string {
	return fmt.Sprintf("PER-%d", year)
}

// Persisted reports whether the period has a server-assigned identifier.
func (p *Period) Persisted() bool {
	return p.ID != ""
}
