package fiscal

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cmorante/poaplan/internal/domain"
)

// ErrInvalidRange indicates the start date comes after the end date.
var ErrInvalidRange = errors.New("invalid date range: start is after end")

// ComputePeriods splits [start, end] into one fiscal-year period per
// calendar year, clipped to the range at both boundaries. Output is
// ordered ascending by year, which is the canonical ordering consumers
// must preserve.
func ComputePeriods(start, end time.Time) ([]domain.Period, error) {
	if r := (domain.DateRange{Start: start, End: end}); !r.Valid() {
		return nil, fmt.Errorf("%w: %s > %s",
			ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	var periods []domain.Period
	for year := start.Year(); year <= end.Year(); year++ {
		pStart := time.Date(year, time.January, 1, 0, 0, 0, 0, start.Location())
		pEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, start.Location())
		if year == start.Year() {
			pStart = start
		}
		if year == end.Year() {
			pEnd = end
		}

		periods = append(periods, domain.Period{
			TempID:     domain.NewTempID(),
			Code:       domain.PeriodCode(year),
			Name:       fmt.Sprintf("Fiscal period %d", year),
			Year:       year,
			StartDate:  pStart,
			EndDate:    pEnd,
			MonthLabel: monthLabel(pStart, pEnd),
		})
	}
	return periods, nil
}

// monthLabel renders the period's month span, e.g. "March-December".
// A period covering the whole year reads "January-December".
func monthLabel(start, end time.Time) string {
	return start.Month().String() + "-" + end.Month().String()
}

// MergePeriods combines primary-range periods with extension-range
// periods. Years already covered by the primary range win; an extension
// period for a covered year is dropped. The result is ordered ascending
// by year.
func MergePeriods(primary, extension []domain.Period) []domain.Period {
	covered := make(map[int]bool, len(primary))
	merged := make([]domain.Period, 0, len(primary)+len(extension))
	for _, p := range primary {
		covered[p.Year] = true
		merged = append(merged, p)
	}
	for _, p := range extension {
		if covered[p.Year] {
			continue
		}
		covered[p.Year] = true
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Year < merged[j].Year })
	return merged
}

// ProjectPeriods computes the full period list for a project, including
// its approved extension range when present.
func ProjectPeriods(p *domain.Project) ([]domain.Period, error) {
	r := p.Range()
	primary, err := ComputePeriods(r.Start, r.End)
	if err != nil {
		return nil, err
	}
	if p.Extension == nil {
		return primary, nil
	}
	extension, err := ComputePeriods(p.Extension.Start, p.Extension.End)
	if err != nil {
		return nil, fmt.Errorf("extension range: %w", err)
	}
	return MergePeriods(primary, extension), nil
}
