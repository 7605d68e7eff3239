// Package catalog filters a POA's task-detail catalog down to the entries
// applicable to one chosen activity, by resolving each entry's budget
// line classifier.
package catalog

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cmorante/poaplan/internal/domain"
)

// classifierParts is the number of sub-codes a budget line classifier
// carries, one per POA type family.
const classifierParts = 3

var ordinalPattern = regexp.MustCompile(`([0-9]+)\s*$`)

// Filter narrows task-detail catalogs per activity. Lookups go through
// the session's LineCache; individual lookup failures exclude only the
// failing entry.
type Filter struct {
	cache   *LineCache
	resolve LineResolver
	logger  *slog.Logger
}

// NewFilter creates a Filter over the given cache and resolver.
// A nil logger discards lookup-failure diagnostics.
func NewFilter(cache *LineCache, resolve LineResolver, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Filter{cache: cache, resolve: resolve, logger: logger}
}

// matchedDetail pairs a kept catalog entry with the numeric sub-code that
// matched, used for ordering.
type matchedDetail struct {
	detail  domain.TaskDetail
	subCode float64
}

// ForActivity returns the catalog entries applicable to the activity with
// the given ordinal under the given POA type, ordered ascending by the
// numeric value of the matched sub-code. Budget lines are resolved
// concurrently, one lookup per entry.
func (f *Filter) ForActivity(ctx context.Context, entries []domain.TaskDetail, ordinal int, poaType domain.POAType) []domain.TaskDetail {
	index := poaType.ClassifierIndex()

	var (
		mu      sync.Mutex
		matched []matchedDetail
		wg      sync.WaitGroup
	)

	for _, entry := range entries {
		wg.Add(1)
		go func(entry domain.TaskDetail) {
			defer wg.Done()

			line, err := f.cache.Resolve(ctx, entry.BudgetLineID, f.resolve)
			if err != nil {
				f.logger.Warn("budget line lookup failed, excluding entry",
					"detail_id", entry.ID, "budget_line_id", entry.BudgetLineID, "error", err)
				return
			}

			subCode, ok := applicableSubCode(line.Classifier, index, ordinal)
			if !ok {
				return
			}

			mu.Lock()
			matched = append(matched, matchedDetail{detail: entry, subCode: subCode})
			mu.Unlock()
		}(entry)
	}
	wg.Wait()

	sort.Slice(matched, func(i, j int) bool { return matched[i].subCode < matched[j].subCode })

	out := make([]domain.TaskDetail, len(matched))
	for i, m := range matched {
		out[i] = m.detail
	}
	return out
}

// ForActivityCode is ForActivity keyed by an activity code instead of an
// ordinal. When no ordinal can be derived from the code, the full
// unfiltered catalog is returned: a filtering failure must never block
// task creation.
func (f *Filter) ForActivityCode(ctx context.Context, entries []domain.TaskDetail, activityCode string, poaType domain.POAType) []domain.TaskDetail {
	ordinal, ok := ActivityOrdinal(activityCode)
	if !ok {
		f.logger.Warn("cannot derive ordinal from activity code, returning full catalog",
			"activity_code", activityCode)
		return entries
	}
	return f.ForActivity(ctx, entries, ordinal, poaType)
}

// ActivityOrdinal extracts the trailing ordinal number from an activity
// code such as "ACT-3" or "Actividad 2".
func ActivityOrdinal(code string) (int, bool) {
	m := ordinalPattern.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// applicableSubCode extracts the sub-code at position index from a
// three-part classifier like "1.1; 0; 2.3" and reports whether it applies
// to the given activity ordinal. A literal "0" means not applicable to
// that POA type family; otherwise the integer prefix before the decimal
// point must equal the ordinal.
func applicableSubCode(classifier string, index, ordinal int) (float64, bool) {
	parts := strings.Split(classifier, ";")
	if index < 0 || index >= len(parts) || len(parts) != classifierParts {
		return 0, false
	}
	code := strings.TrimSpace(parts[index])
	if code == "0" || code == "" {
		return 0, false
	}

	prefix := code
	if dot := strings.Index(code, "."); dot >= 0 {
		prefix = code[:dot]
	}
	n, err := strconv.Atoi(prefix)
	if err != nil || n != ordinal {
		return 0, false
	}

	value, err := strconv.ParseFloat(code, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
