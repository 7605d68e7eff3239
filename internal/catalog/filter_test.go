package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticResolver serves budget lines from a map and counts lookups.
func staticResolver(lines map[string]domain.BudgetLine, calls *atomic.Int64) LineResolver {
	return func(_ context.Context, id string) (domain.BudgetLine, error) {
		if calls != nil {
			calls.Add(1)
		}
		line, ok := lines[id]
		if !ok {
			return domain.BudgetLine{}, errors.New("no such budget line")
		}
		return line, nil
	}
}

func detail(id, lineID string) domain.TaskDetail {
	return domain.TaskDetail{ID: id, Name: "detail " + id, BudgetLineID: lineID}
}

func TestFilter_ClassifierPositions(t *testing.T) {
	lines := map[string]domain.BudgetLine{
		"bl-1": {ID: "bl-1", Classifier: "1.1; 0; 2.3"},
	}
	entries := []domain.TaskDetail{detail("d-1", "bl-1")}

	cases := []struct {
		name    string
		ordinal int
		poaType domain.POAType
		want    int
	}{
		{"index 0 ordinal matches", 1, domain.POAOperational, 1},
		{"index 0 ordinal differs", 2, domain.POAOperational, 0},
		{"index 1 is literal zero", 1, domain.POAInvestment, 0},
		{"index 2 matches ordinal 2", 2, domain.POAResearch, 1},
		{"unknown type uses index 2", 2, domain.POAType("weird"), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFilter(NewLineCache(), staticResolver(lines, nil), nil)
			got := f.ForActivity(context.Background(), entries, tc.ordinal, tc.poaType)
			assert.Len(t, got, tc.want)
		})
	}
}

func TestFilter_OrdersByMatchedSubCode(t *testing.T) {
	lines := map[string]domain.BudgetLine{
		"bl-a": {ID: "bl-a", Classifier: "1.3; 0; 0"},
		"bl-b": {ID: "bl-b", Classifier: "1.1; 0; 0"},
		"bl-c": {ID: "bl-c", Classifier: "1.2; 0; 0"},
		"bl-d": {ID: "bl-d", Classifier: "2.1; 0; 0"},
	}
	entries := []domain.TaskDetail{
		detail("d-a", "bl-a"), detail("d-b", "bl-b"),
		detail("d-c", "bl-c"), detail("d-d", "bl-d"),
	}

	f := NewFilter(NewLineCache(), staticResolver(lines, nil), nil)
	got := f.ForActivity(context.Background(), entries, 1, domain.POAOperational)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"d-b", "d-c", "d-a"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestFilter_ToleratesIndividualLookupFailures(t *testing.T) {
	lines := map[string]domain.BudgetLine{
		"bl-ok": {ID: "bl-ok", Classifier: "1.1; 0; 0"},
		// bl-missing is absent: its entry must be excluded, not fatal.
	}
	entries := []domain.TaskDetail{
		detail("d-ok", "bl-ok"),
		detail("d-bad", "bl-missing"),
	}

	f := NewFilter(NewLineCache(), staticResolver(lines, nil), nil)
	got := f.ForActivity(context.Background(), entries, 1, domain.POAOperational)

	require.Len(t, got, 1)
	assert.Equal(t, "d-ok", got[0].ID)
}

func TestFilter_ForActivityCode_DegradesToFullCatalog(t *testing.T) {
	entries := []domain.TaskDetail{
		detail("d-1", "bl-1"), detail("d-2", "bl-2"),
	}

	f := NewFilter(NewLineCache(), staticResolver(nil, nil), nil)
	got := f.ForActivityCode(context.Background(), entries, "custom code", domain.POAOperational)

	assert.Equal(t, entries, got, "malformed activity code must not block task creation")
}

func TestActivityOrdinal(t *testing.T) {
	cases := []struct {
		code string
		want int
		ok   bool
	}{
		{"ACT-3", 3, true},
		{"Activity 12", 12, true},
		{"7", 7, true},
		{"custom", 0, false},
		{"", 0, false},
		{"ACT-0", 0, false},
	}
	for _, tc := range cases {
		got, ok := ActivityOrdinal(tc.code)
		assert.Equal(t, tc.ok, ok, tc.code)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.code)
		}
	}
}

func TestLineCache_MemoizesAcrossFilterCalls(t *testing.T) {
	var calls atomic.Int64
	lines := map[string]domain.BudgetLine{}
	entries := make([]domain.TaskDetail, 0, 6)
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("bl-%d", i)
		lines[id] = domain.BudgetLine{ID: id, Classifier: "1.1; 0; 0"}
		entries = append(entries, detail(fmt.Sprintf("d-%d", i), id))
	}

	cache := NewLineCache()
	cache.SetProject("proj-1")
	f := NewFilter(cache, staticResolver(lines, &calls), nil)

	f.ForActivity(context.Background(), entries, 1, domain.POAOperational)
	first := calls.Load()
	assert.Equal(t, int64(6), first)

	// Re-opening the picker for another activity hits only the cache.
	f.ForActivity(context.Background(), entries, 1, domain.POAOperational)
	assert.Equal(t, first, calls.Load())

	// Selecting another project invalidates everything.
	cache.SetProject("proj-2")
	f.ForActivity(context.Background(), entries, 1, domain.POAOperational)
	assert.Equal(t, first*2, calls.Load())
}

func TestLineCache_SameProjectKeepsEntries(t *testing.T) {
	cache := NewLineCache()
	cache.SetProject("proj-1")
	_, err := cache.Resolve(context.Background(), "bl-1",
		staticResolver(map[string]domain.BudgetLine{"bl-1": {ID: "bl-1"}}, nil))
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	cache.SetProject("proj-1")
	assert.Equal(t, 1, cache.Len())
}
