package catalog

import (
	"context"
	"sync"

	"github.com/cmorante/poaplan/internal/domain"
)

// LineResolver fetches one budget line by id from the remote service.
type LineResolver func(ctx context.Context, id string) (domain.BudgetLine, error)

// LineCache memoizes budget line lookups for the lifetime of the
// currently selected project. Concurrent filter invocations share it
// read-safe; entries are append-only until the project changes.
type LineCache struct {
	mu        sync.Mutex
	projectID string
	lines     map[string]domain.BudgetLine
}

// NewLineCache creates an empty cache bound to no project.
func NewLineCache() *LineCache {
	return &LineCache{lines: make(map[string]domain.BudgetLine)}
}

// SetProject binds the cache to a project, dropping all memoized lines
// when the project differs from the current one.
func (c *LineCache) SetProject(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.projectID == projectID {
		return
	}
	c.projectID = projectID
	c.lines = make(map[string]domain.BudgetLine)
}

// Resolve returns the budget line for id, fetching through resolve on a
// cache miss and memoizing the result.
func (c *LineCache) Resolve(ctx context.Context, id string, resolve LineResolver) (domain.BudgetLine, error) {
	c.mu.Lock()
	if line, ok := c.lines[id]; ok {
		c.mu.Unlock()
		return line, nil
	}
	c.mu.Unlock()

	line, err := resolve(ctx, id)
	if err != nil {
		return domain.BudgetLine{}, err
	}

	c.mu.Lock()
	c.lines[id] = line
	c.mu.Unlock()
	return line, nil
}

// Len returns the number of memoized lines.
func (c *LineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}
