package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cmorante/poaplan/internal/catalog"
	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/planservice"
)

type refDataService struct {
	remote   planservice.Client
	cache    *catalog.LineCache
	filter   *catalog.Filter
	observer UseCaseObserver
}

// NewRefDataService creates the reference-data service. The line cache is
// shared with the rest of the session so budget lines resolved here stay
// warm for later catalog filtering.
func NewRefDataService(remote planservice.Client, cache *catalog.LineCache, filter *catalog.Filter, observers ...UseCaseObserver) RefDataService {
	return &refDataService{
		remote:   remote,
		cache:    cache,
		filter:   filter,
		observer: useCaseObserverOrNoop(observers),
	}
}

// LoadInitial fetches projects and approved project types concurrently.
// Both fetches always run to completion; if either fails the whole load
// fails, since a session without reference data cannot plan anything.
func (s *refDataService) LoadInitial(ctx context.Context) (data *InitialData, err error) {
	start := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "refdata_load",
			Duration:  time.Since(start),
			Success:   err == nil,
			Err:       err,
			StartedAt: start,
		})
	}()

	var (
		wg       sync.WaitGroup
		projects []planservice.ProjectRecord
		types    []planservice.ProjectTypeRecord
		projErr  error
		typesErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		projects, projErr = s.remote.ListProjects(ctx, "")
	}()
	go func() {
		defer wg.Done()
		types, typesErr = s.remote.ListApprovedProjectTypes(ctx)
	}()
	wg.Wait()

	if projErr != nil {
		return nil, fmt.Errorf("loading projects: %w", projErr)
	}
	if typesErr != nil {
		return nil, fmt.Errorf("loading project types: %w", typesErr)
	}
	return &InitialData{Projects: projects, ProjectTypes: types}, nil
}

func (s *refDataService) ProjectByCode(ctx context.Context, code string) (*domain.Project, error) {
	records, err := s.remote.ListProjects(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	for _, rec := range records {
		if rec.Code != code {
			continue
		}
		project, err := rec.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", code, err)
		}
		s.cache.SetProject(project.ID)
		return project, nil
	}
	return nil, fmt.Errorf("project %q: %w", code, planservice.ErrNotFound)
}

func (s *refDataService) TaskDetailsForActivity(ctx context.Context, poaType domain.POAType, ordinal int) ([]domain.TaskDetail, error) {
	records, err := s.remote.ListTaskDetails(ctx, string(poaType))
	if err != nil {
		return nil, fmt.Errorf("loading task details: %w", err)
	}
	entries := make([]domain.TaskDetail, len(records))
	for i, rec := range records {
		entries[i] = rec.ToDomain()
	}
	return s.filter.ForActivity(ctx, entries, ordinal, poaType), nil
}
