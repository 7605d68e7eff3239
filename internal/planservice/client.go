package planservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Client provides the logical operations of the remote planning service.
// Transport and authentication live behind this boundary; callers see
// typed records and sentinel errors only.
type Client interface {
	FindPeriodByCode(ctx context.Context, code string) (*PeriodRecord, error)
	CreatePeriod(ctx context.Context, draft PeriodDraft) (*PeriodRecord, error)

	CreatePOA(ctx context.Context, draft POADraft) (*POARecord, error)
	ListPOAsByProject(ctx context.Context, projectID string) ([]POARecord, error)

	// CreateActivitiesBatch submits all activities of one POA in a single
	// call. The response is positional: index i answers request index i.
	CreateActivitiesBatch(ctx context.Context, poaID string, drafts []ActivityDraft) ([]ActivityRecord, error)

	CreateTask(ctx context.Context, activityID string, draft TaskDraft) (*TaskRecord, error)

	// CreateMonthlyProgramming returns ErrConflict when a programming for
	// the same (task, month) already exists.
	CreateMonthlyProgramming(ctx context.Context, draft ProgrammingDraft) (*ProgrammingRecord, error)

	GetBudgetLine(ctx context.Context, id string) (*BudgetLineRecord, error)
	ListTaskDetails(ctx context.Context, poaType string) ([]TaskDetailRecord, error)

	ListProjects(ctx context.Context, filter string) ([]ProjectRecord, error)
	ListApprovedProjectTypes(ctx context.Context) ([]ProjectTypeRecord, error)
}

// httpClient implements Client against the planning service's JSON API.
type httpClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a Client for the configured planning service endpoint.
func NewClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

func (c *httpClient) FindPeriodByCode(ctx context.Context, code string) (*PeriodRecord, error) {
	var out PeriodRecord
	path := "/periods/by-code/" + url.PathEscape(code)
	if err := c.get(ctx, "find_period", path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CreatePeriod(ctx context.Context, draft PeriodDraft) (*PeriodRecord, error) {
	var out PeriodRecord
	if err := c.post(ctx, "create_period", "/periods", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CreatePOA(ctx context.Context, draft POADraft) (*POARecord, error) {
	var out POARecord
	if err := c.post(ctx, "create_poa", "/poas", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ListPOAsByProject(ctx context.Context, projectID string) ([]POARecord, error) {
	var out []POARecord
	path := "/projects/" + url.PathEscape(projectID) + "/poas"
	if err := c.get(ctx, "list_poas", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) CreateActivitiesBatch(ctx context.Context, poaID string, drafts []ActivityDraft) ([]ActivityRecord, error) {
	var out []ActivityRecord
	path := "/poas/" + url.PathEscape(poaID) + "/activities"
	if err := c.post(ctx, "create_activities", path, drafts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) CreateTask(ctx context.Context, activityID string, draft TaskDraft) (*TaskRecord, error) {
	var out TaskRecord
	path := "/activities/" + url.PathEscape(activityID) + "/tasks"
	if err := c.post(ctx, "create_task", path, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CreateMonthlyProgramming(ctx context.Context, draft ProgrammingDraft) (*ProgrammingRecord, error) {
	var out ProgrammingRecord
	if err := c.post(ctx, "create_programming", "/programmings", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetBudgetLine(ctx context.Context, id string) (*BudgetLineRecord, error) {
	var out BudgetLineRecord
	if err := c.get(ctx, "get_budget_line", "/budget-lines/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ListTaskDetails(ctx context.Context, poaType string) ([]TaskDetailRecord, error) {
	var out []TaskDetailRecord
	path := "/task-details?poa_type=" + url.QueryEscape(poaType)
	if err := c.get(ctx, "list_task_details", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) ListProjects(ctx context.Context, filter string) ([]ProjectRecord, error) {
	var out []ProjectRecord
	path := "/projects"
	if filter != "" {
		path += "?q=" + url.QueryEscape(filter)
	}
	if err := c.get(ctx, "list_projects", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) ListApprovedProjectTypes(ctx context.Context) ([]ProjectTypeRecord, error) {
	var out []ProjectTypeRecord
	if err := c.get(ctx, "list_project_types", "/project-types/approved", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// get performs a read call with bounded retries on transport errors.
func (c *httpClient) get(ctx context.Context, op, path string, out any) error {
	return c.call(ctx, op, http.MethodGet, path, nil, out, 1+c.cfg.MaxRetries)
}

// post performs a create call. Creates are not idempotent, so they are
// attempted exactly once.
func (c *httpClient) post(ctx context.Context, op, path string, in, out any) error {
	return c.call(ctx, op, http.MethodPost, path, in, out, 1)
}

func (c *httpClient) call(ctx context.Context, op, method, path string, in, out any, attempts int) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = c.doRequest(ctx, op, method, path, in, out)
		if lastErr == nil {
			c.observer.OnCallComplete(CallEvent{
				Op:        op,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return nil
		}
		// 4xx responses are definitive; transport errors and 5xx retry.
		var statusErr *StatusError
		if errors.As(lastErr, &statusErr) && statusErr.Status < 500 {
			break
		}
		if errors.Is(lastErr, ErrNotFound) || errors.Is(lastErr, ErrConflict) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	err := c.classify(op, lastErr, ctx)
	c.observer.OnCallComplete(CallEvent{
		Op:        op,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *httpClient) classify(op string, err error, ctx context.Context) error {
	if ctx.Err() != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	if isConnectionError(err) {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	return err
}

func (c *httpClient) doRequest(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint+path, body)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", op, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Op: op, Status: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func isTimeout(err error) bool     { return errors.Is(err, ErrTimeout) }
func isNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func isConflict(err error) bool    { return errors.Is(err, ErrConflict) }
func isUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
