package assistant

import (
	"context"
	"fmt"
)

// RunStatus is the lifecycle state of an assistant run
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
	RunStatusRequiresAction RunStatus = "requires_action"
)

// InFlight reports whether the run is still being worked on.
func (s RunStatus) InFlight() bool {
	return s == RunStatusQueued || s == RunStatusInProgress
}

// Terminal reports whether the run has reached a final state.
func (s RunStatus) Terminal() bool {
	return !s.InFlight()
}

// RunError carries the failure detail of a terminal run
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Run is one asynchronous assistant invocation against a thread
type Run struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id"`
	AssistantID string    `json:"assistant_id"`
	Status      RunStatus `json:"status"`
	LastError   *RunError `json:"last_error,omitempty"`
	CreatedAt   int64     `json:"created_at"`
}

// RunRequest represents a request to start a run
type RunRequest struct {
	AssistantID  string `json:"assistant_id"`
	Instructions string `json:"instructions,omitempty"`
}

// CreateRun starts a run of the assistant over the thread
func (c *Client) CreateRun(ctx context.Context, threadID string, req RunRequest) (*Run, error) {
	endpoint := fmt.Sprintf("/v1/threads/%s/runs", threadID)

	var result Run
	if err := c.doRequest(ctx, "POST", endpoint, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRun retrieves the current state of a run
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	endpoint := fmt.Sprintf("/v1/threads/%s/runs/%s", threadID, runID)

	var result Run
	if err := c.doRequest(ctx, "GET", endpoint, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
