package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doctorvirtual/api/services/assistant"
	"go.uber.org/zap"
)

// ErrNoReply is returned when a completed run left no assistant message in
// the thread.
var ErrNoReply = errors.New("run completed but the thread has no assistant reply")

// RunFailedError reports a run that reached a terminal non-success state.
type RunFailedError struct {
	RunID  string
	Status assistant.RunStatus
	Detail string
}

func (e *RunFailedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("run %s ended as %s: %s", e.RunID, e.Status, e.Detail)
	}
	return fmt.Sprintf("run %s ended as %s", e.RunID, e.Status)
}

// PollPolicy bounds the run polling loop. The original service polled
// every second forever; the deadline and context threading exist so a
// stuck remote job cannot pin a handler indefinitely.
type PollPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Deadline        time.Duration
}

// DefaultPollPolicy keeps the original 1s cadence but backs off gently and
// gives up after two minutes.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		InitialInterval: 1 * time.Second,
		MaxInterval:     5 * time.Second,
		Multiplier:      1.5,
		Deadline:        2 * time.Minute,
	}
}

// RunPoller submits assistant runs and waits them out.
type RunPoller struct {
	client *assistant.Client
	policy PollPolicy
	log    *zap.Logger
}

// NewRunPoller creates a new run poller
func NewRunPoller(client *assistant.Client, policy PollPolicy, log *zap.Logger) *RunPoller {
	return &RunPoller{
		client: client,
		policy: policy,
		log:    log,
	}
}

// Execute starts a run on the thread and polls until a terminal state,
// returning the newest assistant message text on completion. Terminal
// failure states come back as *RunFailedError for the orchestrator to
// absorb.
func (p *RunPoller) Execute(ctx context.Context, threadID, assistantID, instructions string) (string, error) {
	run, err := p.client.CreateRun(ctx, threadID, assistant.RunRequest{
		AssistantID:  assistantID,
		Instructions: instructions,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}

	run, err = p.await(ctx, threadID, run)
	if err != nil {
		return "", err
	}

	if run.Status != assistant.RunStatusCompleted {
		failure := &RunFailedError{RunID: run.ID, Status: run.Status}
		if run.LastError != nil {
			failure.Detail = run.LastError.Message
		}
		return "", failure
	}

	return p.latestReply(ctx, threadID)
}

func (p *RunPoller) await(ctx context.Context, threadID string, run *assistant.Run) (*assistant.Run, error) {
	deadline := time.Now().Add(p.policy.Deadline)
	interval := p.policy.InitialInterval
	attempts := 0

	for !run.Status.Terminal() {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("run %s still %s after %s", run.ID, run.Status, p.policy.Deadline)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		var err error
		run, err = p.client.GetRun(ctx, threadID, run.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to poll run: %w", err)
		}

		attempts++
		interval = time.Duration(float64(interval) * p.policy.Multiplier)
		if interval > p.policy.MaxInterval {
			interval = p.policy.MaxInterval
		}
	}

	p.log.Debug("run reached terminal state",
		zap.String("run_id", run.ID),
		zap.String("status", string(run.Status)),
		zap.Int("polls", attempts),
	)
	return run, nil
}

func (p *RunPoller) latestReply(ctx context.Context, threadID string) (string, error) {
	messages, err := p.client.ListMessages(ctx, threadID, 1)
	if err != nil {
		return "", fmt.Errorf("failed to fetch reply: %w", err)
	}
	if len(messages) == 0 || messages[0].Role != "assistant" {
		return "", ErrNoReply
	}
	return messages[0].Text(), nil
}
