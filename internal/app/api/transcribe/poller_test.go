package transcribe

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/errors"
)

// scriptedClient returns the scripted states in order, repeating the last one.
type scriptedClient struct {
	mu     sync.Mutex
	states []JobStatus
	calls  int
	err    error
}

func (c *scriptedClient) Start(context.Context, JobRequest) error { return nil }

func (c *scriptedClient) Status(_ context.Context, name string) (JobStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return JobStatus{}, c.err
	}
	idx := c.calls - 1
	if idx >= len(c.states) {
		idx = len(c.states) - 1
	}
	status := c.states[idx]
	status.Name = name
	return status, nil
}

var fastPolicy = PollPolicy{
	Interval:    time.Millisecond,
	MaxInterval: 4 * time.Millisecond,
	Multiplier:  2,
	Timeout:     time.Second,
	NoticeEvery: 2,
}

func TestPollerWaitCompleted(t *testing.T) {
	client := &scriptedClient{states: []JobStatus{
		{State: StateQueued},
		{State: StateInProgress},
		{State: StateInProgress},
		{State: StateCompleted},
	}}
	poller := NewPoller(client, fastPolicy, zap.NewNop())

	var seen []State
	status, err := poller.Wait(context.Background(), "job-1", func(attempt int, s JobStatus) {
		seen = append(seen, s.State)
	})

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, status.State)
	assert.Equal(t, []State{StateQueued, StateInProgress, StateInProgress, StateCompleted}, seen)
	assert.Equal(t, 4, client.calls)
}

func TestPollerWaitFailed(t *testing.T) {
	client := &scriptedClient{states: []JobStatus{
		{State: StateInProgress},
		{State: StateFailed, FailureReason: "bad audio"},
	}}
	poller := NewPoller(client, fastPolicy, zap.NewNop())

	status, err := poller.Wait(context.Background(), "job-1", nil)

	assert.True(t, errors.Is(err, errors.ErrJobFailed))
	assert.Contains(t, err.Error(), "bad audio")
	assert.Equal(t, StateFailed, status.State)
}

func TestPollerWaitTimeout(t *testing.T) {
	client := &scriptedClient{states: []JobStatus{{State: StateInProgress}}}
	policy := fastPolicy
	policy.Timeout = 20 * time.Millisecond
	poller := NewPoller(client, policy, zap.NewNop())

	_, err := poller.Wait(context.Background(), "job-1", nil)

	assert.True(t, errors.Is(err, errors.ErrPollTimeout))
	assert.Greater(t, client.calls, 1)
}

func TestPollerWaitCancelled(t *testing.T) {
	client := &scriptedClient{states: []JobStatus{{State: StateInProgress}}}
	policy := fastPolicy
	policy.Interval = time.Hour
	poller := NewPoller(client, policy, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := poller.Wait(ctx, "job-1", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, client.calls)
}

func TestPollerWaitStatusError(t *testing.T) {
	client := &scriptedClient{err: errors.New("access denied")}
	poller := NewPoller(client, fastPolicy, zap.NewNop())

	_, err := poller.Wait(context.Background(), "job-1", nil)
	assert.ErrorContains(t, err, "access denied")
	assert.Equal(t, 1, client.calls)
}

func TestPollPolicyNext(t *testing.T) {
	assert.Equal(t, 2*time.Millisecond, fastPolicy.Next(time.Millisecond))
	assert.Equal(t, 4*time.Millisecond, fastPolicy.Next(3*time.Millisecond))

	flat := PollPolicy{Interval: 10 * time.Second, Multiplier: 1}
	assert.Equal(t, 10*time.Second, flat.Next(10*time.Second))
}

func TestPollPolicyNotice(t *testing.T) {
	assert.False(t, fastPolicy.Notice(1))
	assert.True(t, fastPolicy.Notice(2))
	assert.False(t, PollPolicy{}.Notice(6))
}
