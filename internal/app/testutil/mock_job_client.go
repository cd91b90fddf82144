package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"transcribe-beautifier/internal/app/api/transcribe"
)

// MockJobClient is a testify mock of transcribe.JobClient. OnComplete wires
// a job result object into a store when the job is reported complete.
type MockJobClient struct {
	mock.Mock
	mu       sync.Mutex
	Started  []transcribe.JobRequest
	OnStatus func(name string, status transcribe.JobStatus)
}

func NewMockJobClient() *MockJobClient {
	return &MockJobClient{}
}

func (m *MockJobClient) Start(ctx context.Context, req transcribe.JobRequest) error {
	m.mu.Lock()
	m.Started = append(m.Started, req)
	m.mu.Unlock()

	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockJobClient) Status(ctx context.Context, name string) (transcribe.JobStatus, error) {
	args := m.Called(ctx, name)
	status := args.Get(0).(transcribe.JobStatus)
	if m.OnStatus != nil && args.Error(1) == nil {
		m.OnStatus(name, status)
	}
	return status, args.Error(1)
}

// LastStarted returns the most recent job request.
func (m *MockJobClient) LastStarted() (transcribe.JobRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Started) == 0 {
		return transcribe.JobRequest{}, false
	}
	return m.Started[len(m.Started)-1], true
}
