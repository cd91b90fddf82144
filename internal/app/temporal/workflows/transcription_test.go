package workflows

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/api/transcribe"
	"transcribe-beautifier/internal/app/metrics"
	"transcribe-beautifier/internal/app/pipeline"
	"transcribe-beautifier/internal/app/repository"
	"transcribe-beautifier/internal/app/storage"
	"transcribe-beautifier/internal/app/temporal/activities"
	"transcribe-beautifier/internal/app/testutil"
	"transcribe-beautifier/internal/app/transcript/export"
)

type workflowFixture struct {
	store *storage.MemoryStore
	jobs  *testutil.MockJobClient
	acts  *activities.TranscriptionActivities
}

func newWorkflowFixture(t *testing.T, final transcribe.State) *workflowFixture {
	t.Helper()
	store := storage.NewMemoryStore()
	jobs := testutil.NewMockJobClient()
	jobs.On("Start", mock.Anything, mock.Anything).Return(nil)
	jobs.On("Status", mock.Anything, mock.Anything).
		Return(transcribe.JobStatus{State: transcribe.StateInProgress}, nil).Once()
	jobs.On("Status", mock.Anything, mock.Anything).
		Return(transcribe.JobStatus{State: final, FailureReason: "bad media"}, nil)
	jobs.OnStatus = func(_ string, status transcribe.JobStatus) {
		if status.State != transcribe.StateCompleted {
			return
		}
		req, _ := jobs.LastStarted()
		data := testutil.ResultJSON(t, req.Name, testutil.MeetingItems()...)
		require.NoError(t, store.Put(context.Background(), req.OutputBucket, req.OutputKey,
			bytes.NewReader(data), int64(len(data)), "application/json"))
	}

	settings := pipeline.Settings{
		InputPrefix:  "input",
		OutputPrefix: "output",
		Language:     "en-US",
		MaxSpeakers:  10,
		Format:       export.FormatText,
	}
	ledger := repository.NewMemoryLedger()
	m := metrics.NewUnregistered()
	poller := transcribe.NewPoller(jobs, transcribe.PollPolicy{
		Interval:    time.Millisecond,
		MaxInterval: time.Millisecond,
		Multiplier:  1,
		Timeout:     5 * time.Second,
		NoticeEvery: 1,
	}, zap.NewNop())

	acts := activities.NewTranscriptionActivities(
		pipeline.NewStarter(store, jobs, ledger, m, settings, zap.NewNop()),
		pipeline.NewBeautifier(store, ledger, m, settings, zap.NewNop()),
		poller,
		settings,
	)
	return &workflowFixture{store: store, jobs: jobs, acts: acts}
}

func TestTranscriptionWorkflow(t *testing.T) {
	f := newWorkflowFixture(t, transcribe.StateCompleted)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterActivity(f.acts)

	env.ExecuteWorkflow(TranscriptionWorkflow, TranscriptionRequest{Bucket: "media", Key: "input/standup.mp3"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result TranscriptionResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.NotEmpty(t, result.JobName)
	assert.Equal(t, "output/standup.mp3.json", result.ResultKey)
	assert.Equal(t, "output/standup.mp3.txt", result.TranscriptKey)

	data, ok := f.store.Object("media", result.TranscriptKey)
	require.True(t, ok)
	assert.Equal(t, testutil.MeetingTranscript, string(data))
}

func TestTranscriptionWorkflowJobFailed(t *testing.T) {
	f := newWorkflowFixture(t, transcribe.StateFailed)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterActivity(f.acts)

	env.ExecuteWorkflow(TranscriptionWorkflow, TranscriptionRequest{Bucket: "media", Key: "input/standup.mp3"})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, activities.ErrTypeJobFailed, appErr.Type())
	assert.True(t, appErr.NonRetryable())
	assert.Contains(t, appErr.Error(), "bad media")

	f.jobs.AssertNumberOfCalls(t, "Start", 1)
}

func TestTranscriptionWorkflowSkipsUnsupportedMedia(t *testing.T) {
	f := newWorkflowFixture(t, transcribe.StateCompleted)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterActivity(f.acts)

	env.ExecuteWorkflow(TranscriptionWorkflow, TranscriptionRequest{Bucket: "media", Key: "input/readme.md"})

	require.True(t, env.IsWorkflowCompleted())
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(env.GetWorkflowError(), &appErr))
	assert.Equal(t, activities.ErrTypeSkipped, appErr.Type())
	f.jobs.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}
