package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"transcribe-beautifier/internal/app/api/transcribe"
	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/pipeline"
)

// Activity names as registered on the worker.
const (
	StartJobName       = "StartJob"
	WaitForJobName     = "WaitForJob"
	BeautifyResultName = "BeautifyResult"
)

// Error types that stop retries.
const (
	ErrTypeSkipped         = "Skipped"
	ErrTypeJobFailed       = "JobFailed"
	ErrTypeMalformedResult = "MalformedResult"
	ErrTypePollTimeout     = "PollTimeout"
)

// ObjectInput names an object in the bucket.
type ObjectInput struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// StartJobResult is returned by StartJob.
type StartJobResult struct {
	JobName   string `json:"job_name"`
	ResultKey string `json:"result_key"`
}

// TranscriptionActivities drives the pipeline from a workflow.
type TranscriptionActivities struct {
	starter    *pipeline.Starter
	beautifier *pipeline.Beautifier
	poller     *transcribe.Poller
	settings   pipeline.Settings
}

// NewTranscriptionActivities creates a new instance of transcription activities
func NewTranscriptionActivities(starter *pipeline.Starter, beautifier *pipeline.Beautifier,
	poller *transcribe.Poller, settings pipeline.Settings) *TranscriptionActivities {
	return &TranscriptionActivities{
		starter:    starter,
		beautifier: beautifier,
		poller:     poller,
		settings:   settings,
	}
}

// StartJob submits the transcription job for a media object.
func (a *TranscriptionActivities) StartJob(ctx context.Context, in ObjectInput) (StartJobResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Starting transcription job", "bucket", in.Bucket, "key", in.Key)

	name, err := a.starter.Start(ctx, in.Bucket, in.Key)
	if err != nil {
		return StartJobResult{}, nonRetryable(err)
	}
	return StartJobResult{JobName: name, ResultKey: a.settings.ResultKey(in.Key)}, nil
}

// WaitForJob polls the job until it finishes, heartbeating on every read.
func (a *TranscriptionActivities) WaitForJob(ctx context.Context, jobName string) (transcribe.JobStatus, error) {
	logger := activity.GetLogger(ctx)

	status, err := a.poller.Wait(ctx, jobName, func(attempt int, status transcribe.JobStatus) {
		activity.RecordHeartbeat(ctx, attempt)
		if a.poller.Policy().Notice(attempt) {
			logger.Info("Transcription job still running", "job", jobName, "state", string(status.State), "attempt", attempt)
		}
	})
	if err != nil {
		return status, nonRetryable(err)
	}
	return status, nil
}

// BeautifyResult renders the job result into a transcript object.
func (a *TranscriptionActivities) BeautifyResult(ctx context.Context, in ObjectInput) (string, error) {
	activity.GetLogger(ctx).Info("Beautifying transcription result", "bucket", in.Bucket, "key", in.Key)

	outKey, err := a.beautifier.Beautify(ctx, in.Bucket, in.Key)
	if err != nil {
		return "", nonRetryable(err)
	}
	return outKey, nil
}

// nonRetryable marks outcomes a retry cannot change. Anything else is
// returned as is so the activity retry policy applies.
func nonRetryable(err error) error {
	switch {
	case errors.Is(err, errors.ErrAlreadyProcessed), errors.Is(err, errors.ErrUnsupportedKey):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeSkipped, err)
	case errors.Is(err, errors.ErrJobFailed):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeJobFailed, err)
	case errors.Is(err, errors.ErrMalformedToken):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeMalformedResult, err)
	case errors.Is(err, errors.ErrPollTimeout):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypePollTimeout, err)
	}
	return err
}
