package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"transcribe-beautifier/internal/app/api/transcribe"
	"transcribe-beautifier/internal/app/temporal/activities"
)

const (
	defaultWaitTimeout      = 3 * time.Hour
	defaultHeartbeatTimeout = 3 * time.Minute
)

// TranscriptionRequest asks for a media object to be transcribed and beautified.
type TranscriptionRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	// WaitTimeout bounds the WaitForJob activity.
	WaitTimeout time.Duration `json:"wait_timeout,omitempty"`
	// HeartbeatTimeout must exceed the longest poll delay.
	HeartbeatTimeout time.Duration `json:"heartbeat_timeout,omitempty"`
}

// TranscriptionResult describes a finished workflow.
type TranscriptionResult struct {
	JobName        string        `json:"job_name"`
	ResultKey      string        `json:"result_key"`
	TranscriptKey  string        `json:"transcript_key"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// TranscriptionWorkflow starts a job for a media object, waits for it and
// stores the readable transcript next to the result.
func TranscriptionWorkflow(ctx workflow.Context, req TranscriptionRequest) (TranscriptionResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting transcription workflow", "bucket", req.Bucket, "key", req.Key)
	startTime := workflow.Now(ctx)

	retry := &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    100 * time.Second,
		MaximumAttempts:    3,
	}
	shortCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy:         retry,
	})

	var started activities.StartJobResult
	if err := workflow.ExecuteActivity(shortCtx, activities.StartJobName, activities.ObjectInput{
		Bucket: req.Bucket,
		Key:    req.Key,
	}).Get(ctx, &started); err != nil {
		logger.Error("Failed to start transcription job", "error", err)
		return TranscriptionResult{}, err
	}

	waitTimeout := req.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = defaultWaitTimeout
	}
	heartbeat := req.HeartbeatTimeout
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatTimeout
	}
	waitCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: waitTimeout,
		HeartbeatTimeout:    heartbeat,
		RetryPolicy:         retry,
	})

	var status transcribe.JobStatus
	if err := workflow.ExecuteActivity(waitCtx, activities.WaitForJobName, started.JobName).Get(ctx, &status); err != nil {
		logger.Error("Transcription job did not complete", "job", started.JobName, "error", err)
		return TranscriptionResult{JobName: started.JobName, ResultKey: started.ResultKey}, err
	}

	var transcriptKey string
	if err := workflow.ExecuteActivity(shortCtx, activities.BeautifyResultName, activities.ObjectInput{
		Bucket: req.Bucket,
		Key:    started.ResultKey,
	}).Get(ctx, &transcriptKey); err != nil {
		logger.Error("Failed to beautify result", "key", started.ResultKey, "error", err)
		return TranscriptionResult{JobName: started.JobName, ResultKey: started.ResultKey}, err
	}

	result := TranscriptionResult{
		JobName:        started.JobName,
		ResultKey:      started.ResultKey,
		TranscriptKey:  transcriptKey,
		ProcessingTime: workflow.Now(ctx).Sub(startTime),
	}
	logger.Info("Transcription workflow completed",
		"job", result.JobName,
		"transcript", result.TranscriptKey,
		"duration", result.ProcessingTime)
	return result, nil
}
