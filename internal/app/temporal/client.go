package temporal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"transcribe-beautifier/internal/app/temporal/workflows"
	"transcribe-beautifier/internal/config"
)

// NewClient dials the Temporal frontend.
func NewClient(cfg config.TemporalConfig) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Temporal client: %w", err)
	}
	return c, nil
}

// WorkflowID is the ID used for a media object. Resubmitting the same object
// while a run is open is rejected by the server.
func WorkflowID(bucket, key string) string {
	return "transcribe-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("s3://"+bucket+"/"+key)).String()
}

// Submit starts the transcription workflow for a media object.
func Submit(ctx context.Context, c client.Client, taskQueue string, req workflows.TranscriptionRequest) (client.WorkflowRun, error) {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        WorkflowID(req.Bucket, req.Key),
		TaskQueue: taskQueue,
	}, workflows.TranscriptionWorkflow, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start workflow for s3://%s/%s: %w", req.Bucket, req.Key, err)
	}
	return run, nil
}
