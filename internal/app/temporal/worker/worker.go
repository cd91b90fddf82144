package worker

import (
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"transcribe-beautifier/internal/app/temporal/activities"
	"transcribe-beautifier/internal/app/temporal/workflows"
)

// Options tune the worker.
type Options struct {
	Identity    string
	Concurrency int
}

// New creates a worker with the transcription workflow and its activities
// registered.
func New(c client.Client, taskQueue string, acts *activities.TranscriptionActivities, opts Options) worker.Worker {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	w := worker.New(c, taskQueue, worker.Options{
		Identity:                               opts.Identity,
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})
	Register(w, acts)
	return w
}

// Register adds the workflow and activities to a registry.
func Register(r worker.Registry, acts *activities.TranscriptionActivities) {
	r.RegisterWorkflow(workflows.TranscriptionWorkflow)
	r.RegisterActivity(acts)
}
