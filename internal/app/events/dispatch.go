package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/storage"
)

// Handler processes one object and returns what it produced: a job name or
// an output key.
type Handler func(ctx context.Context, ref storage.ObjectRef) (string, error)

// Outcome reports how one object was handled.
type Outcome struct {
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Result  string `json:"result,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// IsSkip reports whether err means the object was deliberately left alone.
func IsSkip(err error) bool {
	return errors.Is(err, errors.ErrUnsupportedKey) || errors.Is(err, errors.ErrAlreadyProcessed)
}

// Dispatch runs handler for each distinct ref with at most concurrency
// handlers in flight. A failing object does not stop the others; all
// failures are returned together. Outcomes keep the order of the distinct refs.
func Dispatch(ctx context.Context, refs []storage.ObjectRef, handler Handler, concurrency int) ([]Outcome, error) {
	refs = lo.Uniq(refs)
	outcomes := make([]Outcome, len(refs))

	var (
		mu     sync.Mutex
		result *multierror.Error
	)

	var eg errgroup.Group
	if concurrency > 0 {
		eg.SetLimit(concurrency)
	}
	for i, ref := range refs {
		i, ref := i, ref
		eg.Go(func() error {
			out := Outcome{Bucket: ref.Bucket, Key: ref.Key}
			if err := ctx.Err(); err != nil {
				out.Error = err.Error()
				outcomes[i] = out
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("%s: %w", ref, err))
				mu.Unlock()
				return nil
			}

			res, err := handler(ctx, ref)
			switch {
			case err == nil:
				out.Result = res
			case IsSkip(err):
				out.Skipped = true
				out.Reason = err.Error()
			default:
				out.Error = err.Error()
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("%s: %w", ref, err))
				mu.Unlock()
			}
			outcomes[i] = out
			return nil
		})
	}
	_ = eg.Wait()

	return outcomes, result.ErrorOrNil()
}

// Failed returns the outcomes that ended in an error.
func Failed(outcomes []Outcome) []Outcome {
	return lo.Filter(outcomes, func(o Outcome, _ int) bool { return o.Error != "" })
}
