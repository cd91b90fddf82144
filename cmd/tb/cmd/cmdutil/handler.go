package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"

	"transcribe-beautifier/internal/app/events"
	"transcribe-beautifier/internal/app/storage"
)

// Handler is an object handler picked from the services.
type Handler = events.Handler

// RunHandler dispatches keys in bucket to the chosen handler and prints one
// line per key.
func RunHandler(cmd *cobra.Command, bucketFlag string, keys []string,
	pick func(*Env) Handler, describe func(key, result string) string) error {
	ctx, cancel := SignalContext(cmd.Context())
	defer cancel()

	env, err := Setup(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	bucket, err := Bucket(env.Config, bucketFlag)
	if err != nil {
		return err
	}

	refs := make([]storage.ObjectRef, 0, len(keys))
	for _, key := range keys {
		refs = append(refs, storage.ObjectRef{Bucket: bucket, Key: key})
	}

	outcomes, err := events.Dispatch(ctx, refs, pick(env), env.Config.Server.Concurrency)
	out := cmd.OutOrStdout()
	for _, o := range outcomes {
		switch {
		case o.Error != "":
			fmt.Fprintf(out, "%s: failed: %s\n", o.Key, o.Error)
		case o.Skipped:
			fmt.Fprintf(out, "%s: skipped: %s\n", o.Key, o.Reason)
		default:
			fmt.Fprintln(out, describe(o.Key, o.Result))
		}
	}
	return err
}
