package watch

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"transcribe-beautifier/cmd/tb/cmd/cmdutil"
	apperrors "transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/events"
)

var (
	bucket  string
	handler string
)

func init() {
	Cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "bucket to watch (default from config)")
	Cmd.Flags().StringVarP(&handler, "handler", "H", "both", "handlers to run: start, beautify or both")
}

// Cmd represents the watch command
var Cmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the handlers on bucket notifications from a MinIO server",
	Long: `Run the handlers on bucket notifications from a MinIO server

- start watches the input prefix and submits jobs for new media
- beautify watches the output prefix for .json results
- AWS S3 buckets deliver notifications to the serve webhook instead`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if handler != "start" && handler != "beautify" && handler != "both" {
			return apperrors.InvalidField("handler", "must be start, beautify or both")
		}

		ctx, cancel := cmdutil.SignalContext(cmd.Context())
		defer cancel()

		env, err := cmdutil.Setup(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		b, err := cmdutil.Bucket(env.Config, bucket)
		if err != nil {
			return err
		}
		if err := env.Services.Store.EnsureBucket(ctx, b); err != nil {
			return err
		}

		type watcher struct {
			opts    events.WatchOptions
			handler events.Handler
		}
		var watchers []watcher
		if handler != "beautify" {
			watchers = append(watchers, watcher{
				opts:    events.WatchOptions{Bucket: b, Prefix: env.Config.Storage.InputPrefix + "/"},
				handler: env.Services.StartHandler(),
			})
		}
		if handler != "start" {
			watchers = append(watchers, watcher{
				opts:    events.WatchOptions{Bucket: b, Prefix: env.Config.Storage.OutputPrefix + "/", Suffix: ".json"},
				handler: env.Services.BeautifyHandler(),
			})
		}

		errCh := make(chan error, len(watchers))
		for _, w := range watchers {
			w := w
			go func() {
				errCh <- events.Watch(ctx, env.Services.Store, w.opts, w.handler, env.Logger)
			}()
		}

		var firstErr error
		for range watchers {
			if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) && firstErr == nil {
				firstErr = err
			}
			cancel()
		}
		return firstErr
	},
}
