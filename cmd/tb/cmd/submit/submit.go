package submit

import (
	"fmt"

	"github.com/spf13/cobra"

	"transcribe-beautifier/cmd/tb/cmd/cmdutil"
	"transcribe-beautifier/internal/app/temporal"
	"transcribe-beautifier/internal/app/temporal/workflows"
)

var (
	bucket string
	wait   bool
)

func init() {
	Cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "bucket holding the media (default from config)")
	Cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the workflow to finish")
}

// Cmd represents the submit command
var Cmd = &cobra.Command{
	Use:   "submit <key>",
	Short: "Submit a media object to the transcription workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdutil.SignalContext(cmd.Context())
		defer cancel()

		cfg, err := cmdutil.LoadConfig()
		if err != nil {
			return err
		}
		b, err := cmdutil.Bucket(cfg, bucket)
		if err != nil {
			return err
		}

		c, err := temporal.NewClient(cfg.Temporal)
		if err != nil {
			return err
		}
		defer c.Close()

		run, err := temporal.Submit(ctx, c, cfg.Temporal.TaskQueue, workflows.TranscriptionRequest{
			Bucket:           b,
			Key:              args[0],
			WaitTimeout:      cfg.Poll.Timeout + cfg.Poll.MaxInterval,
			HeartbeatTimeout: 3 * cfg.Poll.MaxInterval,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "workflow %s started (run %s)\n", run.GetID(), run.GetRunID())
		if !wait {
			return nil
		}

		var result workflows.TranscriptionResult
		if err := run.Get(ctx, &result); err != nil {
			return err
		}
		fmt.Fprintf(out, "job %s finished: transcript stored at %s (%s)\n",
			result.JobName, result.TranscriptKey, result.ProcessingTime)
		return nil
	},
}
