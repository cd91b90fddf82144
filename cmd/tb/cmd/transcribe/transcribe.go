package transcribe

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"transcribe-beautifier/cmd/tb/cmd/cmdutil"
	"transcribe-beautifier/internal/app/pipeline"
	"transcribe-beautifier/internal/config"
)

var (
	mediaPath  string
	speakers   int
	outputPath string
	keepRemote bool
	noProgress bool
)

func init() {
	Cmd.Flags().StringVarP(&mediaPath, "file", "f", "", "recording to transcribe; prompted for when omitted")
	Cmd.Flags().IntVarP(&speakers, "speakers", "s", 0, "number of speakers (2-10); prompted for when omitted")
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "", "transcript path (default <file>-transcript.<ext>)")
	Cmd.Flags().BoolVar(&keepRemote, "keep-remote", false, "keep the uploaded media and job result in the bucket")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe a local recording into a readable transcript",
	Long: `Transcribe a local recording into a readable transcript

- Upload the recording to the input prefix of the bucket
- Start a transcription job with speaker labels and wait for it
- Download the result, remove the remote copies and write
  "[HH:MM:SS] speaker: text" turns next to the recording`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdutil.SignalContext(cmd.Context())
		defer cancel()

		env, err := cmdutil.Setup(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Config.RequireBucket(); err != nil {
			return err
		}

		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		path := mediaPath
		if path == "" && len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			if path, err = PromptMediaPath(in, out); err != nil {
				return err
			}
		}
		n := speakers
		if cmd.Flags().Changed("speakers") {
			if err := config.ValidateSpeakers(n); err != nil {
				return err
			}
		} else if n, err = PromptSpeakers(in, out, env.Config.Job.MaxSpeakers); err != nil {
			return err
		}

		observer := pipeline.NewProgressObserver(pipeline.ProgressConfig{
			Enabled: !noProgress && pipeline.IsTTY(os.Stderr),
			Writer:  cmd.ErrOrStderr(),
		})
		result, err := env.Services.Session.Run(ctx, pipeline.SessionRequest{
			MediaPath:  path,
			Speakers:   n,
			OutputPath: outputPath,
			KeepRemote: keepRemote,
		}, observer)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Transcript written to %s (%d turns, job %s, %s)\n",
			result.OutputPath, result.Turns, result.JobName, result.Elapsed.Round(time.Second))
		return nil
	},
}
