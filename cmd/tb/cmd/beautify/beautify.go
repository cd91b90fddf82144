package beautify

import (
	"fmt"

	"github.com/spf13/cobra"

	"transcribe-beautifier/cmd/tb/cmd/cmdutil"
)

var bucket string

func init() {
	Cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "bucket holding the results (default from config)")
}

// Cmd represents the beautify command
var Cmd = &cobra.Command{
	Use:   "beautify <key>...",
	Short: "Turn transcription results in the bucket into readable transcripts",
	Long: `Turn transcription results in the bucket into readable transcripts

- Runs the same handler as the beautify webhook for each .json key
- Transcripts are stored under the output prefix`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdutil.RunHandler(cmd, bucket, args, func(env *cmdutil.Env) cmdutil.Handler {
			return env.Services.BeautifyHandler()
		}, func(key, result string) string {
			return fmt.Sprintf("%s: stored %s", key, result)
		})
	},
}
