package start

import (
	"fmt"

	"github.com/spf13/cobra"

	"transcribe-beautifier/cmd/tb/cmd/cmdutil"
)

var bucket string

func init() {
	Cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "bucket holding the media (default from config)")
}

// Cmd represents the start command
var Cmd = &cobra.Command{
	Use:   "start <key>...",
	Short: "Start transcription jobs for media already in the bucket",
	Long: `Start transcription jobs for media already in the bucket

- Runs the same handler as the start webhook for each key
- Keys already submitted are skipped`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdutil.RunHandler(cmd, bucket, args, func(env *cmdutil.Env) cmdutil.Handler {
			return env.Services.StartHandler()
		}, func(key, result string) string {
			return fmt.Sprintf("%s: started job %s", key, result)
		})
	},
}
