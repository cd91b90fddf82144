package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"transcribe-beautifier/cmd/tb/cmd/beautify"
	"transcribe-beautifier/cmd/tb/cmd/cmdutil"
	"transcribe-beautifier/cmd/tb/cmd/convert"
	"transcribe-beautifier/cmd/tb/cmd/history"
	"transcribe-beautifier/cmd/tb/cmd/serve"
	"transcribe-beautifier/cmd/tb/cmd/start"
	"transcribe-beautifier/cmd/tb/cmd/submit"
	"transcribe-beautifier/cmd/tb/cmd/transcribe"
	"transcribe-beautifier/cmd/tb/cmd/version"
	"transcribe-beautifier/cmd/tb/cmd/watch"
	"transcribe-beautifier/cmd/tb/cmd/worker"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tb",
	Short: "Transcribe recordings with speaker labels and turn the results into readable transcripts",
	Long: `Transcribe recordings with speaker labels and turn the results into readable transcripts.

- Upload a local recording, wait for the transcription job and download a transcript
- Run the start and beautify handlers on storage notifications (webhook or bucket watch)
- Drive the same flow as a Temporal workflow
- Every processed object is recorded in a SQL ledger`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(convert.Cmd)
	rootCmd.AddCommand(start.Cmd)
	rootCmd.AddCommand(beautify.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(watch.Cmd)
	rootCmd.AddCommand(worker.Cmd)
	rootCmd.AddCommand(submit.Cmd)
	rootCmd.AddCommand(history.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&cmdutil.Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&cmdutil.ConfigPath, "config", "c", "", "config file (YAML); TB_* environment variables override it")
}
