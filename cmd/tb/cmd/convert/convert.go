package convert

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/pipeline"
	"transcribe-beautifier/internal/app/transcript/export"
)

var (
	inputPath  string
	outputPath string
	format     string
)

func init() {
	Cmd.Flags().StringVarP(&inputPath, "input", "i", "", "transcription result JSON")
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "", `output path, "-" for stdout (default <input>.<ext>)`)
	Cmd.Flags().StringVarP(&format, "format", "F", "txt", "output format: txt or xlsx")

	Cmd.MarkFlagRequired("input")
}

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a downloaded transcription result into a readable transcript",
	Long: `Convert a downloaded transcription result into a readable transcript

- Works offline on a result JSON file
- Writes one "[HH:MM:SS] speaker: text" paragraph per speaker turn, or a spreadsheet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}

		in, err := os.Open(inputPath)
		if err != nil {
			return errors.Wrapf(err, "open %s", inputPath)
		}
		defer in.Close()

		target := OutputPath(inputPath, outputPath, f)
		var out io.Writer = cmd.OutOrStdout()
		var file *os.File
		if target != "-" {
			if file, err = os.Create(target); err != nil {
				return errors.Wrapf(err, "create %s", target)
			}
			out = file
		}

		n, err := pipeline.Convert(in, out, f)
		if file != nil {
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				os.Remove(target)
			}
		}
		if err != nil {
			return err
		}

		if target != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "converted %d turns, output file path: %v\n", n, target)
		}
		return nil
	},
}

// OutputPath picks the transcript path for a result file.
func OutputPath(input, output string, f export.Format) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, ".json") + f.Extension()
}
