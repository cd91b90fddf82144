package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/transcript"
)

// Format selects how turns are written out.
type Format string

const (
	FormatText  Format = "txt"
	FormatExcel Format = "xlsx"
)

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "", "txt", "text":
		return FormatText, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	default:
		return "", errors.InvalidField("format", fmt.Sprintf("unknown output format %q", s))
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType is used when the rendered transcript is stored as an object.
func (f Format) ContentType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/plain; charset=utf-8"
}

// Write renders turns to w in the given format.
func Write(format Format, w io.Writer, turns []transcript.Turn) error {
	switch format {
	case FormatText:
		return transcript.Render(w, turns)
	case FormatExcel:
		return ToExcel(w, turns)
	default:
		return errors.InvalidField("format", string(format))
	}
}

// ToExcel writes one spreadsheet row per turn.
func ToExcel(w io.Writer, turns []transcript.Turn) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcript")
	if err != nil {
		return errors.Wrap(err, "add sheet")
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "Time"
	headerRow.AddCell().Value = "Speaker"
	headerRow.AddCell().Value = "Text"

	for _, turn := range turns {
		row := sheet.AddRow()
		row.AddCell().Value = transcript.FormatTimestamp(turn.Start)
		row.AddCell().Value = turn.Speaker
		row.AddCell().Value = turn.Text
	}

	if err := file.Write(w); err != nil {
		return errors.Wrap(err, "write spreadsheet")
	}
	return nil
}
