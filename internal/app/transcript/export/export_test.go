package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"transcribe-beautifier/internal/app/transcript"
)

var turns = []transcript.Turn{
	{Speaker: "spk_0", Text: "Hello, world."},
	{Speaker: "spk_1", Start: 7.6, Text: "Hi."},
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		input       string
		expected    Format
		expectError bool
	}{
		{input: "", expected: FormatText},
		{input: "TXT", expected: FormatText},
		{input: ".xlsx", expected: FormatExcel},
		{input: "excel", expected: FormatExcel},
		{input: "pdf", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			f, err := ParseFormat(tc.input)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f)
		})
	}
}

func TestWriteText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(FormatText, &out, turns))
	assert.Equal(t, "[00:00:00] spk_0: Hello, world.\n\n[00:00:08] spk_1: Hi.\n\n", out.String())
}

func TestWriteExcel(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(FormatExcel, &out, turns))

	file, err := xlsx.OpenBinary(out.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "Speaker", rows[0].Cells[1].Value)
	assert.Equal(t, "00:00:08", rows[2].Cells[0].Value)
	assert.Equal(t, "Hi.", rows[2].Cells[2].Value)
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".txt", FormatText.Extension())
	assert.Equal(t, ".xlsx", FormatExcel.Extension())
}
