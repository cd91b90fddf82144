package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"transcribe-beautifier/internal/app/transcript"
)

// Word builds a pronunciation item.
func Word(content string, start float64, speaker string) transcript.Item {
	return transcript.Item{
		Type:         transcript.ItemPronunciation,
		StartTime:    strconv.FormatFloat(start, 'f', -1, 64),
		EndTime:      strconv.FormatFloat(start+0.3, 'f', -1, 64),
		SpeakerLabel: speaker,
		Alternatives: []transcript.Alternative{{Confidence: "0.99", Content: content}},
	}
}

// Punct builds a punctuation item.
func Punct(content string) transcript.Item {
	return transcript.Item{
		Type:         transcript.ItemPunctuation,
		Alternatives: []transcript.Alternative{{Confidence: "0.0", Content: content}},
	}
}

// ResultJSON encodes a completed transcription result holding items.
func ResultJSON(t testing.TB, jobName string, items ...transcript.Item) []byte {
	t.Helper()
	doc := transcript.Document{JobName: jobName, Status: "COMPLETED"}
	doc.Results.Items = items
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

// MeetingItems is a short two-speaker exchange.
func MeetingItems() []transcript.Item {
	return []transcript.Item{
		Word("Hello", 0.1, "spk_0"),
		Punct(","),
		Word("team", 0.5, "spk_0"),
		Punct("."),
		Word("Morning", 4.7, "spk_1"),
		Punct("!"),
	}
}

// MeetingTranscript is the rendered text of MeetingItems.
const MeetingTranscript = "[00:00:00] spk_0: Hello, team.\n\n[00:00:05] spk_1: Morning!\n\n"

// WriteFile creates a file under a test temp dir and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
