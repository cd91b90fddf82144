package pipeline

import (
	"bytes"
	"context"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/metrics"
	"transcribe-beautifier/internal/app/repository"
	"transcribe-beautifier/internal/app/storage"
	"transcribe-beautifier/internal/app/testutil"
	"transcribe-beautifier/internal/app/transcript/export"
)

const testBucket = "media"

func testSettings() Settings {
	return Settings{
		InputPrefix:  "input",
		OutputPrefix: "output",
		Language:     "en-US",
		MaxSpeakers:  10,
		Format:       export.FormatText,
	}
}

func TestSettingsKeys(t *testing.T) {
	s := testSettings()

	assert.Equal(t, "input/meeting.mp4", s.InputKey("/tmp/rec/meeting.mp4"))
	assert.Equal(t, "output/meeting.mp4.json", s.ResultKey("input/meeting.mp4"))
	assert.Equal(t, "output/meeting.mp4.txt", s.TranscriptKey("output/meeting.mp4.json"))

	s.Format = export.FormatExcel
	assert.Equal(t, "output/meeting.mp4.xlsx", s.TranscriptKey("output/meeting.mp4.json"))
}

func TestIsResultKey(t *testing.T) {
	testCases := []struct {
		key      string
		expected bool
	}{
		{"output/a.json", true},
		{"output/A.JSON", true},
		{"output/a.txt", false},
		{"output/.write_access_check_file.temp", false},
		{"output/", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, IsResultKey(tc.key), tc.key)
	}
}

func TestStarterStart(t *testing.T) {
	store := storage.NewMemoryStore()
	jobs := testutil.NewMockJobClient()
	jobs.On("Start", mock.Anything, mock.Anything).Return(nil)
	ledger := repository.NewMemoryLedger()
	m := metrics.NewUnregistered()

	starter := NewStarter(store, jobs, ledger, m, testSettings(), zap.NewNop())
	starter.now = func() time.Time { return time.Unix(1700000000, 0) }

	name, err := starter.Start(context.Background(), testBucket, "input/team sync.mp4")
	require.NoError(t, err)
	assert.Regexp(t, `^team-sync-1700000000-[0-9a-f]{8}$`, name)

	req, ok := jobs.LastStarted()
	require.True(t, ok)
	assert.Equal(t, name, req.Name)
	assert.Equal(t, "s3://media/input/team sync.mp4", req.MediaURI)
	assert.Equal(t, "mp4", req.MediaFormat)
	assert.Equal(t, "en-US", req.Language)
	assert.Equal(t, 10, req.MaxSpeakers)
	assert.True(t, req.ShowSpeakerLabels)
	assert.Equal(t, testBucket, req.OutputBucket)
	assert.Equal(t, "output/team sync.mp4.json", req.OutputKey)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.JobsStarted))

	done, err := ledger.IsProcessed(context.Background(), repository.KindStart, testBucket, "input/team sync.mp4")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestStarterSkipsProcessedMedia(t *testing.T) {
	jobs := testutil.NewMockJobClient()
	jobs.On("Start", mock.Anything, mock.Anything).Return(nil)
	m := metrics.NewUnregistered()
	starter := NewStarter(storage.NewMemoryStore(), jobs, repository.NewMemoryLedger(), m, testSettings(), zap.NewNop())

	_, err := starter.Start(context.Background(), testBucket, "input/a.wav")
	require.NoError(t, err)

	_, err = starter.Start(context.Background(), testBucket, "input/a.wav")
	assert.True(t, errors.Is(err, errors.ErrAlreadyProcessed))

	jobs.AssertNumberOfCalls(t, "Start", 1)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.ObjectsSkipped.WithLabelValues("start", "processed")))
}

func TestStarterUnsupportedKeys(t *testing.T) {
	testCases := []struct {
		name string
		key  string
	}{
		{name: "folder marker", key: "input/"},
		{name: "empty key", key: ""},
		{name: "unknown extension", key: "input/notes.docx"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			jobs := testutil.NewMockJobClient()
			starter := NewStarter(storage.NewMemoryStore(), jobs, repository.NewMemoryLedger(),
				metrics.NewUnregistered(), testSettings(), zap.NewNop())

			_, err := starter.Start(context.Background(), testBucket, tc.key)
			assert.True(t, errors.Is(err, errors.ErrUnsupportedKey))
			jobs.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
		})
	}
}

func TestStarterRecordsFailure(t *testing.T) {
	jobs := testutil.NewMockJobClient()
	jobs.On("Start", mock.Anything, mock.Anything).Return(errors.New("throttled"))
	ledger := repository.NewMemoryLedger()
	m := metrics.NewUnregistered()
	starter := NewStarter(storage.NewMemoryStore(), jobs, ledger, m, testSettings(), zap.NewNop())

	_, err := starter.Start(context.Background(), testBucket, "input/a.mp3")
	require.Error(t, err)

	entries, err := ledger.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].HasError)
	assert.Equal(t, "throttled", entries[0].ErrorMessage)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.HandlerErrors.WithLabelValues("start")))

	// A failed attempt does not block a retry.
	done, err := ledger.IsProcessed(context.Background(), repository.KindStart, testBucket, "input/a.mp3")
	require.NoError(t, err)
	assert.False(t, done)
}

func putResult(t *testing.T, store *storage.MemoryStore, key string) {
	t.Helper()
	data := testutil.ResultJSON(t, "meeting", testutil.MeetingItems()...)
	require.NoError(t, store.Put(context.Background(), testBucket, key, bytes.NewReader(data), int64(len(data)), "application/json"))
}

func TestBeautifierBeautify(t *testing.T) {
	store := storage.NewMemoryStore()
	putResult(t, store, "output/meeting.mp4.json")
	ledger := repository.NewMemoryLedger()
	m := metrics.NewUnregistered()

	b := NewBeautifier(store, ledger, m, testSettings(), zap.NewNop())
	outKey, err := b.Beautify(context.Background(), testBucket, "output/meeting.mp4.json")
	require.NoError(t, err)
	assert.Equal(t, "output/meeting.mp4.txt", outKey)

	data, ok := store.Object(testBucket, outKey)
	require.True(t, ok)
	assert.Equal(t, testutil.MeetingTranscript, string(data))
	assert.Equal(t, "text/plain; charset=utf-8", store.ContentType(testBucket, outKey))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.TranscriptsRendered.WithLabelValues("txt")))

	_, err = b.Beautify(context.Background(), testBucket, "output/meeting.mp4.json")
	assert.True(t, errors.Is(err, errors.ErrAlreadyProcessed))
}

func TestBeautifierExcel(t *testing.T) {
	store := storage.NewMemoryStore()
	putResult(t, store, "output/call.json")
	settings := testSettings()
	settings.Format = export.FormatExcel

	b := NewBeautifier(store, repository.NewMemoryLedger(), metrics.NewUnregistered(), settings, zap.NewNop())
	outKey, err := b.Beautify(context.Background(), testBucket, "output/call.json")
	require.NoError(t, err)
	assert.Equal(t, "output/call.xlsx", outKey)

	data, ok := store.Object(testBucket, outKey)
	require.True(t, ok)
	file, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	assert.Equal(t, "spk_1", file.Sheets[0].Rows[2].Cells[1].String())
}

func TestBeautifierErrors(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		content  string
		expected error
	}{
		{name: "not a result", key: "output/meeting.txt", expected: errors.ErrUnsupportedKey},
		{name: "missing object", key: "output/missing.json", expected: errors.ErrObjectNotFound},
		{
			name:     "malformed item",
			key:      "output/bad.json",
			content:  `{"results":{"items":[{"type":"pronunciation","alternatives":[{"content":"x"}]}]}}`,
			expected: errors.ErrMalformedToken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			if tc.content != "" {
				require.NoError(t, store.Put(context.Background(), testBucket, tc.key,
					bytes.NewReader([]byte(tc.content)), int64(len(tc.content)), "application/json"))
			}
			b := NewBeautifier(store, repository.NewMemoryLedger(), metrics.NewUnregistered(), testSettings(), zap.NewNop())

			_, err := b.Beautify(context.Background(), testBucket, tc.key)
			assert.True(t, errors.Is(err, tc.expected), "got %v", err)
			for _, key := range store.Keys(testBucket) {
				assert.Equal(t, tc.key, key, "no transcript may be written")
			}
		})
	}
}

func TestConvert(t *testing.T) {
	data := testutil.ResultJSON(t, "meeting", testutil.MeetingItems()...)

	var out bytes.Buffer
	n, err := Convert(bytes.NewReader(data), &out, export.FormatText)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, testutil.MeetingTranscript, out.String())
}
