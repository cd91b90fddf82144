package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transcribe-beautifier/internal/api/v1/dto"
	"transcribe-beautifier/internal/app/metrics"
	"transcribe-beautifier/internal/app/pipeline"
	"transcribe-beautifier/internal/app/repository"
	"transcribe-beautifier/internal/app/storage"
	"transcribe-beautifier/internal/app/testutil"
	"transcribe-beautifier/internal/app/transcript/export"
)

type testServer struct {
	server *Server
	store  *storage.MemoryStore
	jobs   *testutil.MockJobClient
	ledger *repository.MemoryLedger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := storage.NewMemoryStore()
	jobs := testutil.NewMockJobClient()
	jobs.On("Start", mock.Anything, mock.Anything).Return(nil).Maybe()
	ledger := repository.NewMemoryLedger()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	settings := pipeline.Settings{
		InputPrefix:  "input",
		OutputPrefix: "output",
		Language:     "en-US",
		MaxSpeakers:  10,
		Format:       export.FormatText,
	}

	starter := pipeline.NewStarter(store, jobs, ledger, m, settings, zap.NewNop())
	beautifier := pipeline.NewBeautifier(store, ledger, m, settings, zap.NewNop())

	srv := NewServer(
		Config{Environment: "test", Concurrency: 2},
		Handlers{
			Start: func(ctx context.Context, ref storage.ObjectRef) (string, error) {
				return starter.Start(ctx, ref.Bucket, ref.Key)
			},
			Beautify: func(ctx context.Context, ref storage.ObjectRef) (string, error) {
				return beautifier.Beautify(ctx, ref.Bucket, ref.Key)
			},
		},
		ledger, reg, zap.NewNop(),
	)
	return &testServer{server: srv, store: store, jobs: jobs, ledger: ledger}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(w, req)
	return w
}

func notification(bucket string, keys ...string) string {
	records := make([]string, 0, len(keys))
	for _, key := range keys {
		records = append(records, `{"eventSource":"aws:s3","eventName":"ObjectCreated:Put","s3":{"bucket":{"name":"`+
			bucket+`"},"object":{"key":"`+key+`"}}}`)
	}
	return `{"Records":[` + strings.Join(records, ",") + `]}`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestStartEvent(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/events/start", notification("media", "input/weekly+sync.mp3", "input/"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.EventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Handled)
	assert.Equal(t, 1, resp.Skipped)

	req, ok := ts.jobs.LastStarted()
	require.True(t, ok)
	assert.Equal(t, "s3://media/input/weekly sync.mp3", req.MediaURI)
	assert.Equal(t, "output/weekly sync.mp3.json", req.OutputKey)
}

func TestBeautifyEvent(t *testing.T) {
	ts := newTestServer(t)
	data := testutil.ResultJSON(t, "meeting", testutil.MeetingItems()...)
	require.NoError(t, ts.store.Put(context.Background(), "media", "output/meeting.json",
		bytes.NewReader(data), int64(len(data)), "application/json"))

	w := ts.do(http.MethodPost, "/api/v1/events/beautify", notification("media", "output/meeting.json", "output/missing.json"))
	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())

	var resp dto.EventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Handled)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "output/meeting.txt", resp.Outcomes[0].Result)

	out, ok := ts.store.Object("media", "output/meeting.txt")
	require.True(t, ok)
	assert.Equal(t, testutil.MeetingTranscript, string(out))
}

func TestEventErrors(t *testing.T) {
	testCases := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
		expectedKind   string
	}{
		{
			name:           "malformed notification",
			path:           "/api/v1/events/start",
			body:           `{"Records":[`,
			expectedStatus: http.StatusBadRequest,
			expectedKind:   "bad_request",
		},
		{
			name:           "trigger missing key",
			path:           "/api/v1/objects",
			body:           `{"action":"start","bucket":"media"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   "validation",
		},
		{
			name:           "trigger unknown action",
			path:           "/api/v1/objects",
			body:           `{"action":"delete","bucket":"media","key":"a.mp3"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   "validation",
		},
		{
			name:           "trigger folder key",
			path:           "/api/v1/objects",
			body:           `{"action":"start","bucket":"media","key":"input/"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   "validation",
		},
		{
			name:           "trigger missing object",
			path:           "/api/v1/objects",
			body:           `{"action":"beautify","bucket":"media","key":"output/none.json"}`,
			expectedStatus: http.StatusNotFound,
			expectedKind:   "not_found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			w := ts.do(http.MethodPost, tc.path, tc.body)

			assert.Equal(t, tc.expectedStatus, w.Code, w.Body.String())
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.expectedKind, body["kind"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}

func TestTriggerAndHistory(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/objects", `{"action":"start","bucket":"media","key":"input/a.wav"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(http.MethodPost, "/api/v1/objects", `{"action":"start","bucket":"media","key":"input/a.wav"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"skipped":true`)

	w = ts.do(http.MethodGet, "/api/v1/history?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "start", resp.Entries[0].Kind)
	assert.Equal(t, "input/a.wav", resp.Entries[0].Key)

	w = ts.do(http.MethodGet, "/api/v1/history?limit=0", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodGet, "/api/v1/history?limit=9999", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodPost, "/api/v1/objects", `{"action":"start","bucket":"media","key":"input/b.mp4"}`)

	w := ts.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tb_transcription_jobs_started_total 1")
}
