package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/api/transcribe"
	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/metrics"
	"transcribe-beautifier/internal/app/storage"
	"transcribe-beautifier/internal/app/transcript"
	"transcribe-beautifier/internal/app/transcript/export"
	"transcribe-beautifier/internal/config"
)

// SessionRequest describes one interactive transcription.
type SessionRequest struct {
	MediaPath string
	// Speakers is clamped into the supported range; zero uses the configured value.
	Speakers int
	// OutputPath defaults to "<media>-transcript.<ext>".
	OutputPath string
	// KeepRemote leaves the uploaded media and the result in the bucket.
	KeepRemote bool
}

// SessionResult summarizes a finished session.
type SessionResult struct {
	JobName    string
	OutputPath string
	Turns      int
	Elapsed    time.Duration
}

// Session runs the upload, transcribe, download flow for a local file.
type Session struct {
	store    storage.ObjectStore
	jobs     transcribe.JobClient
	poller   *transcribe.Poller
	metrics  *metrics.Metrics
	bucket   string
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

func NewSession(store storage.ObjectStore, jobs transcribe.JobClient, poller *transcribe.Poller,
	m *metrics.Metrics, bucket string, settings Settings, logger *zap.Logger) *Session {
	return &Session{
		store:    store,
		jobs:     jobs,
		poller:   poller,
		metrics:  m,
		bucket:   bucket,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// DefaultOutputPath is where a transcript of mediaPath is written locally.
func DefaultOutputPath(mediaPath string, format export.Format) string {
	return mediaPath + "-transcript" + format.Extension()
}

// Run performs the session. The observer may be nil.
func (s *Session) Run(ctx context.Context, req SessionRequest, observer Observer) (result SessionResult, err error) {
	if observer == nil {
		observer = nopObserver{}
	}
	defer func() { observer.Finish(err) }()

	started := s.now()
	mediaPath := strings.TrimSpace(req.MediaPath)
	if mediaPath == "" {
		return result, errors.RequiredField("media path")
	}
	if _, statErr := os.Stat(mediaPath); statErr != nil {
		return result, errors.Wrapf(statErr, "media file %s", mediaPath)
	}
	format, err := transcribe.MediaFormatFor(mediaPath, s.settings.MediaFormat)
	if err != nil {
		return result, err
	}

	speakers := s.settings.MaxSpeakers
	if req.Speakers != 0 {
		speakers = req.Speakers
	}
	speakers = config.ClampSpeakers(speakers)

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = DefaultOutputPath(mediaPath, s.settings.Format)
	}

	logger := s.logger.With(zap.String("media", mediaPath), zap.String("bucket", s.bucket))

	observer.Stage(StageUpload)
	mediaKey := s.settings.InputKey(filepath.Base(mediaPath))
	if err := s.store.Upload(ctx, s.bucket, mediaKey, mediaPath); err != nil {
		return result, err
	}
	resultKey := s.settings.ResultKey(mediaKey)

	observer.Stage(StageStart)
	uri, err := s.store.MediaURI(ctx, s.bucket, mediaKey)
	if err != nil {
		s.cleanup(ctx, req, logger, mediaKey)
		return result, err
	}
	jobReq := transcribe.JobRequest{
		Name:              transcribe.JobName(mediaPath, s.now()),
		MediaURI:          uri,
		MediaFormat:       format,
		Language:          s.settings.Language,
		MaxSpeakers:       speakers,
		ShowSpeakerLabels: true,
		OutputBucket:      s.bucket,
		OutputKey:         resultKey,
	}
	if err := s.jobs.Start(ctx, jobReq); err != nil {
		s.cleanup(ctx, req, logger, mediaKey)
		return result, err
	}
	s.metrics.JobsStarted.Inc()
	result.JobName = jobReq.Name
	logger.Info("started transcription job", zap.String("job", jobReq.Name), zap.Int("speakers", speakers))

	observer.Stage(StageWait)
	policy := s.poller.Policy()
	status, err := s.poller.Wait(ctx, jobReq.Name, func(attempt int, status transcribe.JobStatus) {
		observer.Polled(attempt, status, policy.Notice(attempt))
	})
	if status.State.Terminal() {
		s.metrics.JobsFinished.WithLabelValues(string(status.State)).Inc()
	}
	if err != nil {
		s.cleanup(ctx, req, logger, mediaKey)
		return result, err
	}

	observer.Stage(StageFetch)
	rc, err := s.store.Get(ctx, s.bucket, resultKey)
	if err != nil {
		s.cleanup(ctx, req, logger, mediaKey)
		return result, err
	}
	turns, err := transcript.ReadTurns(rc)
	rc.Close()
	if err != nil {
		s.cleanup(ctx, req, logger, mediaKey)
		return result, err
	}

	observer.Stage(StageCleanup)
	s.cleanup(ctx, req, logger, mediaKey, resultKey)

	observer.Stage(StageWrite)
	if err := writeFile(outputPath, s.settings.Format, turns); err != nil {
		return result, err
	}
	s.metrics.TranscriptsRendered.WithLabelValues(string(s.settings.Format)).Inc()
	s.metrics.TurnsRendered.Observe(float64(len(turns)))

	result.OutputPath = outputPath
	result.Turns = len(turns)
	result.Elapsed = s.now().Sub(started)
	logger.Info("transcript written",
		zap.String("output", outputPath),
		zap.Int("turns", len(turns)),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// cleanup removes remote objects; failures are logged only.
func (s *Session) cleanup(ctx context.Context, req SessionRequest, logger *zap.Logger, keys ...string) {
	if req.KeepRemote {
		return
	}
	for _, key := range keys {
		if err := s.store.Delete(ctx, s.bucket, key); err != nil {
			logger.Warn("failed to delete remote object", zap.String("key", key), zap.Error(err))
		}
	}
}

func writeFile(path string, format export.Format, turns []transcript.Turn) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create output directory %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := export.Write(format, f, turns); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
