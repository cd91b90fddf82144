package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/api/transcribe"
	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/metrics"
	"transcribe-beautifier/internal/app/repository"
	"transcribe-beautifier/internal/app/storage"
)

const starterHandler = "start"

// Starter submits a transcription job for media that arrived in storage.
type Starter struct {
	store    storage.ObjectStore
	jobs     transcribe.JobClient
	ledger   repository.Ledger
	metrics  *metrics.Metrics
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

func NewStarter(store storage.ObjectStore, jobs transcribe.JobClient, ledger repository.Ledger,
	m *metrics.Metrics, settings Settings, logger *zap.Logger) *Starter {
	return &Starter{
		store:    store,
		jobs:     jobs,
		ledger:   ledger,
		metrics:  m,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Start submits a job for bucket/key and returns the job name. The job writes
// its result next to the other outputs in the same bucket.
func (s *Starter) Start(ctx context.Context, bucket, key string) (string, error) {
	logger := s.logger.With(zap.String("bucket", bucket), zap.String("key", key))

	if key == "" || strings.HasSuffix(key, "/") {
		s.metrics.ObjectsSkipped.WithLabelValues(starterHandler, "unsupported").Inc()
		return "", errors.Wrapf(errors.ErrUnsupportedKey, "%q is not a media object", key)
	}

	done, err := s.ledger.IsProcessed(ctx, repository.KindStart, bucket, key)
	if err != nil {
		return "", s.fail(ctx, bucket, key, err)
	}
	if done {
		s.metrics.ObjectsSkipped.WithLabelValues(starterHandler, "processed").Inc()
		logger.Info("media already submitted, skipping")
		return "", errors.Wrapf(errors.ErrAlreadyProcessed, "s3://%s/%s", bucket, key)
	}

	req, err := s.jobRequest(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, errors.ErrUnsupportedKey) {
			s.metrics.ObjectsSkipped.WithLabelValues(starterHandler, "unsupported").Inc()
			return "", err
		}
		return "", s.fail(ctx, bucket, key, err)
	}

	if err := s.jobs.Start(ctx, req); err != nil {
		return "", s.fail(ctx, bucket, key, err)
	}
	s.metrics.JobsStarted.Inc()

	if err := s.ledger.Record(ctx, repository.Entry{
		Kind:   repository.KindStart,
		Bucket: bucket,
		Key:    key,
		Result: req.Name,
	}); err != nil {
		logger.Warn("failed to record submitted job", zap.Error(err))
	}

	logger.Info("started transcription job", zap.String("job", req.Name), zap.String("output", req.OutputKey))
	return req.Name, nil
}

func (s *Starter) jobRequest(ctx context.Context, bucket, key string) (transcribe.JobRequest, error) {
	format, err := transcribe.MediaFormatFor(key, s.settings.MediaFormat)
	if err != nil {
		return transcribe.JobRequest{}, err
	}
	uri, err := s.store.MediaURI(ctx, bucket, key)
	if err != nil {
		return transcribe.JobRequest{}, err
	}
	return transcribe.JobRequest{
		Name:              transcribe.JobName(key, s.now()),
		MediaURI:          uri,
		MediaFormat:       format,
		Language:          s.settings.Language,
		MaxSpeakers:       s.settings.MaxSpeakers,
		ShowSpeakerLabels: true,
		OutputBucket:      bucket,
		OutputKey:         s.settings.ResultKey(key),
	}, nil
}

func (s *Starter) fail(ctx context.Context, bucket, key string, err error) error {
	s.metrics.HandlerErrors.WithLabelValues(starterHandler).Inc()
	if recErr := s.ledger.Record(ctx, repository.Entry{
		Kind:         repository.KindStart,
		Bucket:       bucket,
		Key:          key,
		HasError:     true,
		ErrorMessage: err.Error(),
	}); recErr != nil {
		s.logger.Warn("failed to record error", zap.Error(recErr))
	}
	s.logger.Error("failed to start transcription",
		zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
	return err
}
