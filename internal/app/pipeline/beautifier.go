package pipeline

import (
	"bytes"
	"context"
	"io"

	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/metrics"
	"transcribe-beautifier/internal/app/repository"
	"transcribe-beautifier/internal/app/storage"
	"transcribe-beautifier/internal/app/transcript"
	"transcribe-beautifier/internal/app/transcript/export"
)

const beautifierHandler = "beautify"

// Beautifier turns transcription results in storage into readable transcripts.
type Beautifier struct {
	store    storage.ObjectStore
	ledger   repository.Ledger
	metrics  *metrics.Metrics
	settings Settings
	logger   *zap.Logger
}

func NewBeautifier(store storage.ObjectStore, ledger repository.Ledger, m *metrics.Metrics,
	settings Settings, logger *zap.Logger) *Beautifier {
	return &Beautifier{
		store:    store,
		ledger:   ledger,
		metrics:  m,
		settings: settings,
		logger:   logger,
	}
}

// Beautify converts the result document at bucket/key and stores the
// transcript under the output prefix. It returns the transcript's key.
func (b *Beautifier) Beautify(ctx context.Context, bucket, key string) (string, error) {
	logger := b.logger.With(zap.String("bucket", bucket), zap.String("key", key))

	if !IsResultKey(key) {
		b.metrics.ObjectsSkipped.WithLabelValues(beautifierHandler, "unsupported").Inc()
		return "", errors.Wrapf(errors.ErrUnsupportedKey, "%q is not a transcription result", key)
	}

	done, err := b.ledger.IsProcessed(ctx, repository.KindBeautify, bucket, key)
	if err != nil {
		return "", b.fail(ctx, bucket, key, err)
	}
	if done {
		b.metrics.ObjectsSkipped.WithLabelValues(beautifierHandler, "processed").Inc()
		logger.Info("result already beautified, skipping")
		return "", errors.Wrapf(errors.ErrAlreadyProcessed, "s3://%s/%s", bucket, key)
	}

	rc, err := b.store.Get(ctx, bucket, key)
	if err != nil {
		return "", b.fail(ctx, bucket, key, err)
	}
	turns, err := transcript.ReadTurns(rc)
	rc.Close()
	if err != nil {
		return "", b.fail(ctx, bucket, key, err)
	}

	var buf bytes.Buffer
	if err := export.Write(b.settings.Format, &buf, turns); err != nil {
		return "", b.fail(ctx, bucket, key, err)
	}

	outKey := b.settings.TranscriptKey(key)
	size := int64(buf.Len())
	if err := b.store.Put(ctx, bucket, outKey, &buf, size, b.settings.Format.ContentType()); err != nil {
		return "", b.fail(ctx, bucket, key, err)
	}

	b.metrics.TranscriptsRendered.WithLabelValues(string(b.settings.Format)).Inc()
	b.metrics.TurnsRendered.Observe(float64(len(turns)))

	if err := b.ledger.Record(ctx, repository.Entry{
		Kind:   repository.KindBeautify,
		Bucket: bucket,
		Key:    key,
		Result: outKey,
	}); err != nil {
		logger.Warn("failed to record transcript", zap.Error(err))
	}

	logger.Info("stored transcript", zap.String("output", outKey), zap.Int("turns", len(turns)))
	return outKey, nil
}

func (b *Beautifier) fail(ctx context.Context, bucket, key string, err error) error {
	b.metrics.HandlerErrors.WithLabelValues(beautifierHandler).Inc()
	if recErr := b.ledger.Record(ctx, repository.Entry{
		Kind:         repository.KindBeautify,
		Bucket:       bucket,
		Key:          key,
		HasError:     true,
		ErrorMessage: err.Error(),
	}); recErr != nil {
		b.logger.Warn("failed to record error", zap.Error(recErr))
	}
	b.logger.Error("failed to beautify transcript",
		zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
	return err
}

// Convert renders a result document read from r to w and returns the
// number of turns written.
func Convert(r io.Reader, w io.Writer, format export.Format) (int, error) {
	turns, err := transcript.ReadTurns(r)
	if err != nil {
		return 0, err
	}
	if err := export.Write(format, w, turns); err != nil {
		return 0, err
	}
	return len(turns), nil
}
