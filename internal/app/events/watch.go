package events

import (
	"context"

	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/storage"
)

// WatchOptions selects which bucket notifications reach the handler.
type WatchOptions struct {
	Bucket string
	Prefix string
	Suffix string
}

// Watch feeds bucket notifications to handler until ctx is done or the
// listener closes. Handler failures are logged and do not stop the watch.
func Watch(ctx context.Context, listener storage.Listener, opts WatchOptions, handler Handler, logger *zap.Logger) error {
	logger = logger.With(
		zap.String("bucket", opts.Bucket),
		zap.String("prefix", opts.Prefix),
		zap.String("suffix", opts.Suffix))
	logger.Info("watching bucket")

	notifications := listener.Listen(ctx, opts.Bucket, opts.Prefix, opts.Suffix)
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				logger.Info("notification stream closed")
				return nil
			}
			if n.Err != nil {
				logger.Warn("notification error", zap.Error(n.Err))
				continue
			}
			result, err := handler(ctx, n.Ref)
			switch {
			case err == nil:
				logger.Info("handled object", zap.String("key", n.Ref.Key), zap.String("result", result))
			case IsSkip(err):
				logger.Debug("skipped object", zap.String("key", n.Ref.Key), zap.Error(err))
			default:
				logger.Error("failed to handle object", zap.String("key", n.Ref.Key), zap.Error(err))
			}
		}
	}
}
