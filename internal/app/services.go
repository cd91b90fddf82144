package app

import (
	"context"

	"transcribe-beautifier/internal/app/events"
	"transcribe-beautifier/internal/app/storage"
)

// StartHandler adapts the starter for event dispatch.
func (s *Services) StartHandler() events.Handler {
	return func(ctx context.Context, ref storage.ObjectRef) (string, error) {
		return s.Starter.Start(ctx, ref.Bucket, ref.Key)
	}
}

// BeautifyHandler adapts the beautifier for event dispatch.
func (s *Services) BeautifyHandler() events.Handler {
	return func(ctx context.Context, ref storage.ObjectRef) (string, error) {
		return s.Beautifier.Beautify(ctx, ref.Bucket, ref.Key)
	}
}
