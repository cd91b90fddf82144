package repository

import (
	"context"
	"time"
)

// Kind names the handler that processed an object.
type Kind string

const (
	KindStart    Kind = "start"
	KindBeautify Kind = "beautify"
)

// Entry is one handled object.
type Entry struct {
	ID           int64
	Kind         Kind
	Bucket       string
	Key          string
	Result       string
	HasError     bool
	ErrorMessage string
	ProcessedAt  time.Time
}

// Ledger remembers which objects the handlers have already processed so
// redelivered events are not acted on twice.
type Ledger interface {
	Close() error

	// IsProcessed reports whether kind handled bucket/key without error.
	IsProcessed(ctx context.Context, kind Kind, bucket, key string) (bool, error)

	Record(ctx context.Context, entry Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
