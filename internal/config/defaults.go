package config

import "time"

// Default configuration constants
const (
	// Storage defaults
	DefaultRegion       = "us-west-2"
	DefaultEndpoint     = "s3.amazonaws.com"
	DefaultInputPrefix  = "input"
	DefaultOutputPrefix = "output"
	DefaultMediaURI     = MediaURIS3
	DefaultPresignTTL   = 10 * time.Minute

	// Transcription job defaults
	DefaultLanguage    = "en-US"
	DefaultMaxSpeakers = 10
	MinSpeakers        = 2
	MaxSpeakers        = 10

	// Poll defaults
	DefaultPollInterval    = 10 * time.Second
	DefaultPollMaxInterval = time.Minute
	DefaultPollMultiplier  = 1.0
	DefaultPollTimeout     = 2 * time.Hour
	DefaultPollNoticeEvery = 6

	// Ledger defaults
	DefaultLedgerDriver = "sqlite3"
	DefaultLedgerDSN    = "data/ledger.db"

	// Server defaults
	DefaultListenAddr  = ":8080"
	DefaultConcurrency = 4

	// Temporal defaults
	DefaultTemporalHost = "localhost:7233"
	DefaultNamespace    = "default"
	DefaultTaskQueue    = "tb-transcription-queue"

	DefaultOutputFormat = "txt"
	DefaultEnvironment  = EnvironmentProduction
)

// Environments.
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Media URI styles handed to the transcription service.
const (
	MediaURIS3        = "s3"
	MediaURIPresigned = "presigned"
)
