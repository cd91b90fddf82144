package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envPrefix namespaces every setting read from the environment.
const envPrefix = "TB_"

// LoadEnv loads environment variables from the first .env file found.
// Missing files are fine; variables may be set system-wide.
func LoadEnv() (string, error) {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}

	return "", nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func envString(dst *string, name string) {
	if v, ok := lookupEnv(name); ok {
		*dst = v
	}
}

func envInt(dst *int, name string) error {
	v, ok := lookupEnv(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = n
	return nil
}

func envFloat(dst *float64, name string) error {
	v, ok := lookupEnv(name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = f
	return nil
}

func envBool(dst *bool, name string) error {
	v, ok := lookupEnv(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = b
	return nil
}

func envDuration(dst *time.Duration, name string) error {
	v, ok := lookupEnv(name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = d
	return nil
}

// applyEnv overrides file settings with TB_* variables. AWS_REGION and the
// standard AWS credential variables are honoured as fallbacks.
func (c *Config) applyEnv() error {
	if c.Storage.Region == "" {
		c.Storage.Region = strings.TrimSpace(os.Getenv("AWS_REGION"))
	}
	if c.Storage.AccessKey == "" {
		c.Storage.AccessKey = strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	}
	if c.Storage.SecretKey == "" {
		c.Storage.SecretKey = strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	}
	if c.Storage.SessionToken == "" {
		c.Storage.SessionToken = strings.TrimSpace(os.Getenv("AWS_SESSION_TOKEN"))
	}

	envString(&c.Storage.Region, "REGION")
	envString(&c.Storage.Bucket, "BUCKET")
	envString(&c.Storage.Endpoint, "S3_ENDPOINT")
	envString(&c.Storage.AccessKey, "S3_ACCESS_KEY")
	envString(&c.Storage.SecretKey, "S3_SECRET_KEY")
	envString(&c.Storage.InputPrefix, "INPUT_PREFIX")
	envString(&c.Storage.OutputPrefix, "OUTPUT_PREFIX")
	envString(&c.Storage.MediaURI, "MEDIA_URI")
	envString(&c.Job.Language, "LANGUAGE")
	envString(&c.Job.MediaFormat, "MEDIA_FORMAT")
	envString(&c.Ledger.Driver, "LEDGER_DRIVER")
	envString(&c.Ledger.DSN, "LEDGER_DSN")
	envString(&c.Server.ListenAddr, "LISTEN_ADDR")
	envString(&c.Temporal.HostPort, "TEMPORAL_HOST")
	envString(&c.Temporal.Namespace, "TEMPORAL_NAMESPACE")
	envString(&c.Temporal.TaskQueue, "TASK_QUEUE")
	envString(&c.OutputFormat, "OUTPUT_FORMAT")
	envString(&c.Environment, "ENV")

	for _, apply := range []func() error{
		func() error { return envBool(&c.Storage.Insecure, "S3_INSECURE") },
		func() error { return envDuration(&c.Storage.PresignTTL, "PRESIGN_TTL") },
		func() error { return envInt(&c.Job.MaxSpeakers, "MAX_SPEAKERS") },
		func() error { return envDuration(&c.Poll.Interval, "POLL_INTERVAL") },
		func() error { return envDuration(&c.Poll.MaxInterval, "POLL_MAX_INTERVAL") },
		func() error { return envFloat(&c.Poll.Multiplier, "POLL_MULTIPLIER") },
		func() error { return envDuration(&c.Poll.Timeout, "POLL_TIMEOUT") },
		func() error { return envInt(&c.Poll.NoticeEvery, "POLL_NOTICE_EVERY") },
		func() error { return envInt(&c.Server.Concurrency, "CONCURRENCY") },
	} {
		if err := apply(); err != nil {
			return err
		}
	}
	return nil
}
