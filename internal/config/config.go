package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"transcribe-beautifier/internal/app/errors"
)

// Config is the complete runtime configuration.
type Config struct {
	Storage      StorageConfig  `yaml:"storage"`
	Job          JobConfig      `yaml:"job"`
	Poll         PollConfig     `yaml:"poll"`
	Ledger       LedgerConfig   `yaml:"ledger"`
	Server       ServerConfig   `yaml:"server"`
	Temporal     TemporalConfig `yaml:"temporal"`
	OutputFormat string         `yaml:"output_format" validate:"oneof=txt xlsx"`
	Environment  string         `yaml:"environment" validate:"oneof=development production"`
}

// StorageConfig describes the object store holding media and results.
type StorageConfig struct {
	Region       string        `yaml:"region" validate:"required"`
	Bucket       string        `yaml:"bucket"`
	Endpoint     string        `yaml:"endpoint" validate:"required"`
	AccessKey    string        `yaml:"access_key"`
	SecretKey    string        `yaml:"secret_key"`
	SessionToken string        `yaml:"session_token"`
	Insecure     bool          `yaml:"insecure"`
	InputPrefix  string        `yaml:"input_prefix" validate:"required"`
	OutputPrefix string        `yaml:"output_prefix" validate:"required"`
	MediaURI     string        `yaml:"media_uri" validate:"oneof=s3 presigned"`
	PresignTTL   time.Duration `yaml:"presign_ttl" validate:"gt=0"`
}

// JobConfig holds the transcription job parameters.
type JobConfig struct {
	Language    string `yaml:"language" validate:"required"`
	MediaFormat string `yaml:"media_format"`
	MaxSpeakers int    `yaml:"max_speakers"`
}

// PollConfig bounds how long and how often job status is checked.
type PollConfig struct {
	Interval    time.Duration `yaml:"interval" validate:"gt=0"`
	MaxInterval time.Duration `yaml:"max_interval" validate:"gtefield=Interval"`
	Multiplier  float64       `yaml:"multiplier" validate:"gte=1"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	NoticeEvery int           `yaml:"notice_every" validate:"gte=0"`
}

// LedgerConfig selects the database recording processed objects.
type LedgerConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite3 postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// ServerConfig configures the event webhook.
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr" validate:"required"`
	Concurrency int    `yaml:"concurrency" validate:"gte=1,lte=64"`
}

// TemporalConfig holds Temporal client configuration
type TemporalConfig struct {
	HostPort  string `yaml:"host_port" validate:"required"`
	Namespace string `yaml:"namespace" validate:"required"`
	TaskQueue string `yaml:"task_queue" validate:"required"`
}

// Development reports whether development logging was requested.
func (c *Config) Development() bool {
	return c.Environment == EnvironmentDevelopment
}

// Load builds the configuration from an optional YAML file, the environment
// and defaults, in that order of precedence after the environment.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		if err := cfg.readFile(configPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) readFile(configPath string) error {
	configPath = os.ExpandEnv(configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	c.expandEnvironmentVariables()
	return nil
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, configPath string) error {
	configPath = os.ExpandEnv(configPath)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandEnvironmentVariables resolves ${VAR} values in secrets and DSNs.
func (c *Config) expandEnvironmentVariables() {
	for _, field := range []*string{
		&c.Storage.AccessKey,
		&c.Storage.SecretKey,
		&c.Storage.SessionToken,
		&c.Storage.Bucket,
		&c.Ledger.DSN,
	} {
		v := *field
		if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
			*field = os.Getenv(strings.TrimSuffix(strings.TrimPrefix(v, "${"), "}"))
		}
	}
}

func (c *Config) setDefaults() {
	setString(&c.Storage.Region, DefaultRegion)
	setString(&c.Storage.Endpoint, DefaultEndpoint)
	setString(&c.Storage.InputPrefix, DefaultInputPrefix)
	setString(&c.Storage.OutputPrefix, DefaultOutputPrefix)
	setString(&c.Storage.MediaURI, DefaultMediaURI)
	if c.Storage.PresignTTL == 0 {
		c.Storage.PresignTTL = DefaultPresignTTL
	}
	c.Storage.InputPrefix = strings.Trim(c.Storage.InputPrefix, "/")
	c.Storage.OutputPrefix = strings.Trim(c.Storage.OutputPrefix, "/")

	setString(&c.Job.Language, DefaultLanguage)
	if c.Job.MaxSpeakers == 0 {
		c.Job.MaxSpeakers = DefaultMaxSpeakers
	}
	c.Job.MaxSpeakers = ClampSpeakers(c.Job.MaxSpeakers)

	if c.Poll.Interval == 0 {
		c.Poll.Interval = DefaultPollInterval
	}
	if c.Poll.MaxInterval == 0 {
		c.Poll.MaxInterval = DefaultPollMaxInterval
	}
	if c.Poll.MaxInterval < c.Poll.Interval {
		c.Poll.MaxInterval = c.Poll.Interval
	}
	if c.Poll.Multiplier == 0 {
		c.Poll.Multiplier = DefaultPollMultiplier
	}
	if c.Poll.Timeout == 0 {
		c.Poll.Timeout = DefaultPollTimeout
	}
	if c.Poll.NoticeEvery == 0 {
		c.Poll.NoticeEvery = DefaultPollNoticeEvery
	}

	setString(&c.Ledger.Driver, DefaultLedgerDriver)
	setString(&c.Ledger.DSN, DefaultLedgerDSN)

	setString(&c.Server.ListenAddr, DefaultListenAddr)
	if c.Server.Concurrency == 0 {
		c.Server.Concurrency = DefaultConcurrency
	}

	setString(&c.Temporal.HostPort, DefaultTemporalHost)
	setString(&c.Temporal.Namespace, DefaultNamespace)
	setString(&c.Temporal.TaskQueue, DefaultTaskQueue)

	setString(&c.OutputFormat, DefaultOutputFormat)
	setString(&c.Environment, DefaultEnvironment)
}

func setString(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}

// ClampSpeakers keeps a requested speaker count inside what the job accepts.
func ClampSpeakers(n int) int {
	if n < MinSpeakers {
		return MinSpeakers
	}
	if n > MaxSpeakers {
		return MaxSpeakers
	}
	return n
}

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags and the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			fe := validationErrs[0]
			return errors.InvalidField(strings.ToLower(fe.Namespace()), describeTag(fe))
		}
		return errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}
	if err := ValidatePollTimeout(c.Poll.Timeout); err != nil {
		return err
	}
	return nil
}

// RequireBucket fails when an operation needs the default bucket and none is set.
func (c *Config) RequireBucket() error {
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.RequiredField("storage.bucket")
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt", "gte", "lte", "gtefield":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	default:
		return "is invalid"
	}
}
