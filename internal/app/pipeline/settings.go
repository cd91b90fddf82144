package pipeline

import (
	"path"
	"strings"

	"transcribe-beautifier/internal/app/storage"
	"transcribe-beautifier/internal/app/transcript/export"
	"transcribe-beautifier/internal/config"
)

const resultExtension = ".json"

// Settings are the job and layout parameters shared by the handlers.
type Settings struct {
	InputPrefix  string
	OutputPrefix string
	Language     string
	MediaFormat  string
	MaxSpeakers  int
	Format       export.Format
}

// SettingsFromConfig extracts the pipeline settings.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	format, err := export.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		InputPrefix:  cfg.Storage.InputPrefix,
		OutputPrefix: cfg.Storage.OutputPrefix,
		Language:     cfg.Job.Language,
		MediaFormat:  cfg.Job.MediaFormat,
		MaxSpeakers:  cfg.Job.MaxSpeakers,
		Format:       format,
	}, nil
}

// InputKey is where uploaded media for fileName lives.
func (s Settings) InputKey(fileName string) string {
	return storage.JoinKey(s.InputPrefix, path.Base(fileName))
}

// ResultKey is where the transcription service writes the result for a media key.
func (s Settings) ResultKey(mediaKey string) string {
	return storage.JoinKey(s.OutputPrefix, path.Base(mediaKey)+resultExtension)
}

// TranscriptKey is where the readable transcript for a result key is stored.
func (s Settings) TranscriptKey(resultKey string) string {
	base := strings.TrimSuffix(path.Base(resultKey), resultExtension)
	return storage.JoinKey(s.OutputPrefix, base+s.Format.Extension())
}

// IsResultKey reports whether key names a transcription result document.
func IsResultKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), resultExtension) && !strings.HasSuffix(key, "/")
}
