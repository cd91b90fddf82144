package transcribe

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"transcribe-beautifier/internal/app/errors"
)

// State is the lifecycle state of a transcription job.
type State string

const (
	StateQueued     State = "QUEUED"
	StateInProgress State = "IN_PROGRESS"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// Terminal reports whether the job will not change state again.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// JobRequest holds the parameters of a transcription job.
type JobRequest struct {
	Name              string
	MediaURI          string
	MediaFormat       string
	Language          string
	MaxSpeakers       int
	ShowSpeakerLabels bool
	OutputBucket      string
	OutputKey         string
}

// JobStatus is a point-in-time view of a job.
type JobStatus struct {
	Name          string
	State         State
	FailureReason string
}

// JobClient submits transcription jobs and reports their status.
type JobClient interface {
	Start(ctx context.Context, req JobRequest) error
	Status(ctx context.Context, name string) (JobStatus, error)
}

const maxJobNameLength = 200

// JobName derives a unique job name from a media file name. Characters the
// service rejects become dashes.
func JobName(fileName string, now time.Time) string {
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	base = strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-') {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-.")
	if base == "" {
		base = "transcript"
	}

	suffix := fmt.Sprintf("-%d-%s", now.Unix(), uuid.NewString()[:8])
	if len(base)+len(suffix) > maxJobNameLength {
		base = base[:maxJobNameLength-len(suffix)]
	}
	return base + suffix
}

var mediaFormats = map[string]string{
	".amr":  "amr",
	".flac": "flac",
	".m4a":  "m4a",
	".mp3":  "mp3",
	".mp4":  "mp4",
	".ogg":  "ogg",
	".webm": "webm",
	".wav":  "wav",
}

// MediaFormatFor picks the job's media format: the override when given,
// otherwise the file extension.
func MediaFormatFor(fileName, override string) (string, error) {
	if override != "" {
		return strings.ToLower(override), nil
	}
	ext := strings.ToLower(path.Ext(fileName))
	if format, ok := mediaFormats[ext]; ok {
		return format, nil
	}
	return "", errors.Wrapf(errors.ErrUnsupportedKey, "no media format for %q", fileName)
}
