package config

import (
	"time"

	"transcribe-beautifier/internal/app/errors"
)

// MaxPollTimeout caps how long any caller may wait on a single job.
const MaxPollTimeout = 24 * time.Hour

// ValidatePollTimeout validates the job wait bound
func ValidatePollTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return errors.InvalidField("poll.timeout", "must be positive")
	}
	if timeout > MaxPollTimeout {
		return errors.OutOfRange("poll.timeout", time.Duration(0), MaxPollTimeout)
	}
	return nil
}

// ValidateSpeakers validates an explicit speaker count from the user
func ValidateSpeakers(n int) error {
	if n < 1 {
		return errors.OutOfRange("speakers", 1, MaxSpeakers)
	}
	return nil
}
