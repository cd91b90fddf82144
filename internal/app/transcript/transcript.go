package transcript

import (
	"fmt"
	"io"
	"math"
	"strings"

	"transcribe-beautifier/internal/app/errors"
)

// SentinelSpeaker labels the first turn until the recognizer names someone.
const SentinelSpeaker = "spk_0"

const separator = " "

// Kind is the recognizer's classification of a token.
type Kind int

const (
	KindWord Kind = iota + 1
	KindPunctuation
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindPunctuation:
		return "punctuation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is one recognized unit. Speaker is empty when the recognizer did not
// label it; Start is only meaningful when Timed is set.
type Token struct {
	Kind    Kind
	Text    string
	Start   float64
	Timed   bool
	Speaker string
}

// Turn is a maximal run of tokens attributed to one speaker.
type Turn struct {
	Speaker string
	Start   float64
	Text    string
}

// String renders the turn as a single transcript line without a trailing newline.
func (t Turn) String() string {
	return fmt.Sprintf("[%s] %s: %s", FormatTimestamp(t.Start), t.Speaker, t.Text)
}

// Reconstruct folds a time-ordered token stream into speaker turns.
//
// The result always holds at least the sentinel turn. Tokens without a speaker
// label continue the current turn; a label different from the current
// speaker opens a new one. Words are joined with single spaces and
// punctuation attaches to the preceding word. Nothing is returned when any
// token is malformed.
func Reconstruct(tokens []Token) ([]Turn, error) {
	for i, tok := range tokens {
		if err := validate(tok); err != nil {
			return nil, errors.Wrapf(err, "token %d", i)
		}
	}

	turns := make([]Turn, 0, 1)
	current := Turn{Speaker: SentinelSpeaker}
	var text strings.Builder
	var lastTime float64

	for _, tok := range tokens {
		if tok.Timed {
			lastTime = tok.Start
		}

		speaker := tok.Speaker
		if speaker == "" {
			speaker = current.Speaker
		}
		if speaker != current.Speaker {
			current.Text = strings.TrimSuffix(text.String(), separator)
			turns = append(turns, current)
			current = Turn{Speaker: speaker, Start: lastTime}
			text.Reset()
		}

		if tok.Kind == KindPunctuation {
			trimmed := strings.TrimSuffix(text.String(), separator)
			text.Reset()
			text.WriteString(trimmed)
		}
		text.WriteString(tok.Text)
		text.WriteString(separator)
	}

	current.Text = strings.TrimSuffix(text.String(), separator)
	return append(turns, current), nil
}

func validate(tok Token) error {
	switch tok.Kind {
	case KindWord:
		if !tok.Timed {
			return errors.Wrap(errors.ErrMalformedToken, "word has no start time")
		}
	case KindPunctuation:
	default:
		return errors.Wrapf(errors.ErrMalformedToken, "unknown kind %s", tok.Kind)
	}
	if tok.Timed && (tok.Start < 0 || math.IsNaN(tok.Start) || math.IsInf(tok.Start, 0)) {
		return errors.Wrapf(errors.ErrMalformedToken, "invalid start time %v", tok.Start)
	}
	return nil
}

// FormatTimestamp rounds seconds to the nearest whole second (ties to even)
// and formats it as HH:MM:SS. Hours grow past two digits when needed.
func FormatTimestamp(seconds float64) string {
	total := int64(math.RoundToEven(seconds))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

// Render writes every turn as one line followed by a blank line.
func Render(w io.Writer, turns []Turn) error {
	for _, turn := range turns {
		if _, err := io.WriteString(w, turn.String()+"\n\n"); err != nil {
			return errors.Wrap(err, "write transcript")
		}
	}
	return nil
}
