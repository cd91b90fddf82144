package transcript

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"transcribe-beautifier/internal/app/errors"
)

// Item types as they appear in the transcription result.
const (
	ItemPronunciation = "pronunciation"
	ItemPunctuation   = "punctuation"
)

// Document is the JSON result written by the transcription service.
type Document struct {
	JobName   string  `json:"jobName"`
	AccountID string  `json:"accountId,omitempty"`
	Status    string  `json:"status"`
	Results   Results `json:"results"`
}

// Results holds the recognized items. Transcripts carries the flat text the
// service produces alongside the items.
type Results struct {
	Transcripts []struct {
		Transcript string `json:"transcript"`
	} `json:"transcripts"`
	Items []Item `json:"items"`
}

// Item is one recognized unit. Times are decimal strings in seconds.
type Item struct {
	Type         string        `json:"type"`
	Alternatives []Alternative `json:"alternatives"`
	StartTime    string        `json:"start_time,omitempty"`
	EndTime      string        `json:"end_time,omitempty"`
	SpeakerLabel string        `json:"speaker_label,omitempty"`
}

type Alternative struct {
	Confidence string `json:"confidence"`
	Content    string `json:"content"`
}

// Decode reads a transcription result document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode transcription result")
	}
	return &doc, nil
}

// Tokens maps the document's items onto tokens, keeping their order.
func (d *Document) Tokens() ([]Token, error) {
	tokens := make([]Token, 0, len(d.Results.Items))
	for i, item := range d.Results.Items {
		tok, err := item.Token()
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Token converts a single item. Only the first alternative is used.
func (it Item) Token() (Token, error) {
	var tok Token
	switch it.Type {
	case ItemPronunciation, "word":
		tok.Kind = KindWord
	case ItemPunctuation:
		tok.Kind = KindPunctuation
	default:
		return Token{}, errors.Wrapf(errors.ErrMalformedToken, "unknown item type %q", it.Type)
	}
	if len(it.Alternatives) == 0 {
		return Token{}, errors.Wrap(errors.ErrMalformedToken, "item has no alternatives")
	}
	tok.Text = it.Alternatives[0].Content
	tok.Speaker = it.SpeakerLabel

	if raw := strings.TrimSpace(it.StartTime); raw != "" {
		start, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Token{}, errors.Wrapf(errors.ErrMalformedToken, "start_time %q", it.StartTime)
		}
		tok.Start = start
		tok.Timed = true
	}
	return tok, nil
}

// Convert decodes a transcription result from r and writes the readable
// transcript to w.
func Convert(r io.Reader, w io.Writer) error {
	turns, err := ReadTurns(r)
	if err != nil {
		return err
	}
	return Render(w, turns)
}

// ReadTurns decodes a transcription result and reconstructs its turns.
func ReadTurns(r io.Reader) ([]Turn, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	tokens, err := doc.Tokens()
	if err != nil {
		return nil, err
	}
	return Reconstruct(tokens)
}
