package transcribe

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/config"
)

const maxPromptAttempts = 3

// CleanPath undoes what terminals add when a file is dropped onto them:
// surrounding quotes and backslash-escaped spaces.
func CleanPath(raw string) string {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 && (p[0] == '\'' || p[0] == '"') && p[len(p)-1] == p[0] {
		return p[1 : len(p)-1]
	}
	return strings.ReplaceAll(p, `\ `, " ")
}

// PromptMediaPath asks for the recording to transcribe.
func PromptMediaPath(in *bufio.Reader, out io.Writer) (string, error) {
	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		fmt.Fprint(out, "Drag the recording here (or type its path) and press Enter: ")
		line, err := in.ReadString('\n')
		if path := CleanPath(line); path != "" {
			return path, nil
		}
		if err != nil {
			return "", errors.RequiredField("media path")
		}
	}
	return "", errors.RequiredField("media path")
}

// PromptSpeakers asks how many people speak. An empty answer keeps def;
// positive answers outside the supported range are clamped.
func PromptSpeakers(in *bufio.Reader, out io.Writer, def int) (int, error) {
	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		fmt.Fprintf(out, "How many speakers? (%d-%d, Enter for %d): ", config.MinSpeakers, config.MaxSpeakers, def)
		line, err := in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" {
			if err != nil && err != io.EOF {
				return 0, err
			}
			return def, nil
		}

		n, convErr := strconv.Atoi(answer)
		if convErr == nil {
			if vErr := config.ValidateSpeakers(n); vErr != nil {
				fmt.Fprintln(out, "There has to be at least one speaker.")
				if err != nil {
					return 0, vErr
				}
				continue
			}
			clamped := config.ClampSpeakers(n)
			if clamped != n {
				fmt.Fprintf(out, "Using %d speakers.\n", clamped)
			}
			return clamped, nil
		}
		fmt.Fprintln(out, "Please enter a whole number.")
		if err != nil {
			break
		}
	}
	return 0, errors.InvalidField("speakers", "not a number")
}
