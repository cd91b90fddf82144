package pipeline

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"transcribe-beautifier/internal/app/api/transcribe"
)

// Session stages in order.
const (
	StageUpload  = "uploading media"
	StageStart   = "starting job"
	StageWait    = "waiting for job"
	StageFetch   = "fetching result"
	StageCleanup = "cleaning up"
	StageWrite   = "writing transcript"
)

var sessionStages = []string{StageUpload, StageStart, StageWait, StageFetch, StageCleanup, StageWrite}

// Observer follows an interactive session.
type Observer interface {
	Stage(name string)
	// Polled is called after every status read; notice marks the reads a
	// waiting user should hear about.
	Polled(attempt int, status transcribe.JobStatus, notice bool)
	Finish(err error)
}

type nopObserver struct{}

func (nopObserver) Stage(string)                           {}
func (nopObserver) Polled(int, transcribe.JobStatus, bool) {}
func (nopObserver) Finish(error)                           {}

// ProgressConfig controls terminal progress output.
type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// ProgressObserver renders session stages as a progress bar.
type ProgressObserver struct {
	container *mpb.Progress
	bar       *mpb.Bar
	writer    io.Writer
	enabled   bool

	mu      sync.Mutex
	message string
}

func NewProgressObserver(config ProgressConfig) *ProgressObserver {
	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}
	if !config.Enabled {
		return &ProgressObserver{writer: writer}
	}

	p := &ProgressObserver{writer: writer, enabled: true}
	p.container = mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	p.bar = p.container.AddBar(int64(len(sessionStages)),
		mpb.PrependDecorators(
			decor.CountersNoUnit("[%d/%d] ", decor.WCSyncWidth),
			decor.Any(func(decor.Statistics) string { return p.current() }, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), " done"),
		),
	)
	return p
}

func (p *ProgressObserver) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

func (p *ProgressObserver) setMessage(msg string) {
	p.mu.Lock()
	p.message = msg
	p.mu.Unlock()
}

func (p *ProgressObserver) Stage(name string) {
	if !p.enabled {
		fmt.Fprintf(p.writer, "%s...\n", name)
		return
	}
	if p.current() != "" {
		p.bar.Increment()
	}
	p.setMessage(name)
}

func (p *ProgressObserver) Polled(attempt int, status transcribe.JobStatus, notice bool) {
	if !notice {
		return
	}
	msg := fmt.Sprintf("%s: still %s after %d checks", StageWait, status.State, attempt)
	if !p.enabled {
		fmt.Fprintln(p.writer, msg)
		return
	}
	p.setMessage(msg)
}

func (p *ProgressObserver) Finish(err error) {
	if !p.enabled {
		return
	}
	if err != nil {
		p.setMessage("failed: " + err.Error())
		p.bar.Abort(false)
	} else {
		p.bar.SetTotal(int64(len(sessionStages)), true)
	}
	p.container.Wait()
}

// IsTTY reports whether writer is a terminal.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
