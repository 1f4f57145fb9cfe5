package converter

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"whisper-transcribe/internal/app/common"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

type ProgressManager struct {
	writer  io.Writer
	enabled bool
}

// Spinner shows the current stage and elapsed time until stopped.
// A disabled Spinner is a no-op.
type Spinner struct {
	container *mpb.Progress
	bar       *mpb.Bar
	mu        sync.Mutex
	stage     string
	stopped   bool
}

func NewProgressManager(config ProgressConfig) *ProgressManager {
	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}
	return &ProgressManager{writer: writer, enabled: config.Enabled}
}

// Spinner starts a spinner, or returns a no-op one when progress is disabled.
func (pm *ProgressManager) Spinner() *Spinner {
	if pm == nil || !pm.enabled {
		return &Spinner{stopped: true}
	}

	s := &Spinner{}
	s.container = mpb.New(
		mpb.WithOutput(pm.writer),
		mpb.WithRefreshRate(120*time.Millisecond),
		mpb.WithWidth(1),
	)
	s.bar = s.container.New(0,
		mpb.SpinnerStyle(),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string { return s.Stage() }, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), "done"),
		),
	)
	return s
}

func (s *Spinner) SetStage(stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = stage
}

func (s *Spinner) Stage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Done marks the spinner complete and waits for the final render.
func (s *Spinner) Done() {
	s.finish(true)
}

// Stop removes an unfinished spinner. It is safe after Done.
func (s *Spinner) Stop() {
	s.finish(false)
}

func (s *Spinner) finish(complete bool) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	if complete {
		s.bar.SetTotal(-1, true)
	} else {
		s.bar.Abort(true)
	}
	s.container.Wait()
}

// ShouldShowProgress reports whether a requested spinner can be drawn.
// Redirected stderr never gets one.
func ShouldShowProgress(requested bool) bool {
	return requested && common.IsTerminal(os.Stderr)
}
