package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

var spinnerFrames = spinner.MiniDot

// progressSpinner draws an animated status line while a load or render
// runs. It stops on Stop or when its context ends, whichever comes first.
type progressSpinner struct {
	out     io.Writer
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	started bool

	mu     sync.Mutex
	frames int
}

func newSpinner(ctx context.Context, out io.Writer, message string) *progressSpinner {
	inner, cancel := context.WithCancel(ctx)
	return &progressSpinner{
		out:     out,
		message: message,
		parent:  ctx,
		ctx:     inner,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins drawing frames. Call it at most once.
func (s *progressSpinner) Start() {
	s.started = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerFrames.FPS)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.mu.Lock()
				frame := spinnerFrames.Frames[s.frames%len(spinnerFrames.Frames)]
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.frames++
				s.mu.Unlock()
			}
		}
	}()
}

// Stop halts the animation and waits for the status line to be cleared.
// It is safe to call more than once, and on a spinner never started.
func (s *progressSpinner) Stop() {
	s.cancel()
	if s.started {
		<-s.stopped
	}
}

// Cancelled reports whether the parent context ended, for example when the
// user interrupts a long render.
func (s *progressSpinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// drawn reports how many frames have been written.
func (s *progressSpinner) drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *progressSpinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == 0 {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
