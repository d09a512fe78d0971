package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a single status line while a blocking call runs, for
// example a Graphviz layout or a long image download. The message may be
// replaced while it spins. A spinner stops when Stop is called or its
// context ends, whichever comes first.
type spinner struct {
	w io.Writer

	mu    sync.Mutex
	msg   string
	width int // widest line drawn so far

	once    sync.Once
	quit    chan struct{}
	stopped chan struct{}
}

// startSpinner draws msg on w until the spinner is stopped.
func startSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &spinner{
		w:       w,
		msg:     msg,
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-ticker.C:
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := frame + " " + s.msg
	if n := len([]rune(line)); n > s.width {
		s.width = n
	}
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg))
}

// Update replaces the message shown next to the animation.
func (s *spinner) Update(format string, args ...any) {
	s.mu.Lock()
	s.msg = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

// Stop ends the animation and erases the status line. It is safe to call
// more than once.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.stopped

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+1))
		s.width = 0
	}
}

// Fail stops the spinner and reports msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}

// byteProgress returns a progress callback that shows the running byte
// count on s.
func (s *spinner) byteProgress(label string) func(int64) {
	return func(n int64) {
		s.Update("%s %s", label, formatBytes(n))
	}
}
