package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps use "HH:MM:SS.cc"
// (e.g. "14:32:01.45"); debug level also reports the calling file.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	l.SetReportCaller(level <= log.DebugLevel)
	return l
}

// setLevel changes the level and the caller reporting that goes with it.
func setLevel(l *log.Logger, level log.Level) {
	l.SetLevel(level)
	l.SetReportCaller(level <= log.DebugLevel)
}

// progress times one command step and logs it once finished.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time as a field, plus any
// extra key/value pairs:
//
//	14:32:01.45 INFO Fetched job-123 elapsed=1.234s bytes=52311
func (p *progress) done(msg string, keyvals ...any) {
	kv := append([]any{"elapsed", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Info(msg, kv...)
}
