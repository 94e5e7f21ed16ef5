package logger

import (
	"errors"
	"io"
	"log"
	"os"
	"time"
)

const asyncQueueDepth = 512

// asyncWriter queues lines for a single goroutine that owns the
// underlying writer.
type asyncWriter struct {
	w       io.Writer
	lines   chan []byte
	flushes chan chan struct{}
}

func newAsyncWriter(w io.Writer) *asyncWriter {
	aw := &asyncWriter{
		w:       w,
		lines:   make(chan []byte, asyncQueueDepth),
		flushes: make(chan chan struct{}),
	}
	go aw.run()
	return aw
}

// Write copies p since log.Logger reuses its buffer after Write returns.
func (w *asyncWriter) Write(p []byte) (int, error) {
	line := append([]byte(nil), p...)
	w.lines <- line
	return len(p), nil
}

// Flush returns once every line queued before the call is written.
func (w *asyncWriter) Flush() {
	done := make(chan struct{})
	w.flushes <- done
	<-done
}

func (w *asyncWriter) run() {
	for {
		select {
		case line := <-w.lines:
			w.w.Write(line) //nolint:errcheck
		case done := <-w.flushes:
			w.drain()
			close(done)
		}
	}
}

func (w *asyncWriter) drain() {
	for {
		select {
		case line := <-w.lines:
			w.w.Write(line) //nolint:errcheck
		default:
			return
		}
	}
}

type asyncLogger struct {
	*logger
	writer *asyncWriter
}

// NewAsyncWriterLogger returns a Logger that hands formatted lines to a
// background goroutine so hashing never waits on a slow log sink.
// Callers must Flush before exiting.
func NewAsyncWriterLogger(level LogLevel, ioWriter io.Writer) Logger {
	wout := newAsyncWriter(ioWriter)
	return &asyncLogger{
		logger: &logger{
			level:  level,
			logger: log.New(wout, "", log.LstdFlags),
		},
		writer: wout,
	}
}

func (l *asyncLogger) Flush() error {
	l.writer.Flush()
	return nil
}

func (l *asyncLogger) FlushTimeout(d time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.writer.Flush()
		close(done)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return errors.New("logger: flush timed out after " + d.String())
	}
}

func (l *asyncLogger) HandlePanic(tag string) {
	if e := recover(); e != nil {
		l.logPanic(tag, e)
		l.FlushTimeout(30 * time.Second) //nolint:errcheck
		os.Exit(2)
	}
}
