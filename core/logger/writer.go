package logger

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// levelSink receives records at or above min.
type levelSink struct {
	w   io.Writer
	min slog.Level
}

type writeEntry struct {
	level slog.Level
	data  []byte
	// ack is set for flush requests; data is empty then.
	ack chan error
}

// asyncWriter fans formatted records out to its sinks from a single goroutine,
// so handlers never block on file or terminal I/O unless the queue is full.
type asyncWriter struct {
	queue chan writeEntry
	done  chan struct{}
	// state guards queue against sends after Close.
	state  sync.RWMutex
	closed bool

	sinks []*bufio.Writer
	mins  []slog.Level

	mu  sync.Mutex
	err error
}

// newAsyncWriter writes every record to all writers.
func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	sinks := make([]levelSink, 0, len(writers))
	for _, w := range writers {
		sinks = append(sinks, levelSink{w: w, min: slog.LevelDebug})
	}
	return newLeveledWriter(sinks, bufSize)
}

func newLeveledWriter(sinks []levelSink, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	aw := &asyncWriter{
		queue: make(chan writeEntry, 256),
		done:  make(chan struct{}),
	}
	for _, s := range sinks {
		if s.w == nil {
			continue
		}
		aw.sinks = append(aw.sinks, bufio.NewWriterSize(s.w, bufSize))
		aw.mins = append(aw.mins, s.min)
	}
	go aw.loop()
	return aw
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for e := range w.queue {
		if e.ack != nil {
			e.ack <- w.flushAll()
			continue
		}
		w.setErr(w.writeAll(e.level, e.data))
	}
	w.setErr(w.flushAll())
}

// WriteLevel copies p and queues it. A full queue blocks rather than drops.
func (w *asyncWriter) WriteLevel(level slog.Level, p []byte) error {
	if err := w.getErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	return w.send(writeEntry{level: level, data: append([]byte(nil), p...)})
}

func (w *asyncWriter) send(e writeEntry) error {
	w.state.RLock()
	defer w.state.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- e
	return nil
}

// Flush blocks until everything queued before it reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	if err := w.send(writeEntry{ack: ack}); err != nil {
		return err
	}
	if err := <-ack; err != nil {
		return err
	}
	return w.getErr()
}

// Close drains the queue and reports the first write error.
func (w *asyncWriter) Close() error {
	w.state.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.state.Unlock()
	<-w.done
	return w.getErr()
}

func (w *asyncWriter) writeAll(level slog.Level, p []byte) error {
	for i, sink := range w.sinks {
		if level < w.mins[i] {
			continue
		}
		if _, err := sink.Write(p); err != nil {
			return err
		}
		if err := sink.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushAll() error {
	var errs []error
	for _, sink := range w.sinks {
		errs = append(errs, sink.Flush())
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) getErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *asyncWriter) setErr(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
