package sim

import "sync"

// ReportSink receives one Report per simulated month, in chronological order.
// A non-nil error aborts the run.
type ReportSink interface {
	Emit(r Report) error
}

// SinkFunc adapts a plain function to ReportSink.
type SinkFunc func(r Report) error

func (f SinkFunc) Emit(r Report) error { return f(r) }

// DiscardSink drops every report.
var DiscardSink ReportSink = SinkFunc(func(Report) error { return nil })

// CollectingSink keeps every report in memory. Used by tests and the summary path.
type CollectingSink struct {
	Reports []Report
}

func (c *CollectingSink) Emit(r Report) error {
	c.Reports = append(c.Reports, r)
	return nil
}

// MultiSink fans each report out to every sink in order, stopping at the first error.
type MultiSink []ReportSink

func (m MultiSink) Emit(r Report) error {
	for _, s := range m {
		if err := s.Emit(r); err != nil {
			return err
		}
	}
	return nil
}

// AsyncSink decouples report emission from the stepping loop. Reports are queued on a
// buffered channel and forwarded to the wrapped sink by a single goroutine, so order
// is preserved. After the wrapped sink fails, later reports are dropped and Emit
// returns that error. Close must be called exactly once emission is finished.
type AsyncSink struct {
	next    ReportSink
	reports chan Report
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// NewAsyncSink starts the forwarding goroutine. buffer < 1 is treated as 1.
func NewAsyncSink(next ReportSink, buffer int) *AsyncSink {
	if buffer < 1 {
		buffer = 1
	}
	a := &AsyncSink{
		next:    next,
		reports: make(chan Report, buffer),
		done:    make(chan struct{}),
	}
	go a.forward()
	return a
}

func (a *AsyncSink) forward() {
	defer close(a.done)
	for r := range a.reports {
		if a.Err() != nil {
			continue
		}
		if err := a.next.Emit(r); err != nil {
			a.mu.Lock()
			a.err = err
			a.mu.Unlock()
		}
	}
}

// Emit queues r. It only blocks when the buffer is full.
func (a *AsyncSink) Emit(r Report) error {
	if err := a.Err(); err != nil {
		return err
	}
	a.reports <- r
	return nil
}

// Err returns the first error from the wrapped sink, if any.
func (a *AsyncSink) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Close flushes queued reports and waits for the forwarding goroutine.
func (a *AsyncSink) Close() error {
	close(a.reports)
	<-a.done
	return a.Err()
}
