package scanner

import "time"

// Progress is a ScanProgress record published after every batch (spec §4.3).
type Progress struct {
	TotalPages        int
	ScannedPages      int
	CurrentBatch      int
	TotalBatches      int
	CookiesFound      int
	ElapsedSeconds    float64
	EstimatedRemaining float64
}

// Sink receives Progress records. Publish must never block the scanner on a
// slow sink (spec §4.3) — callers pass a Sink backed by a buffered channel
// or a non-blocking send, not a synchronous RPC.
type Sink interface {
	Publish(Progress)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Progress)

// Publish implements Sink.
func (f SinkFunc) Publish(p Progress) {
	if f != nil {
		f(p)
	}
}

// NoopSink discards all progress records.
var NoopSink Sink = SinkFunc(nil)

// nonBlockingSink wraps a Sink so Publish returns after at most 50ms; if the
// underlying sink takes longer, it finishes delivering the record on a
// background goroutine after Publish has returned.
type nonBlockingSink struct {
	inner Sink
}

// NonBlocking wraps inner so that a slow consumer delays the scanner by at
// most 50ms per progress record instead of stalling it.
func NonBlocking(inner Sink) Sink {
	return nonBlockingSink{inner: inner}
}

func (s nonBlockingSink) Publish(p Progress) {
	if s.inner == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		s.inner.Publish(p)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(50 * time.Millisecond):
	}
}
