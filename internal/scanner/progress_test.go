package scanner_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arc-self/apps/cookie-scan-core/internal/scanner"
)

func TestSinkFunc_Publish(t *testing.T) {
	var got scanner.Progress
	sink := scanner.SinkFunc(func(p scanner.Progress) { got = p })
	sink.Publish(scanner.Progress{ScannedPages: 3})
	assert.Equal(t, 3, got.ScannedPages)
}

func TestNonBlocking_SlowSinkDoesNotBlockCaller(t *testing.T) {
	var calls int32
	slow := scanner.SinkFunc(func(scanner.Progress) {
		time.Sleep(200 * time.Millisecond)
		atomic.AddInt32(&calls, 1)
	})
	wrapped := scanner.NonBlocking(slow)

	start := time.Now()
	wrapped.Publish(scanner.Progress{ScannedPages: 1})
	assert.Less(t, time.Since(start), 150*time.Millisecond, "NonBlocking must return before the slow sink finishes")
}
