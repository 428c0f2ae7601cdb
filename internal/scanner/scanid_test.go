package scanner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arc-self/apps/cookie-scan-core/internal/scanner"
)

func TestNewScanID_DeterministicPerDomainAndSecond(t *testing.T) {
	now := time.Unix(1700000000, 0)
	a := scanner.NewScanID("example.com", now)
	b := scanner.NewScanID("example.com", now)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "scan_1700000000_")
}

func TestNewScanID_DiffersByDomain(t *testing.T) {
	now := time.Unix(1700000000, 0)
	a := scanner.NewScanID("example.com", now)
	b := scanner.NewScanID("other.com", now)
	assert.NotEqual(t, a, b)
}
