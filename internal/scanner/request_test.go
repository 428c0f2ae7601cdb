package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanner"
)

func TestParseRequest_RejectsNonAbsoluteDomain(t *testing.T) {
	_, err := scanner.ParseRequest(scanner.RawRequest{Domain: "example.com", Mode: cookiemodel.ModeQuick})
	assert.Error(t, err)
}

func TestParseRequest_RejectsNonHTTPScheme(t *testing.T) {
	_, err := scanner.ParseRequest(scanner.RawRequest{Domain: "ftp://example.com", Mode: cookiemodel.ModeQuick})
	assert.Error(t, err)
}

func TestParseRequest_AppliesDefaults(t *testing.T) {
	req, err := scanner.ParseRequest(scanner.RawRequest{Domain: "https://example.com", Mode: cookiemodel.ModeQuick})
	require.NoError(t, err)
	assert.Equal(t, 5, req.Concurrency)
	assert.Equal(t, 1000, req.ChunkSize)
	assert.Equal(t, 30000, req.TimeoutMs)
}

func TestParseRequest_RejectsOutOfBoundsConcurrency(t *testing.T) {
	_, err := scanner.ParseRequest(scanner.RawRequest{
		Domain:      "https://example.com",
		Mode:        cookiemodel.ModeQuick,
		Concurrency: 21,
	})
	assert.Error(t, err)
}

func TestParseRequest_RejectsOutOfBoundsMaxPages(t *testing.T) {
	_, err := scanner.ParseRequest(scanner.RawRequest{
		Domain:   "https://example.com",
		Mode:     cookiemodel.ModeEnterprise,
		MaxPages: 20001,
	})
	assert.Error(t, err)
}
