package enterprise_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
	"github.com/arc-self/apps/cookie-scan-core/internal/enterprise"
)

func TestCheckpoint_WriteLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cp := enterprise.Checkpoint{
		ScanID:        "scan_1700000000_abcd1234",
		Domain:        "example.com",
		TotalUrls:     2,
		CompletedUrls: []string{"https://example.com/"},
		PendingUrls:   []string{"https://example.com/about"},
		Cookies: []cookiemodel.AggregatedCookie{
			{Name: "sid", Domain: "example.com", Path: "/"},
		},
		Timestamp: "2026-01-01T00:00:00Z",
		Metrics:   enterprise.Metrics{TotalPages: 2, Scanned: 1},
	}

	require.NoError(t, enterprise.Write(root, cp))
	assert.True(t, enterprise.Exists(root, cp.ScanID))

	loaded, err := enterprise.Load(root, cp.ScanID)
	require.NoError(t, err)
	assert.Equal(t, cp, loaded)
}

func TestCheckpoint_ExistsFalseForUnknownScan(t *testing.T) {
	root := t.TempDir()
	assert.False(t, enterprise.Exists(root, "scan_does_not_exist"))
}

func TestCheckpoint_NoTempFileLeftBehind(t *testing.T) {
	root := t.TempDir()
	cp := enterprise.Checkpoint{ScanID: "scan_x", Domain: "example.com"}
	require.NoError(t, enterprise.Write(root, cp))

	_, err := os.Stat(enterprise.Path(root, cp.ScanID) + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away, not left behind")
}
