// Package enterprise implements the Enterprise Scanner: chunked,
// checkpointed, retry-aware deep scanning on top of a Browser Pool
// (spec §4.5).
package enterprise

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
)

// Checkpoint is the on-disk resumption record for one scan. Field order is
// kept stable so checkpoints stay diffable across scans.
type Checkpoint struct {
	ScanID        string                       `json:"scanId"`
	Domain        string                       `json:"domain"`
	TotalUrls     int                          `json:"totalUrls"`
	CompletedUrls []string                     `json:"completedUrls"`
	PendingUrls   []string                     `json:"pendingUrls"`
	Cookies       []cookiemodel.AggregatedCookie `json:"cookies"`
	Timestamp     string                       `json:"timestamp"`
	Metrics       Metrics                      `json:"metrics"`
}

// Path returns the stable, implementation-defined file path for a scanId
// under root: <root>/<scanId>.json.
func Path(root, scanID string) string {
	return filepath.Join(root, scanID+".json")
}

// Write atomically persists a checkpoint via write-temp-then-rename, as
// required by spec §4.5/§6.
func Write(root string, cp Checkpoint) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("checkpoint: mkdir %s: %w", root, err)
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}

	final := Path(root, cp.ScanID)
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write temp file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("checkpoint: rename into place: %w", err)
	}
	return nil
}

// Load reads a previously written checkpoint for scanID under root.
func Load(root, scanID string) (Checkpoint, error) {
	data, err := os.ReadFile(Path(root, scanID))
	if err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: read %s: %w", scanID, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: unmarshal %s: %w", scanID, err)
	}
	return cp, nil
}

// Exists reports whether a checkpoint file exists for scanID under root.
func Exists(root, scanID string) bool {
	_, err := os.Stat(Path(root, scanID))
	return err == nil
}
