package config

import (
	"os"
	"strconv"
	"time"
)

// ScanDefaults holds the tunables recognised from the environment.
// Every field follows a "zero means use the built-in default" convention
// rather than requiring every caller to populate every field.
type ScanDefaults struct {
	Concurrency       int
	BrowserPoolSize   int
	PagesPerBrowser   int
	CheckpointDir     string
	TimeoutMs         int
	MaxRetries        int
	LockTTLSeconds    int
}

// LoadScanDefaults reads SCAN_* and LOCK_TTL_SECONDS from the environment.
// Unset or unparsable values are left at their zero value so callers can
// apply their own hardcoded fallback for pool sizes and timeouts.
func LoadScanDefaults() ScanDefaults {
	return ScanDefaults{
		Concurrency:     envInt("SCAN_DEFAULT_CONCURRENCY"),
		BrowserPoolSize: envInt("SCAN_BROWSER_POOL_SIZE"),
		PagesPerBrowser: envInt("SCAN_PAGES_PER_BROWSER"),
		CheckpointDir:   envString("SCAN_CHECKPOINT_DIR", "./scan_checkpoints"),
		TimeoutMs:       envInt("SCAN_TIMEOUT_MS"),
		MaxRetries:      envInt("SCAN_MAX_RETRIES"),
		LockTTLSeconds:  envInt("LOCK_TTL_SECONDS"),
	}
}

// LockTTL returns the configured lock TTL, defaulting to 300s per spec §4.6.
func (d ScanDefaults) LockTTL() time.Duration {
	if d.LockTTLSeconds > 0 {
		return time.Duration(d.LockTTLSeconds) * time.Second
	}
	return 300 * time.Second
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envString(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
