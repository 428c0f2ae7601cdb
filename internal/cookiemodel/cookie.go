// Package cookiemodel defines the data shapes the scan core passes between
// the Page Visitor, Parallel/Enterprise Scanners, and Cookie Classifier
// (spec §3). Nothing here talks to a browser or a database directly.
package cookiemodel

import (
	"crypto/sha256"
	"encoding/hex"
)

// SameSite mirrors a cookie's SameSite attribute (spec §3).
type SameSite string

const (
	SameSiteStrict      SameSite = "Strict"
	SameSiteLax         SameSite = "Lax"
	SameSiteNone        SameSite = "None"
	SameSiteUnspecified SameSite = "Unspecified"
)

// SessionSentinel is the Expires value used for session cookies, matching
// the "session" sentinel named in spec §3 rather than a numeric epoch.
const SessionSentinel = "session"

// CookieObservation is one cookie as seen on a single page (spec §3).
// Value is retained only long enough to be hashed; HashedValue is what
// survives once the page's PageResult leaves the Page Visitor.
type CookieObservation struct {
	Name       string
	Value      string
	HashedValue string
	Domain     string
	Path       string
	Expires    string // unix-epoch seconds as a string, or SessionSentinel
	HTTPOnly   bool
	Secure     bool
	SameSite   SameSite
	Size       int
}

// HashValue replaces Value with its SHA-256 hex digest and clears Value,
// matching the invariant in spec §3 that cookie values are retained only in
// hashed form outside of the Page Visitor's immediate memory.
func (c *CookieObservation) HashValue() {
	if c.Value == "" {
		c.HashedValue = ""
		return
	}
	sum := sha256.Sum256([]byte(c.Value))
	c.HashedValue = hex.EncodeToString(sum[:])
	c.Size = len(c.Value)
	c.Value = ""
}

// IsSession reports whether this is a session cookie (spec §4.1 duration bucketing).
func (c CookieObservation) IsSession() bool {
	return c.Expires == SessionSentinel || c.Expires == ""
}

// IdentityKey returns the (name, domain, path) triple that identifies a
// cookie within a single page (spec §3 invariant).
type IdentityKey struct {
	Name   string
	Domain string
	Path   string
}

func (c CookieObservation) IdentityKey() IdentityKey {
	return IdentityKey{Name: c.Name, Domain: c.Domain, Path: c.Path}
}
