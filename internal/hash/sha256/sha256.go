// Package sha256 provides SHA-256 hashing utilities.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/JakeFAU/event-crawler/internal/event"
)

// Hasher hashes bytes with SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns a hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// RecordDigest fingerprints the exported content of rec. ScrapedAt is excluded so an
// unchanged event hashes the same on every run.
func RecordDigest(rec event.Record) string {
	fields := append(rec.Row(), rec.Attendance.String())
	digest, _ := New().Hash([]byte(strings.Join(fields, "\x1f")))
	return digest
}
