// Package sha256 includes tests for the SHA-256 hasher adapter.
package sha256

import (
	"testing"
	"time"

	"github.com/JakeFAU/event-crawler/internal/event"
)

// TestHasherHashDeterministic ensures repeated hashing yields the same digest.
func TestHasherHashDeterministic(t *testing.T) {
	t.Parallel()

	h := New()
	got, err := h.Hash([]byte("hello world"))
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	again, err := h.Hash([]byte("hello world"))
	if err != nil {
		t.Fatalf("Hash() repeat error = %v", err)
	}
	if again != got {
		t.Fatalf("expected deterministic hash, got %s vs %s", got, again)
	}
}

// TestRecordDigestIgnoresScrapeTime checks that only exported content affects the digest.
func TestRecordDigestIgnoresScrapeTime(t *testing.T) {
	t.Parallel()

	rec := event.Record{Title: "Winter Walk", Date: "Sat 12 Apr 2025", Availability: event.KnownCount(4)}
	first := RecordDigest(rec)
	if len(first) != 64 {
		t.Fatalf("expected hex sha256, got %q", first)
	}

	rec.ScrapedAt = time.Now()
	if RecordDigest(rec) != first {
		t.Fatal("scrape time must not change the digest")
	}

	rec.Availability = event.KnownCount(3)
	if RecordDigest(rec) == first {
		t.Fatal("availability change must change the digest")
	}

	rec.Availability = event.KnownCount(4)
	rec.Attendance = event.KnownCount(12)
	if RecordDigest(rec) == first {
		t.Fatal("attendance change must change the digest")
	}
}
