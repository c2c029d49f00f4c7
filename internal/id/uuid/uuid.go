// Package uuid provides ID generation helpers.
package uuid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// eventNamespace seeds name-based event IDs so the same source URL always maps to the same ID.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/JakeFAU/event-crawler/event"))

// Generator creates UUID v7 run IDs.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUID7 string.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return id.String(), nil
}

// EventID derives a stable UUIDv5 from an event's source URL.
func EventID(sourceURL string) string {
	return uuid.NewSHA1(eventNamespace, []byte(strings.TrimSpace(sourceURL))).String()
}
