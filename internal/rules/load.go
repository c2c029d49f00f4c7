package rules

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML rule file and overlays it on Default. A field listed in the file replaces
// the default strategies for that field; listing selectors replace defaults when non-empty.
func Load(path string) (Set, error) {
	// #nosec G304 -- the rule file path comes from operator configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	return Parse(data)
}

// Parse overlays YAML rule data on Default.
func Parse(data []byte) (Set, error) {
	var overlay Set
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&overlay); err != nil {
		return Set{}, fmt.Errorf("decode rules: %w", err)
	}
	return Merge(Default(), overlay), nil
}

// Merge returns base with overlay's fields and non-empty listing selectors applied.
func Merge(base, overlay Set) Set {
	out := Set{
		Fields:  make(map[Field][]Strategy, len(base.Fields)+len(overlay.Fields)),
		Listing: base.Listing,
	}
	for f, list := range base.Fields {
		out.Fields[f] = append([]Strategy(nil), list...)
	}
	for f, list := range overlay.Fields {
		out.Fields[f] = append([]Strategy(nil), list...)
	}
	if overlay.Listing.Container != "" {
		out.Listing.Container = overlay.Listing.Container
	}
	if overlay.Listing.Item != "" {
		out.Listing.Item = overlay.Listing.Item
	}
	if overlay.Listing.Link != "" {
		out.Listing.Link = overlay.Listing.Link
	}
	return out
}

// Marshal renders a rule set as YAML.
func Marshal(s Set) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	return buf.Bytes(), nil
}
