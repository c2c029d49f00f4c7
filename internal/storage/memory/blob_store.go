// Package memory stores blob content in-memory for tests and dry runs.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// BlobStore stores artifacts in-memory and returns pseudo URIs.
type BlobStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	puts map[string]int
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		data: make(map[string][]byte),
		puts: make(map[string]int),
	}
}

// PutObject persists the content and returns a URI.
func (s *BlobStore) PutObject(_ context.Context, path string, _ string, data io.Reader) (string, error) {
	byteData, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("failed to read data from reader: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[path] = byteData
	s.puts[path]++
	return fmt.Sprintf("memory://%s", path), nil
}

// Create returns a writer whose content is visible through Get as it is written.
func (s *BlobStore) Create(_ context.Context, path string, _ string) (io.WriteCloser, string, error) {
	s.mu.Lock()
	s.data[path] = nil
	s.mu.Unlock()
	return &streamWriter{store: s, path: path}, fmt.Sprintf("memory://%s", path), nil
}

// Get returns a copy of the stored content.
func (s *BlobStore) Get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[path]
	return bytes.Clone(b), ok
}

// Puts reports how many times PutObject replaced path.
func (s *BlobStore) Puts(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts[path]
}

type streamWriter struct {
	store  *BlobStore
	path   string
	closed bool
}

func (w *streamWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write to closed object %s", w.path)
	}
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.data[w.path] = append(w.store.data[w.path], p...)
	return len(p), nil
}

func (w *streamWriter) Close() error {
	w.closed = true
	return nil
}
