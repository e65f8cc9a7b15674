// Package filestore keeps one collection of entities per file. Every mutation
// reads the whole collection, changes it in memory and writes it back through
// a temp file and rename, so readers never observe a half-written file.
//
// Operations on one Store are serialized by its mutex. Separate processes
// writing the same file are not coordinated and the last writer wins.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	apperrors "intervals/internal/platform/errors"
)

// Entity is anything with a stable identifier.
type Entity interface {
	EntityID() string
}

// Kind names a collection and the file that backs it.
type Kind struct {
	Name     string
	FileName string
}

type Store[T Entity] struct {
	kind   Kind
	path   string
	codec  Codec[T]
	logger hclog.Logger
	mu     sync.Mutex
}

func New[T Entity](dir string, kind Kind, codec Codec[T], logger hclog.Logger) *Store[T] {
	if codec == nil {
		codec = JSONCodec[T]{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store[T]{
		kind:   kind,
		path:   filepath.Join(dir, kind.FileName),
		codec:  codec,
		logger: logger.Named("store").With("kind", kind.Name),
	}
}

func (s *Store[T]) Path() string {
	return s.path
}

// Load returns the saved collection. A missing file is an empty collection
// with a nil error. An unreadable or undecodable file is logged and reported
// as an empty collection together with an ErrStorageDegraded error.
func (s *Store[T]) Load(_ context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	items, err := s.load()
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if item.EntityID() == id {
			return item, true, nil
		}
	}
	return zero, false, nil
}

func (s *Store[T]) Add(ctx context.Context, item T) error {
	return s.AddAll(ctx, []T{item})
}

// AddAll appends items without looking at their ids.
func (s *Store[T]) AddAll(_ context.Context, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load()
	if err != nil {
		return err
	}
	return s.write(append(current, items...))
}

// Upsert replaces entries whose id is already present, in place, and appends
// the rest in the order given.
func (s *Store[T]) Upsert(_ context.Context, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load()
	if err != nil {
		return err
	}
	index := make(map[string]int, len(current))
	for i, item := range current {
		if _, seen := index[item.EntityID()]; !seen {
			index[item.EntityID()] = i
		}
	}
	for _, item := range items {
		if i, ok := index[item.EntityID()]; ok {
			current[i] = item
			continue
		}
		index[item.EntityID()] = len(current)
		current = append(current, item)
	}
	return s.write(current)
}

// Update replaces the first entry with the same id. It reports false and
// leaves the file untouched when no entry matches.
func (s *Store[T]) Update(_ context.Context, item T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load()
	if err != nil {
		return false, err
	}
	for i := range current {
		if current[i].EntityID() != item.EntityID() {
			continue
		}
		current[i] = item
		return true, s.write(current)
	}
	return false, nil
}

// Delete removes every entry with the item's id.
func (s *Store[T]) Delete(_ context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load()
	if err != nil {
		return err
	}
	filtered := make([]T, 0, len(current))
	for _, existing := range current {
		if existing.EntityID() == item.EntityID() {
			continue
		}
		filtered = append(filtered, existing)
	}
	if len(filtered) == len(current) {
		return nil
	}
	return s.write(filtered)
}

// DeleteAll removes the backing file.
func (s *Store[T]) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("delete collection failed", "path", s.path, "error", err)
		return fmt.Errorf("delete %s: %w", s.kind.Name, err)
	}
	return nil
}

func (s *Store[T]) load() ([]T, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		s.logger.Warn("read collection failed", "path", s.path, "error", err)
		return []T{}, fmt.Errorf("%w: read %s: %v", apperrors.ErrStorageDegraded, s.kind.Name, err)
	}
	items, err := s.codec.Unmarshal(raw)
	if err != nil {
		s.logger.Warn("decode collection failed", "path", s.path, "error", err)
		return []T{}, fmt.Errorf("%w: decode %s: %v", apperrors.ErrStorageDegraded, s.kind.Name, err)
	}
	return items, nil
}

func (s *Store[T]) write(items []T) error {
	payload, err := s.codec.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.kind.Name, err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn("create store dir failed", "dir", dir, "error", err)
		return fmt.Errorf("create %s dir: %w", s.kind.Name, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		s.logger.Warn("create temp file failed", "dir", dir, "error", err)
		return fmt.Errorf("write %s: %w", s.kind.Name, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		s.logger.Warn("write temp file failed", "path", tmpPath, "error", err)
		return fmt.Errorf("write %s: %w", s.kind.Name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", s.kind.Name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", s.kind.Name, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		s.logger.Warn("replace collection failed", "path", s.path, "error", err)
		return fmt.Errorf("replace %s: %w", s.kind.Name, err)
	}
	s.logger.Debug("collection written", "path", s.path, "items", len(items))
	return nil
}
