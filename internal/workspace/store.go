package workspace

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ashwch/etherea/internal/apperr"
)

// Store is the folder-aware view over a Backend. It hands out copies of
// nodes, never live references.
type Store struct {
	backend Backend
	now     func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(backend Backend, opts ...Option) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &Store{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every stored node. Ordering is by path for stable output,
// callers should not rely on it for anything else.
func (s *Store) List(ctx context.Context) ([]Node, error) {
	nodes, err := s.backend.ListAll(ctx)
	if err != nil {
		return nil, apperr.StorageUnavailable("could not list workspace", err)
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *Store) Get(ctx context.Context, path string) (Node, bool, error) {
	path = NormalizePath(path)
	if path == "" {
		return Node{}, false, nil
	}
	nodes, err := s.List(ctx)
	if err != nil {
		return Node{}, false, err
	}
	for _, node := range nodes {
		if node.Path == path {
			return node, true, nil
		}
	}
	return Node{}, false, nil
}

// Upsert replaces any node at the same path. A zero UpdatedAt is stamped
// from the store clock.
func (s *Store) Upsert(ctx context.Context, node Node) (Node, error) {
	node = normalizeNode(node)
	if node.Path == "" {
		return Node{}, apperr.InvalidArgument("path is required")
	}
	if node.UpdatedAt == 0 {
		node.UpdatedAt = s.now().UnixMilli()
	}
	if err := s.backend.Put(ctx, node); err != nil {
		return Node{}, apperr.StorageUnavailable("could not save "+node.Path, err).
			WithContext("path", node.Path)
	}
	return node, nil
}

// Delete removes path and its whole subtree. It reports how many nodes went
// away; a missing path removes nothing.
func (s *Store) Delete(ctx context.Context, path string) (int, error) {
	path = NormalizePath(path)
	if path == "" {
		return 0, nil
	}
	nodes, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	var batch Batch
	for _, node := range nodes {
		if Covers(path, node.Path) {
			batch.Deletes = append(batch.Deletes, node.Path)
		}
	}
	if batch.Empty() {
		return 0, nil
	}
	if err := s.backend.Apply(ctx, batch); err != nil {
		return 0, apperr.StorageUnavailable("could not delete "+path, err).
			WithContext("path", path)
	}
	return len(batch.Deletes), nil
}

// Rename moves oldPath and its subtree under newPath by literal prefix
// substitution. The whole move is one backend batch.
func (s *Store) Rename(ctx context.Context, oldPath, newPath string) (int, error) {
	oldPath = NormalizePath(oldPath)
	newPath = NormalizePath(newPath)
	if oldPath == "" || newPath == "" {
		return 0, apperr.InvalidArgument("rename needs both a source and a destination path")
	}
	if oldPath == newPath {
		return 0, nil
	}
	nodes, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	stamp := s.now().UnixMilli()
	var batch Batch
	for _, node := range nodes {
		if !Covers(oldPath, node.Path) {
			continue
		}
		batch.Deletes = append(batch.Deletes, node.Path)
		moved := node
		moved.Path = newPath + strings.TrimPrefix(node.Path, oldPath)
		moved.UpdatedAt = stamp
		batch.Puts = append(batch.Puts, moved)
	}
	if batch.Empty() {
		return 0, nil
	}
	if err := s.backend.Apply(ctx, batch); err != nil {
		return 0, apperr.StorageUnavailable("could not rename "+oldPath, err).
			WithContext("from", oldPath).
			WithContext("to", newPath)
	}
	return len(batch.Puts), nil
}
