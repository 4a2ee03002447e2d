package workspace

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/ashwch/etherea/internal/kv"
)

// Backend is the path-keyed persistence layer under Store. Path is the unique
// identifier of a node.
type Backend interface {
	ListAll(ctx context.Context) ([]Node, error)
	Put(ctx context.Context, node Node) error
	DeleteByPath(ctx context.Context, path string) error
	// Apply runs every delete and then every put as one all-or-nothing unit.
	Apply(ctx context.Context, batch Batch) error
}

type Batch struct {
	Deletes []string
	Puts    []Node
}

func (b Batch) Empty() bool {
	return len(b.Deletes) == 0 && len(b.Puts) == 0
}

func applyToMap(nodes map[string]Node, batch Batch) {
	for _, path := range batch.Deletes {
		delete(nodes, path)
	}
	for _, node := range batch.Puts {
		nodes[node.Path] = node
	}
}

type MemoryBackend struct {
	mu    sync.Mutex
	nodes map[string]Node
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{nodes: map[string]Node{}}
}

func (m *MemoryBackend) ListAll(ctx context.Context) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		out = append(out, node)
	}
	return out, nil
}

func (m *MemoryBackend) Put(ctx context.Context, node Node) error {
	return m.Apply(ctx, Batch{Puts: []Node{node}})
}

func (m *MemoryBackend) DeleteByPath(ctx context.Context, path string) error {
	return m.Apply(ctx, Batch{Deletes: []string{path}})
}

func (m *MemoryBackend) Apply(ctx context.Context, batch Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	applyToMap(m.nodes, batch)
	return nil
}

// DefaultKVKey is where the kv-backed layout keeps its node array.
const DefaultKVKey = "etherea.workspace.v1"

// KVBackend stores all nodes as one JSON array under a single key, so every
// batch lands with a single Set.
type KVBackend struct {
	mu    sync.Mutex
	store kv.Store
	key   string
}

func NewKVBackend(store kv.Store, key string) *KVBackend {
	if key == "" {
		key = DefaultKVKey
	}
	return &KVBackend{store: store, key: key}
}

func (b *KVBackend) ListAll(ctx context.Context) ([]Node, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	nodes, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node)
	}
	return out, nil
}

func (b *KVBackend) Put(ctx context.Context, node Node) error {
	return b.Apply(ctx, Batch{Puts: []Node{node}})
}

func (b *KVBackend) DeleteByPath(ctx context.Context, path string) error {
	return b.Apply(ctx, Batch{Deletes: []string{path}})
}

func (b *KVBackend) Apply(ctx context.Context, batch Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	nodes, err := b.load(ctx)
	if err != nil {
		return err
	}
	applyToMap(nodes, batch)
	rows := make([]Node, 0, len(nodes))
	for _, node := range nodes {
		rows = append(rows, node)
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return errors.Wrap(err, "encode workspace rows")
	}
	if err := b.store.Set(ctx, b.key, string(payload)); err != nil {
		return errors.Wrapf(err, "write workspace key %s", b.key)
	}
	return nil
}

func (b *KVBackend) load(ctx context.Context) (map[string]Node, error) {
	raw, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		return nil, errors.Wrapf(err, "read workspace key %s", b.key)
	}
	nodes := map[string]Node{}
	if !ok || raw == "" {
		return nodes, nil
	}
	var rows []Node
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, errors.Wrap(err, "decode workspace rows")
	}
	for _, row := range rows {
		nodes[row.Path] = row
	}
	return nodes, nil
}
