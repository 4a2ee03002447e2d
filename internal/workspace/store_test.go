package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ashwch/etherea/internal/apperr"
	"github.com/ashwch/etherea/internal/kv"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fixedClock() time.Time {
	return time.UnixMilli(1_700_000_000_000)
}

type backendCase struct {
	name string
	open func(t *testing.T) Backend
}

func backendCases() []backendCase {
	return []backendCase{
		{name: "memory", open: func(t *testing.T) Backend { return NewMemoryBackend() }},
		{name: "kv-memory", open: func(t *testing.T) Backend { return NewKVBackend(kv.NewMemory(), "") }},
		{name: "kv-file", open: func(t *testing.T) Backend {
			store, err := kv.OpenFile(filepath.Join(t.TempDir(), "kv.json"))
			require.NoError(t, err)
			return NewKVBackend(store, DefaultKVKey)
		}},
		{name: "sqlite", open: func(t *testing.T) Backend {
			backend, err := OpenSQLite(filepath.Join(t.TempDir(), "workspace.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = backend.Close() })
			return backend
		}},
	}
}

func paths(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node.Path)
	}
	return out
}

func TestUpsertListRoundTrip(t *testing.T) {
	for _, tc := range backendCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewStore(tc.open(t), WithClock(fixedClock))

			_, err := store.Upsert(ctx, Node{Path: "docs/readme.md", Content: "first"})
			require.NoError(t, err)
			saved, err := store.Upsert(ctx, Node{Path: "docs/readme.md", Content: "second"})
			require.NoError(t, err)
			require.Equal(t, fixedClock().UnixMilli(), saved.UpdatedAt)
			require.Equal(t, TypeFile, saved.Type)

			nodes, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, nodes, 1)
			require.Equal(t, "docs/readme.md", nodes[0].Path)
			require.Equal(t, "second", nodes[0].Content)
		})
	}
}

func TestDeleteCascade(t *testing.T) {
	for _, tc := range backendCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewStore(tc.open(t), WithClock(fixedClock))
			for _, path := range []string{"a/b.txt", "a/c.txt", "ab.txt"} {
				_, err := store.Upsert(ctx, Node{Path: path, Content: path})
				require.NoError(t, err)
			}

			removed, err := store.Delete(ctx, "a")
			require.NoError(t, err)
			require.Equal(t, 2, removed)

			nodes, err := store.List(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"ab.txt"}, paths(nodes))
		})
	}
}

func TestDeleteMissingPathIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())
	removed, err := store.Delete(ctx, "nowhere")
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestRenameCascade(t *testing.T) {
	for _, tc := range backendCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewStore(tc.open(t), WithClock(fixedClock))
			_, err := store.Upsert(ctx, Node{Path: "notes", Type: TypeFolder, Content: "ignored"})
			require.NoError(t, err)
			_, err = store.Upsert(ctx, Node{Path: "notes/x.md", Content: "x"})
			require.NoError(t, err)
			_, err = store.Upsert(ctx, Node{Path: "notes/y.md", Content: "y"})
			require.NoError(t, err)
			_, err = store.Upsert(ctx, Node{Path: "notesextra.md", Content: "keep"})
			require.NoError(t, err)

			moved, err := store.Rename(ctx, "notes", "archive")
			require.NoError(t, err)
			require.Equal(t, 3, moved)

			nodes, err := store.List(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"archive", "archive/x.md", "archive/y.md", "notesextra.md"}, paths(nodes))

			folder, ok, err := store.Get(ctx, "archive")
			require.NoError(t, err)
			require.True(t, ok)
			require.True(t, folder.IsFolder())
			require.Empty(t, folder.Content)

			file, ok, err := store.Get(ctx, "archive/y.md")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "y", file.Content)
		})
	}
}

func TestRenameEdgeCases(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())
	_, err := store.Upsert(ctx, Node{Path: "a.txt"})
	require.NoError(t, err)

	moved, err := store.Rename(ctx, "missing", "elsewhere")
	require.NoError(t, err)
	require.Zero(t, moved)

	moved, err = store.Rename(ctx, "/a.txt/", "a.txt")
	require.NoError(t, err)
	require.Zero(t, moved)

	_, err = store.Rename(ctx, "a.txt", "  ")
	require.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
}

func TestUpsertRejectsEmptyPath(t *testing.T) {
	_, err := NewStore(nil).Upsert(context.Background(), Node{Path: " / "})
	require.Error(t, err)
	require.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"a/b":        "a/b",
		"/a//b/":     "a/b",
		"  a / b  ":  "a/b",
		"":           "",
		"///":        "",
		"notes/x.md": "notes/x.md",
	}
	for raw, want := range cases {
		if got := NormalizePath(raw); got != want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", raw, got, want)
		}
	}
}

type brokenBackend struct {
	*MemoryBackend
	failApply bool
}

func (b *brokenBackend) Apply(ctx context.Context, batch Batch) error {
	if b.failApply {
		return errors.New("disk on fire")
	}
	return b.MemoryBackend.Apply(ctx, batch)
}

func (b *brokenBackend) Put(ctx context.Context, node Node) error {
	return b.Apply(ctx, Batch{Puts: []Node{node}})
}

func TestBackendFailureSurfacesStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	backend := &brokenBackend{MemoryBackend: NewMemoryBackend()}
	store := NewStore(backend)
	_, err := store.Upsert(ctx, Node{Path: "notes/x.md", Content: "x"})
	require.NoError(t, err)

	backend.failApply = true
	_, err = store.Rename(ctx, "notes", "archive")
	require.True(t, apperr.IsCode(err, apperr.CodeStorageUnavailable))
	_, err = store.Delete(ctx, "notes")
	require.True(t, apperr.IsCode(err, apperr.CodeStorageUnavailable))

	nodes, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"notes/x.md"}, paths(nodes))
}

func TestSQLiteApplyIsAtomic(t *testing.T) {
	ctx := context.Background()
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "workspace.db"))
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Put(ctx, Node{Path: "keep.md", Type: TypeFile, UpdatedAt: 1}))

	// the invalid type trips the CHECK constraint after the delete has run
	err = backend.Apply(ctx, Batch{
		Deletes: []string{"keep.md"},
		Puts:    []Node{{Path: "bad", Type: NodeType("socket"), UpdatedAt: 1}},
	})
	require.Error(t, err)

	nodes, err := backend.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"keep.md"}, paths(nodes))
}

func TestSQLitePersistsAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "workspace.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = NewStore(first).Upsert(ctx, Node{Path: "todo.md", Content: "ship"})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()
	node, ok, err := NewStore(second).Get(ctx, "todo.md")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ship", node.Content)
}
