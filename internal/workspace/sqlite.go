package workspace

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteBackend keeps nodes in a single table keyed by path. Batches run in
// one transaction.
type SQLiteBackend struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open workspace database")
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrate workspace database")
	}
	return &SQLiteBackend{db: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS nodes (
			path TEXT PRIMARY KEY,
			content TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('file', 'folder'))
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}

func (s *SQLiteBackend) ListAll(ctx context.Context) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, content, updated_at, type FROM nodes`)
	if err != nil {
		return nil, errors.Wrap(err, "query nodes")
	}
	defer rows.Close()

	var out []Node
	for rows.Next() {
		var (
			node     Node
			nodeType string
		)
		if err := rows.Scan(&node.Path, &node.Content, &node.UpdatedAt, &nodeType); err != nil {
			return nil, errors.Wrap(err, "scan node")
		}
		node.Type = NodeType(nodeType)
		out = append(out, node)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate nodes")
	}
	return out, nil
}

func (s *SQLiteBackend) Put(ctx context.Context, node Node) error {
	return s.Apply(ctx, Batch{Puts: []Node{node}})
}

func (s *SQLiteBackend) DeleteByPath(ctx context.Context, path string) error {
	return s.Apply(ctx, Batch{Deletes: []string{path}})
}

func (s *SQLiteBackend) Apply(ctx context.Context, batch Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin workspace transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, path := range batch.Deletes {
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE path = ?`, path); err != nil {
			return errors.Wrapf(err, "delete node %s", path)
		}
	}
	for _, node := range batch.Puts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO nodes (path, content, updated_at, type)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				content = excluded.content,
				updated_at = excluded.updated_at,
				type = excluded.type
		`, node.Path, node.Content, node.UpdatedAt, string(node.Type))
		if err != nil {
			return errors.Wrapf(err, "upsert node %s", node.Path)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit workspace transaction")
	}
	return nil
}
