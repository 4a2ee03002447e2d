package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashwch/etherea/internal/appdirs"
	"github.com/ashwch/etherea/internal/safety"
)

const maxInputLength = 4096

// Record is one journaled save_memory entry.
type Record struct {
	ID        string         `json:"id"`
	Input     string         `json:"input"`
	Data      map[string]any `json:"data"`
	Mood      string         `json:"mood,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// Journal appends records to a JSONL file, one record per line.
type Journal struct {
	mu     sync.Mutex
	path   string
	redact bool
	now    func() time.Time
}

type Option func(*Journal)

// WithRedaction scrubs secrets from Input before writing. On by default.
func WithRedaction(enabled bool) Option {
	return func(j *Journal) {
		j.redact = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		if now != nil {
			j.now = now
		}
	}
}

func Open(path string, opts ...Option) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("could not create journal dir: %w", err)
	}
	j := &Journal{path: path, redact: true, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// OpenDefault opens memory.jsonl in the state dir.
func OpenDefault(opts ...Option) (*Journal, error) {
	if _, err := appdirs.EnsureStateDir(); err != nil {
		return nil, err
	}
	path, err := appdirs.StateFilePath(appdirs.JournalFileName)
	if err != nil {
		return nil, err
	}
	return Open(path, opts...)
}

func (j *Journal) Path() string {
	return j.path
}

// Append stamps ID and CreatedAt when missing and writes the record.
func (j *Journal) Append(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if len(rec.Data) == 0 {
		return Record{}, fmt.Errorf("memory record has no data")
	}
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Record{}, fmt.Errorf("could not generate record id: %w", err)
		}
		rec.ID = id.String()
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = j.now().UTC().Format(time.RFC3339)
	}
	rec.Input = strings.TrimSpace(rec.Input)
	if j.redact {
		rec.Input = safety.RedactText(rec.Input)
	}
	if len(rec.Input) > maxInputLength {
		rec.Input = rec.Input[:maxInputLength]
	}

	encoded, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("could not serialize memory record: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Record{}, fmt.Errorf("could not open journal: %w", err)
	}
	defer f.Close()
	if err := os.Chmod(j.path, 0o600); err != nil {
		return Record{}, fmt.Errorf("could not secure journal permissions: %w", err)
	}
	if _, err := f.Write(append(encoded, '\n')); err != nil {
		return Record{}, fmt.Errorf("could not write memory record: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first. Unparseable lines are
// skipped. A missing journal is empty.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read journal: %w", err)
	}
	defer f.Close()

	var all []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		all = append(all, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not scan journal: %w", err)
	}

	out := make([]Record, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, all[i])
	}
	return out, nil
}
