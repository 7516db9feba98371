package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// SnapshotJournal is a SnapshotStore backed by an append-only JSON Lines file,
// one snapshot per line. Records are flushed to disk on every append and are
// never rewritten; the file grows without bound (retention is deliberately
// not implemented, see the SnapshotStore contract).
type SnapshotJournal struct {
	path  string
	file  *os.File
	mutex sync.Mutex
}

// OpenSnapshotJournal opens (or creates) the journal file at path.
func OpenSnapshotJournal(path string) (*SnapshotJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot journal: %w", err)
	}

	return &SnapshotJournal{path: path, file: file}, nil
}

// Append writes one snapshot as a JSON line and syncs it to disk.
func (j *SnapshotJournal) Append(_ context.Context, snap Snapshot) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.file == nil {
		return ErrStoreClosed
	}

	line, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if _, err := j.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot journal: %w", err)
	}

	return nil
}

// Range scans the whole journal file and returns matching snapshots in file
// order. Malformed lines are skipped rather than failing the query.
func (j *SnapshotJournal) Range(_ context.Context, q SnapshotQuery) ([]Snapshot, error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.file == nil {
		return nil, ErrStoreClosed
	}

	readFile, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open snapshot journal for reading: %w", err)
	}
	defer readFile.Close()

	var out []Snapshot
	scanner := bufio.NewScanner(readFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var snap Snapshot
		if err := json.Unmarshal([]byte(line), &snap); err != nil {
			continue
		}
		if q.Matches(snap) {
			out = append(out, snap)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading snapshot journal: %w", err)
	}

	return out, nil
}

// Path returns the journal file location.
func (j *SnapshotJournal) Path() string {
	return j.path
}

// Close closes the underlying file. Appends after Close fail with
// ErrStoreClosed.
func (j *SnapshotJournal) Close() error {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
