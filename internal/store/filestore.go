package store

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

	"github.com/oceandata/cruisedash/internal/dataset"
)

const (
	datasetFileName = "dataset.json"
	historyFileName = "history.log"
)

// FileStore keeps each dataset in its own directory under the root:
// <root>/<expocode>/dataset.json plus an append-only history.log. Writes
// go through a temp file and rename so a crashed save never leaves a
// half-written dataset behind.
type FileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore creates the root directory if needed and returns a store
// over it.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) datasetDir(expocode string) string {
	return filepath.Join(s.root, expocode)
}

// Load reads the dataset for the given expocode. Returns ErrNotFound when
// the dataset directory or file does not exist.
func (s *FileStore) Load(ctx context.Context, expocode string) (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(s.datasetDir(expocode), datasetFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, expocode)
		}
		return nil, fmt.Errorf("read dataset %s: %w", expocode, err)
	}

	ds := &dataset.Dataset{}
	if err := json.Unmarshal(raw, ds); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", expocode, err)
	}
	return ds, nil
}

// Save writes the dataset atomically and appends the commit message to the
// dataset's history.
func (s *FileStore) Save(ctx context.Context, ds *dataset.Dataset, commitMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := s.datasetDir(ds.Expocode)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir %s: %w", ds.Expocode, err)
	}

	raw, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset %s: %w", ds.Expocode, err)
	}

	tmp, err := os.CreateTemp(dir, datasetFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", ds.Expocode, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write dataset %s: %w", ds.Expocode, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", ds.Expocode, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, datasetFileName)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace dataset %s: %w", ds.Expocode, err)
	}

	return s.appendHistory(dir, ds.Expocode, commitMsg)
}

func (s *FileStore) appendHistory(dir, expocode, commitMsg string) error {
	f, err := os.OpenFile(filepath.Join(dir, historyFileName),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history for %s: %w", expocode, err)
	}
	defer f.Close()

	// History messages are single lines; embedded newlines would break
	// the log format.
	msg := strings.ReplaceAll(commitMsg, "\n", " ")
	line := fmt.Sprintf("%s\t%s\n", time.Now().UTC().Format(time.RFC3339), msg)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append history for %s: %w", expocode, err)
	}
	return nil
}

// History returns the recorded commit messages for a dataset, oldest first.
// A dataset with no saves yet returns ErrNotFound.
func (s *FileStore) History(ctx context.Context, expocode string) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.datasetDir(expocode), historyFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, expocode)
		}
		return nil, fmt.Errorf("open history for %s: %w", expocode, err)
	}
	defer f.Close()

	var entries []HistoryEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		ts, msg, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		when, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			continue
		}
		entries = append(entries, HistoryEntry{Timestamp: when, Message: msg})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read history for %s: %w", expocode, err)
	}
	return entries, nil
}
