package submit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileReindexer hands reindex requests to the downstream search/publication
// service through a spool directory: each batch becomes one file listing the
// changed expocodes, one per line. The downstream service consumes and
// removes the files on its own schedule.
type FileReindexer struct {
	dir string
}

// NewFileReindexer creates the spool directory if needed.
func NewFileReindexer(dir string) (*FileReindexer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reindex dir: %w", err)
	}
	return &FileReindexer{dir: dir}, nil
}

// Reindex writes one request file for the batch. The write goes through a
// temp file and rename so the consumer never sees a partial list.
func (r *FileReindexer) Reindex(ctx context.Context, expocodes []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(expocodes) == 0 {
		return nil
	}

	name := fmt.Sprintf("reindex-%s-%s.txt",
		time.Now().UTC().Format("20060102T150405"), uuid.New().String()[:8])
	content := strings.Join(expocodes, "\n") + "\n"

	tmp, err := os.CreateTemp(r.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create reindex request: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write reindex request: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close reindex request: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(r.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish reindex request: %w", err)
	}
	return nil
}
