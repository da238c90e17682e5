package submit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// FileReindexer Tests
// ----------------------------------------------------------------------------

func TestFileReindexer_WritesRequestFile(t *testing.T) {
	dir := t.TempDir()
	r, err := NewFileReindexer(dir)
	if err != nil {
		t.Fatalf("NewFileReindexer() error = %v", err)
	}

	if err := r.Reindex(context.Background(), []string{"AAAA20100101", "BBBB20100101"}); err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("spool dir has %d files, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "reindex-") || !strings.HasSuffix(name, ".txt") {
		t.Errorf("request file name = %q, want reindex-*.txt", name)
	}

	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(raw) != "AAAA20100101\nBBBB20100101\n" {
		t.Errorf("request file content = %q, want one expocode per line", raw)
	}
}

func TestFileReindexer_EmptyBatchNoOp(t *testing.T) {
	dir := t.TempDir()
	r, err := NewFileReindexer(dir)
	if err != nil {
		t.Fatalf("NewFileReindexer() error = %v", err)
	}

	if err := r.Reindex(context.Background(), nil); err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("spool dir has %d files, want none for an empty batch", len(entries))
	}
}
