// Package store persists cruise datasets and their change history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/oceandata/cruisedash/internal/dataset"
)

// ErrNotFound is returned when no dataset exists for the given expocode.
var ErrNotFound = errors.New("dataset not found")

// HistoryEntry is one recorded change to a dataset.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// DatasetStore loads and saves datasets keyed by expocode. Save records the
// commit message in the dataset's history alongside the new content.
type DatasetStore interface {
	Load(ctx context.Context, expocode string) (*dataset.Dataset, error)
	Save(ctx context.Context, ds *dataset.Dataset, commitMsg string) error
	History(ctx context.Context, expocode string) ([]HistoryEntry, error)
}
