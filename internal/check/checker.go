package check

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oceandata/cruisedash/internal/dataset"
)

// Result is the outcome of one pipeline run over a dataset.
type Result struct {
	// Output is the raw engine output.
	Output *Output

	// AmbiguousColumns holds the 0-based indices of the date/time columns,
	// the candidate sources for ambiguous diagnostics.
	AmbiguousColumns ColumnIndexSet

	// DateFormat is the active date format resolved from the dataset's
	// declared timestamp/date unit.
	DateFormat string

	// HadGeopositionErrors is true when any standardized record lacks a
	// usable longitude, latitude, or timestamp. Tracked separately from the
	// generic error count: geoposition problems make a dataset unusable for
	// the data product regardless of how few they are.
	HadGeopositionErrors bool
}

// DatasetChecker runs the full quality-control pipeline over one dataset:
// schema build, engine run, status aggregation, and flag assignment, with
// optional standardization of the row data.
type DatasetChecker struct {
	engine  Engine
	builder *SpecBuilder
	vocab   *dataset.Vocabulary
}

// NewDatasetChecker creates a checker over the given engine and vocabulary.
func NewDatasetChecker(engine Engine, vocab *dataset.Vocabulary) *DatasetChecker {
	return &DatasetChecker{
		engine:  engine,
		builder: NewSpecBuilder(vocab),
		vocab:   vocab,
	}
}

// Check runs the engine on the dataset and assigns the check status, the
// message counts, and all WOCE flag collections. The dataset's rows are not
// modified. An engine failure degrades the check status to unacceptable and
// is surfaced wrapped in ErrCheckEngine.
func (c *DatasetChecker) Check(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	spec, ambiguous, dateFormat, err := c.builder.Build(ds)
	if err != nil {
		return nil, err
	}

	out, err := c.engine.Check(ctx, &Request{
		DatasetID:  ds.Expocode,
		DateFormat: dateFormat,
		Spec:       spec,
		Rows:       ds.Rows,
	})
	if err != nil {
		ds.CheckStatus = dataset.CheckStatusUnacceptable
		ds.NumErrors = 0
		ds.NumWarnings = 0
		return nil, fmt.Errorf("%w: %v", ErrCheckEngine, err)
	}

	ds.CheckStatus, ds.NumErrors, ds.NumWarnings = Aggregate(out)
	if err := AssignFlags(ds, out.Messages, ambiguous); err != nil {
		return nil, err
	}

	res := &Result{
		Output:           out,
		AmbiguousColumns: ambiguous,
		DateFormat:       dateFormat,
	}
	if out.ProcessedOK {
		for i := range out.Records {
			rec := &out.Records[i]
			if _, ok := rec.Timestamp(); !ok || !rec.HasPosition() {
				res.HadGeopositionErrors = true
				break
			}
		}
	}

	slog.Debug("dataset checked",
		"expocode", ds.Expocode,
		"status", ds.CheckStatus,
		"errors", ds.NumErrors,
		"warnings", ds.NumWarnings,
		"geoposition_errors", res.HadGeopositionErrors,
	)
	return res, nil
}

// Standardize runs Check and then rewrites the dataset's rows with the
// engine's standardized values, appending any missing date/time columns.
// When the engine could not process the data at all there is nothing to
// standardize; the result carries the unacceptable status for the caller
// to act on.
func (c *DatasetChecker) Standardize(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	res, err := c.Check(ctx, ds)
	if err != nil {
		return nil, err
	}
	if !res.Output.ProcessedOK {
		return res, nil
	}
	if err := Standardize(ds, res.Output, c.vocab); err != nil {
		return nil, err
	}
	return res, nil
}
