// Package submit drives the submission state machine: the batch entry point
// that rechecks eligible datasets, updates QC and archive state, records
// audit events, and persists each changed dataset with a change summary.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oceandata/cruisedash/internal/audit"
	"github.com/oceandata/cruisedash/internal/check"
	"github.com/oceandata/cruisedash/internal/dataset"
	"github.com/oceandata/cruisedash/internal/store"
)

var (
	// ErrUnknownDataset is returned when a submitted expocode has no
	// stored dataset.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrUnacceptableData is returned when the check run finds the data
	// unacceptable and no override flag was supplied.
	ErrUnacceptableData = errors.New("unacceptable data")

	// ErrGeopositionCheck is returned when the check run reports unresolved
	// longitude, latitude, or date/time problems and no override flag was
	// supplied.
	ErrGeopositionCheck = errors.New("geoposition check failed")
)

// MaxAcceptableErrors is the default number of error rows beyond which a
// submission records a recommendation to downgrade the dataset's QC flag.
const MaxAcceptableErrors = 50

// Checker runs the full check-and-standardize pipeline over a dataset.
type Checker interface {
	Standardize(ctx context.Context, ds *dataset.Dataset) (*check.Result, error)
}

// EventRecorder appends QC events to the audit trail.
type EventRecorder interface {
	Append(ctx context.Context, params audit.AppendParams) (*audit.QCEvent, error)
}

// Reindexer notifies the downstream search/publication service that datasets
// changed and need re-indexing.
type Reindexer interface {
	Reindex(ctx context.Context, expocodes []string) error
}

// Request is one submission batch.
type Request struct {
	// Expocodes are the datasets to submit.
	Expocodes []string

	// ArchiveStatus is the requested archive status, or empty to leave the
	// current status alone.
	ArchiveStatus string

	// LocalTimestamp is the caller's local date/time string, recorded as the
	// external-archive send date when a send is queued.
	LocalTimestamp string

	// RepeatSend requests an external-archive send even for datasets that
	// were already sent before.
	RepeatSend bool

	// Submitter is the username the changes are attributed to.
	Submitter string

	// OverrideFlag, when non-empty, is recorded as the QC flag letter in
	// place of the usual new/update letter, and suppresses the acceptable-
	// data and geoposition gates.
	OverrideFlag string
}

// Submitter processes submission batches.
type Submitter struct {
	Datasets store.DatasetStore
	Checker  Checker
	Events   EventRecorder
	Reindex  Reindexer

	// MaxAcceptableErrors overrides the default downgrade-recommendation
	// threshold when positive.
	MaxAcceptableErrors int

	// Version is the data product version stamped on newly submitted
	// datasets and their QC events.
	Version string
}

// submittable reports whether a dataset with this QC status may go through
// a check-and-submit pass. Datasets already submitted (or further along)
// are only touched by the archive steps.
func submittable(qcStatus string) bool {
	switch qcStatus {
	case dataset.QCStatusNotSubmitted,
		dataset.QCStatusUnacceptable,
		dataset.QCStatusSuspended,
		dataset.QCStatusExcluded:
		return true
	}
	return false
}

// Submit processes each dataset in the request independently. A failure on
// one dataset stops that dataset's remaining steps but the rest of the batch
// still runs; all failures are joined into the returned error. Datasets that
// complete a check-and-submit pass are reported to the reindexer in a single
// batched notification.
func (s *Submitter) Submit(ctx context.Context, req Request) error {
	var (
		errs    []error
		reindex []string
	)

	for _, expocode := range req.Expocodes {
		submitted, err := s.submitOne(ctx, expocode, req)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if submitted {
			reindex = append(reindex, expocode)
		}
	}

	if len(reindex) > 0 && s.Reindex != nil {
		if err := s.Reindex.Reindex(ctx, reindex); err != nil {
			errs = append(errs, fmt.Errorf("reindex notification: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Submitter) submitOne(ctx context.Context, expocode string, req Request) (bool, error) {
	ds, err := s.Datasets.Load(ctx, expocode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, fmt.Errorf("%w: %s", ErrUnknownDataset, expocode)
		}
		return false, fmt.Errorf("load %s: %w", expocode, err)
	}

	var (
		changed   bool
		submitted bool
		summary   []string
	)

	if submittable(ds.QCStatus) {
		flag := req.OverrideFlag
		if flag == "" {
			if ds.QCStatus == dataset.QCStatusNotSubmitted {
				flag = dataset.FlagNew
			} else {
				flag = dataset.FlagUpdated
			}
		}

		if err := s.checkAndFlag(ctx, ds, flag, req); err != nil {
			return false, err
		}

		changed = true
		submitted = true
		summary = append(summary, fmt.Sprintf("submit with QC flag '%s'", flag))
	}

	if req.ArchiveStatus != "" && req.ArchiveStatus != ds.ArchiveStatus {
		ds.ArchiveStatus = req.ArchiveStatus
		changed = true
		summary = append(summary, fmt.Sprintf("archive status '%s'", req.ArchiveStatus))
	}

	if dataset.IsExternalSend(req.ArchiveStatus) &&
		(req.RepeatSend || ds.ExternalArchiveDate == "") {
		ds.ExternalArchiveDate = req.LocalTimestamp
		changed = true
		summary = append(summary, fmt.Sprintf("send to archive '%s'", req.LocalTimestamp))
	}

	if !changed {
		return false, nil
	}

	commitMsg := fmt.Sprintf("Expocode %s %s by user '%s'",
		expocode, strings.Join(summary, " "), req.Submitter)
	if err := s.Datasets.Save(ctx, ds, commitMsg); err != nil {
		return false, fmt.Errorf("save %s: %w", expocode, err)
	}

	slog.Info("dataset submission processed",
		"expocode", expocode,
		"submitted", submitted,
		"archive_status", ds.ArchiveStatus,
		"user", req.Submitter,
	)
	return submitted, nil
}

// checkAndFlag runs the full pipeline on the dataset, applies the submission
// gates, and records the QC event. The dataset is mutated in memory only;
// nothing is persisted here, so a failure leaves the stored dataset intact.
func (s *Submitter) checkAndFlag(ctx context.Context, ds *dataset.Dataset, flag string, req Request) error {
	origColumns := ds.NumColumns()

	res, err := s.Checker.Standardize(ctx, ds)
	if err != nil {
		return fmt.Errorf("check %s: %w", ds.Expocode, err)
	}

	override := req.OverrideFlag != ""
	if !override {
		if !res.Output.ProcessedOK || ds.CheckStatus == dataset.CheckStatusUnacceptable {
			return fmt.Errorf("%w: %s (check status %q)",
				ErrUnacceptableData, ds.Expocode, ds.CheckStatus)
		}
		if res.HadGeopositionErrors {
			return fmt.Errorf("%w: %s", ErrGeopositionCheck, ds.Expocode)
		}
	}

	// The date/time columns appended by standardization are derived values.
	// Drop them, along with their flag sets, before the dataset is persisted
	// so the stored schema stays the one the user uploaded.
	ds.TruncateColumns(origColumns)

	errRows := ds.NumErrorRows()
	warnRows := ds.NumWarnRows()

	comment := fmt.Sprintf("Automated data check of %s found %d error rows and %d warning rows",
		ds.Expocode, errRows, warnRows)
	threshold := s.MaxAcceptableErrors
	if threshold <= 0 {
		threshold = MaxAcceptableErrors
	}
	if errRows > threshold {
		comment = fmt.Sprintf("Recommend QC flag of F: %s", comment)
	}

	ds.QCStatus, err = dataset.StatusForFlag(flag)
	if err != nil {
		return fmt.Errorf("submit %s: %w", ds.Expocode, err)
	}
	if s.Version != "" {
		ds.Version = s.Version
	}

	if _, err := s.Events.Append(ctx, audit.AppendParams{
		Expocode:     ds.Expocode,
		Flag:         flag,
		QCStatus:     ds.QCStatus,
		FlagDate:     time.Now().UTC(),
		Version:      ds.Version,
		Username:     req.Submitter,
		Comment:      comment,
		NumErrorRows: errRows,
		NumWarnRows:  warnRows,
	}); err != nil {
		return fmt.Errorf("record QC event for %s: %w", ds.Expocode, err)
	}
	return nil
}
