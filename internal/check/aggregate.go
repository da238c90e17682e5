package check

import "github.com/oceandata/cruisedash/internal/dataset"

// Aggregate derives the dataset-level check status from an engine run,
// returning the status label and the error/warning message counts.
//
// An engine that could not process the data at all is a stronger failure
// than one that found errors within valid data, so ProcessedOK=false maps
// to the unacceptable status with zero counts. Errors dominate warnings in
// the label; the warning count is still tallied. Total: every run yields
// a status.
func Aggregate(out *Output) (status string, numErrors, numWarnings int) {
	if !out.ProcessedOK {
		return dataset.CheckStatusUnacceptable, 0, 0
	}

	for i := range out.Messages {
		switch out.Messages[i].Severity {
		case SeverityError:
			numErrors++
		case SeverityWarning:
			numWarnings++
		}
	}

	switch {
	case numErrors > 0:
		status = dataset.CheckStatusErrors(numErrors)
	case numWarnings > 0:
		status = dataset.CheckStatusWarnings(numWarnings)
	default:
		status = dataset.CheckStatusAcceptable
	}
	return status, numErrors, numWarnings
}
