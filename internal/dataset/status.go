package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Check status labels summarize the outcome of the automated validation pass.
const (
	CheckStatusNotChecked   = ""
	CheckStatusAcceptable   = "No warnings"
	CheckStatusWarningsPref = "Warnings:"
	CheckStatusErrorsPref   = "Errors:"
	CheckStatusUnacceptable = "Unacceptable"
)

// CheckStatusErrors formats the check status for a dataset with n error messages.
func CheckStatusErrors(n int) string {
	return CheckStatusErrorsPref + " " + strconv.Itoa(n) + " errors"
}

// CheckStatusWarnings formats the check status for a dataset with n warning
// messages and no errors.
func CheckStatusWarnings(n int) string {
	return CheckStatusWarningsPref + " " + strconv.Itoa(n) + " warnings"
}

// QC status labels track a dataset's position in the submission workflow.
const (
	QCStatusNotSubmitted = ""
	QCStatusSubmitted    = "Submitted"
	QCStatusSuspended    = "Suspended"
	QCStatusExcluded     = "Excluded"
	QCStatusUnacceptable = "Unacceptable"
)

// Archive status labels track whether/where a dataset was sent for archival.
const (
	ArchiveStatusNotArchived = ""
	ArchiveStatusWithProduct = "With next release"
	ArchiveStatusSentPrefix  = "Sent to "
	ArchiveStatusSentArchive = "Sent to archive"
)

// IsExternalSend reports whether an archive status denotes sending the
// dataset to an external long-term archive.
func IsExternalSend(archiveStatus string) bool {
	return strings.HasPrefix(archiveStatus, ArchiveStatusSentPrefix)
}

// QC flag letters recorded with submission events.
const (
	FlagNew          = "N" // first-ever submission
	FlagUpdated      = "U" // resubmission after suspension/exclusion/rejection
	FlagSuspend      = "S"
	FlagExclude      = "X"
	FlagUnacceptable = "F"
)

// flagStatusMap resolves an override flag letter to the QC status it implies.
var flagStatusMap = map[string]string{
	FlagNew:          QCStatusSubmitted,
	FlagUpdated:      QCStatusSubmitted,
	FlagSuspend:      QCStatusSuspended,
	FlagExclude:      QCStatusExcluded,
	FlagUnacceptable: QCStatusUnacceptable,
}

// StatusForFlag returns the QC status implied by a flag letter.
func StatusForFlag(flag string) (string, error) {
	status, ok := flagStatusMap[flag]
	if !ok {
		return "", fmt.Errorf("unknown QC flag %q", flag)
	}
	return status, nil
}

// Sentinel values written for date/time fields that could not be derived
// from the engine's standardized timestamp.
const (
	IntMissingValue = -99
	FPMissingValue  = -1.0e+34
)
