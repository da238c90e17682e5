package check

import "errors"

// Named failures surfaced by the check pipeline. Callers discriminate with
// errors.Is; the wrapped message carries the dataset/column context.
var (
	// ErrUnassignedColumnType reports a column still typed as unknown.
	// Raised before the engine is ever invoked.
	ErrUnassignedColumnType = errors.New("data type not assigned for column")

	// ErrUnexpectedColumnType reports a column type missing from every
	// category table. It signals the type vocabulary drifted without this
	// mapping being updated, so it must never be caught and ignored.
	ErrUnexpectedColumnType = errors.New("unexpected data column type")

	// ErrCheckEngine wraps a failure of the external rule engine to
	// initialize or to accept the schema or data.
	ErrCheckEngine = errors.New("check engine failure")

	// ErrRowIndexOutOfRange reports a diagnostic message whose row number
	// is non-positive or beyond the dataset's row count.
	ErrRowIndexOutOfRange = errors.New("message row number out of range")

	// ErrColumnIndexInvalid reports a diagnostic message with column number
	// zero, which the message protocol never produces for valid input.
	ErrColumnIndexInvalid = errors.New("message column number is zero")

	// ErrColumnIndexOutOfRange reports a diagnostic message whose column
	// number exceeds the dataset's column count.
	ErrColumnIndexOutOfRange = errors.New("message column number out of range")

	// ErrUnclassifiableSeverity reports a message that is neither an error
	// nor a warning.
	ErrUnclassifiableSeverity = errors.New("message severity is neither error nor warning")

	// ErrRowCountMismatch reports standardized output whose row count does
	// not match the dataset.
	ErrRowCountMismatch = errors.New("standardized row count does not match dataset")

	// ErrStandardizedValueMissing reports a checked column for which the
	// engine returned no standardized value.
	ErrStandardizedValueMissing = errors.New("standardized value missing for checked column")
)
