package check

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oceandata/cruisedash/internal/dataset"
)

// AssignFlags rebuilds every WOCE flag collection of the dataset from the
// given diagnostic messages. This is a full recompute: all checker-assigned
// and user-asserted sets are cleared first, so running it twice with the
// same messages yields identical sets.
//
// An error message with a negative column number has an ambiguous source,
// most often a timestamp that failed to parse; the row is flagged in every
// date/time column in ambiguousColumns since each is a candidate cause.
// Over-flagging is preferred to under-flagging there. Only when no
// date/time columns exist does the row land in the no-column bucket.
func AssignFlags(ds *dataset.Dataset, msgs []Message, ambiguousColumns ColumnIndexSet) error {
	for _, set := range ds.WoceThree {
		set.Clear()
	}
	for _, set := range ds.WoceFour {
		set.Clear()
	}
	ds.NoColumnWoceThree.Clear()
	ds.NoColumnWoceFour.Clear()
	ds.UserWoceThree.Clear()
	ds.UserWoceFour.Clear()

	numRows := ds.NumRows()
	numCols := ds.NumColumns()
	for _, msg := range msgs {
		rowIdx := msg.RowNumber
		if rowIdx <= 0 || rowIdx > numRows {
			return fmt.Errorf("%w: row %d of %d rows (%s)", ErrRowIndexOutOfRange, msg.RowNumber, numRows, msg.Text)
		}
		rowIdx--

		colIdx := msg.ColumnNumber
		if colIdx == 0 {
			return fmt.Errorf("%w (%s)", ErrColumnIndexInvalid, msg.Text)
		}
		if colIdx > numCols {
			return fmt.Errorf("%w: column %d of %d columns (%s)", ErrColumnIndexOutOfRange, msg.ColumnNumber, numCols, msg.Text)
		}
		// Negative column numbers stay negative: ambiguous source.
		if colIdx > 0 {
			colIdx--
		}

		switch msg.Severity {
		case SeverityError:
			if colIdx < 0 {
				if len(ambiguousColumns) > 0 {
					for timeColIdx := range ambiguousColumns {
						ds.WoceFour[timeColIdx].Add(rowIdx)
					}
				} else {
					ds.NoColumnWoceFour.Add(rowIdx)
				}
			} else {
				ds.WoceFour[colIdx].Add(rowIdx)
			}
		case SeverityWarning:
			if colIdx < 0 {
				if len(ambiguousColumns) > 0 {
					for timeColIdx := range ambiguousColumns {
						ds.WoceThree[timeColIdx].Add(rowIdx)
					}
				} else {
					ds.NoColumnWoceThree.Add(rowIdx)
				}
			} else {
				ds.WoceThree[colIdx].Add(rowIdx)
			}
		default:
			return fmt.Errorf("%w: %q (%s)", ErrUnclassifiableSeverity, msg.Severity, msg.Text)
		}
	}

	assignUserFlags(ds)
	return nil
}

// assignUserFlags scans the dedicated WOCE flag columns for user-asserted
// flags. A cell parsing as 4 marks the row bad, 3 marks it questionable;
// anything else, including unparseable strings, is treated as absent.
func assignUserFlags(ds *dataset.Dataset) {
	for k, colType := range ds.ColumnTypes {
		if !colType.IsUserFlag() {
			continue
		}
		for rowIdx, row := range ds.Rows {
			value, err := strconv.Atoi(strings.TrimSpace(row[k]))
			if err != nil {
				// Assumed to be a missing value.
				continue
			}
			switch value {
			case 4:
				ds.UserWoceFour.Add(rowIdx)
			case 3:
				ds.UserWoceThree.Add(rowIdx)
			}
		}
	}
}
