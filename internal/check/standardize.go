package check

import (
	"fmt"
	"strconv"

	"github.com/oceandata/cruisedash/internal/dataset"
)

// dateTimeBackfill describes one of the separate date/time columns that
// standardized data must carry, in append order.
type dateTimeBackfill struct {
	colType      dataset.ColumnType
	label        string
	missingToken string
}

var dateTimeBackfills = []dateTimeBackfill{
	{dataset.Year, "Year", strconv.Itoa(dataset.IntMissingValue)},
	{dataset.Month, "Month", strconv.Itoa(dataset.IntMissingValue)},
	{dataset.Day, "Day", strconv.Itoa(dataset.IntMissingValue)},
	{dataset.Hour, "Hour", strconv.Itoa(dataset.IntMissingValue)},
	{dataset.Minute, "Minute", strconv.Itoa(dataset.IntMissingValue)},
	{dataset.Second, "Second", strconv.FormatFloat(dataset.FPMissingValue, 'g', -1, 64)},
}

// Standardize rewrites the dataset with the engine's standardized output.
// Separate year, month, day, hour, minute, and second columns are appended
// when absent, backfilled per row from the standardized timestamp; fields
// already present in the original data are left untouched. Rows whose
// timestamp the engine could not derive get the designated missing-value
// sentinel rather than failing the whole row. Checked measurement columns
// are then overwritten with the engine's unit-normalized values, looked up
// by the vocabulary's checker name for the column type.
func Standardize(ds *dataset.Dataset, out *Output, vocab *dataset.Vocabulary) error {
	if len(out.Records) != ds.NumRows() {
		return fmt.Errorf("%w: %d standardized rows for %d data rows", ErrRowCountMismatch, len(out.Records), ds.NumRows())
	}

	present := make(map[dataset.ColumnType]bool, len(dateTimeBackfills))
	for _, colType := range ds.ColumnTypes {
		switch colType {
		case dataset.Year, dataset.Month, dataset.Day, dataset.Hour, dataset.Minute, dataset.Second:
			present[colType] = true
		}
	}

	var missing []dateTimeBackfill
	for _, bf := range dateTimeBackfills {
		if !present[bf.colType] {
			missing = append(missing, bf)
		}
	}

	if len(missing) > 0 {
		for _, bf := range missing {
			ds.AppendColumn(bf.colType, bf.label, "", bf.missingToken)
		}
		for i := range ds.Rows {
			fields := dateTimeFields(&out.Records[i])
			for _, bf := range missing {
				value, ok := fields[bf.colType]
				if !ok {
					value = bf.missingToken
				}
				ds.Rows[i] = append(ds.Rows[i], value)
			}
		}
	}

	for i := range ds.Rows {
		rec := &out.Records[i]
		for k, colType := range ds.ColumnTypes {
			switch colType.Category() {
			case dataset.CategoryTimestampPart:
				// Date/time columns were handled by the backfill above.
			case dataset.CategoryExcluded:
				// Not checked, so not changed.
			case dataset.CategoryChecked:
				switch colType {
				case dataset.Longitude:
					ds.Rows[i][k] = formatCoordinate(rec.Longitude)
				case dataset.Latitude:
					ds.Rows[i][k] = formatCoordinate(rec.Latitude)
				default:
					checkerName, _ := vocab.CheckerName(colType)
					value, ok := rec.Values[checkerName]
					if !ok {
						return fmt.Errorf("%w: %s (column %d, type %s)", ErrStandardizedValueMissing, checkerName, k+1, colType)
					}
					ds.Rows[i][k] = value
				}
			default:
				return fmt.Errorf("%w %s for column %d (%s)", ErrUnexpectedColumnType, colType, k+1, ds.UserColNames[k])
			}
		}
	}

	return ds.CheckShape()
}

// dateTimeFields extracts the standardized timestamp into per-field string
// values. An empty map means the engine could not derive the timestamp.
func dateTimeFields(rec *Record) map[dataset.ColumnType]string {
	ts, ok := rec.Timestamp()
	if !ok {
		return nil
	}
	second := float64(ts.Second()) + float64(ts.Nanosecond())/1e9
	return map[dataset.ColumnType]string{
		dataset.Year:   strconv.Itoa(ts.Year()),
		dataset.Month:  strconv.Itoa(int(ts.Month())),
		dataset.Day:    strconv.Itoa(ts.Day()),
		dataset.Hour:   strconv.Itoa(ts.Hour()),
		dataset.Minute: strconv.Itoa(ts.Minute()),
		dataset.Second: strconv.FormatFloat(second, 'g', -1, 64),
	}
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
