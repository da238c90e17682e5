package check

import (
	"fmt"
	"sort"

	"github.com/oceandata/cruisedash/internal/dataset"
)

// DefaultDateFormat is used when no full-timestamp or date column selects
// a format from its declared unit.
const DefaultDateFormat = "YYYY-MM-DD"

// Timestamp element kinds in the schema document.
const (
	ElementSingleDateTime = "single_date_time"
	ElementDate           = "date"
	ElementYear           = "year"
	ElementMonth          = "month"
	ElementDay            = "day"
	ElementTime           = "time"
	ElementHour           = "hour"
	ElementMinute         = "minute"
	ElementSecond         = "second"
)

// timestampElementKinds maps each timestamp-part column type to its schema
// element kind.
var timestampElementKinds = map[dataset.ColumnType]string{
	dataset.Timestamp: ElementSingleDateTime,
	dataset.Date:      ElementDate,
	dataset.Year:      ElementYear,
	dataset.Month:     ElementMonth,
	dataset.Day:       ElementDay,
	dataset.Time:      ElementTime,
	dataset.Hour:      ElementHour,
	dataset.Minute:    ElementMinute,
	dataset.Second:    ElementSecond,
}

// ColumnSpec is the column-schema document consumed by the rule engine:
// measurement column nodes plus exactly one composite timestamp node.
type ColumnSpec struct {
	DatasetID string              `json:"datasetId"`
	Columns   []MeasurementColumn `json:"columns"`
	Timestamp TimestampSpec       `json:"timestamp"`
}

// MeasurementColumn describes one checked measurement column. Index is
// 1-based into the dataset's columns.
type MeasurementColumn struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	MissingValue string `json:"missingValue,omitempty"`
	CheckerName  string `json:"checkerName"`
}

// TimestampSpec aggregates the date/time sub-parts of the dataset.
type TimestampSpec struct {
	Elements []TimestampElement `json:"elements"`
}

// TimestampElement is one date/time part column. Index is 1-based.
type TimestampElement struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// ColumnIndexSet is a set of 0-based column indices.
type ColumnIndexSet map[int]struct{}

// Add inserts a column index.
func (s ColumnIndexSet) Add(col int) { s[col] = struct{}{} }

// Has reports membership.
func (s ColumnIndexSet) Has(col int) bool {
	_, ok := s[col]
	return ok
}

// Sorted returns the column indices in ascending order.
func (s ColumnIndexSet) Sorted() []int {
	cols := make([]int, 0, len(s))
	for c := range s {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

// SpecBuilder translates a dataset's column-type assignments into the rule
// engine's column schema. It is a pure function of its inputs; the unit
// vocabulary is fixed at construction so tests can substitute fixtures.
type SpecBuilder struct {
	vocab *dataset.Vocabulary
}

// NewSpecBuilder creates a builder over the given unit vocabulary.
func NewSpecBuilder(vocab *dataset.Vocabulary) *SpecBuilder {
	return &SpecBuilder{vocab: vocab}
}

// Build produces the schema document for the dataset, the set of 0-based
// column indices that can be the source of an ambiguous diagnostic (the
// date/time columns), and the active date format.
//
// Columns still typed unknown fail with ErrUnassignedColumnType before the
// engine is ever invoked. Column types outside the three categories fail
// with ErrUnexpectedColumnType: they mean the type vocabulary gained a type
// without this mapping being updated.
func (b *SpecBuilder) Build(ds *dataset.Dataset) (*ColumnSpec, ColumnIndexSet, string, error) {
	spec := &ColumnSpec{DatasetID: ds.Expocode}
	ambiguous := make(ColumnIndexSet)
	dateFormat := DefaultDateFormat

	for k, colType := range ds.ColumnTypes {
		label := ds.UserColNames[k]
		switch colType.Category() {
		case dataset.CategoryUnknown:
			if colType == dataset.Unknown {
				// Can happen when a multi-file upload left columns untyped.
				return nil, nil, "", fmt.Errorf("%w %d (%s)", ErrUnassignedColumnType, k+1, label)
			}
			return nil, nil, "", fmt.Errorf("%w %s for column %d (%s)", ErrUnexpectedColumnType, colType, k+1, label)

		case dataset.CategoryTimestampPart:
			spec.Timestamp.Elements = append(spec.Timestamp.Elements, TimestampElement{
				Kind:  timestampElementKinds[colType],
				Index: k + 1,
				Name:  label,
			})
			if colType == dataset.Timestamp || colType == dataset.Date {
				format, err := b.vocab.TranslateUnit(colType, ds.ColumnUnits[k])
				if err != nil {
					return nil, nil, "", fmt.Errorf("column %d (%s): %w", k+1, label, err)
				}
				dateFormat = format
			}
			ambiguous.Add(k)

		case dataset.CategoryChecked:
			checkerName, ok := b.vocab.CheckerName(colType)
			if !ok {
				return nil, nil, "", fmt.Errorf("%w %s for column %d (%s)", ErrUnexpectedColumnType, colType, k+1, label)
			}
			unit, err := b.vocab.TranslateUnit(colType, ds.ColumnUnits[k])
			if err != nil {
				return nil, nil, "", fmt.Errorf("column %d (%s): %w", k+1, label, err)
			}
			col := MeasurementColumn{
				Index:       k + 1,
				Name:        label,
				Unit:        unit,
				CheckerName: checkerName,
			}
			if token := ds.MissingTokens[k]; token != "" {
				col.MissingValue = token
			}
			spec.Columns = append(spec.Columns, col)

		case dataset.CategoryExcluded:
			// Derived quantities, identifiers, region tags, and WOCE flag
			// columns are never sent to the engine.

		default:
			return nil, nil, "", fmt.Errorf("%w %s for column %d (%s)", ErrUnexpectedColumnType, colType, k+1, label)
		}
	}

	return spec, ambiguous, dateFormat, nil
}
