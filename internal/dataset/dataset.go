package dataset

import (
	"fmt"
)

// Dataset is one cruise's measurement data and its workflow state. The
// aligned slices (ColumnTypes, UserColNames, ColumnUnits, MissingTokens,
// WoceThree, WoceFour) always have one entry per data column; every row in
// Rows has exactly that many cells.
type Dataset struct {
	// Expocode is the stable cruise/expedition identifier.
	Expocode string `json:"expocode"`

	// Owner is the username of the uploading user.
	Owner string `json:"owner,omitempty"`

	ColumnTypes   []ColumnType `json:"columnTypes"`
	UserColNames  []string     `json:"userColNames"`
	ColumnUnits   []string     `json:"columnUnits"`
	MissingTokens []string     `json:"missingTokens"`

	Rows [][]string `json:"rows"`

	// Checker-assigned flags, one row set per column.
	WoceThree []RowSet `json:"woceThree"`
	WoceFour  []RowSet `json:"woceFour"`

	// Checker-assigned flags not attributable to one column.
	NoColumnWoceThree RowSet `json:"noColumnWoceThree"`
	NoColumnWoceFour  RowSet `json:"noColumnWoceFour"`

	// User-asserted flags from dedicated WOCE flag columns.
	UserWoceThree RowSet `json:"userWoceThree"`
	UserWoceFour  RowSet `json:"userWoceFour"`

	CheckStatus string `json:"checkStatus"`
	NumErrors   int    `json:"numErrors"`   // error messages from the last check
	NumWarnings int    `json:"numWarnings"` // warning messages from the last check

	QCStatus      string `json:"qcStatus"`
	ArchiveStatus string `json:"archiveStatus"`

	// ExternalArchiveDate is the timestamp of the most recent send to an
	// external archive; empty if never sent.
	ExternalArchiveDate string `json:"externalArchiveDate,omitempty"`

	// Version is the data product version this dataset targets.
	Version string `json:"version,omitempty"`
}

// New creates an empty dataset for the given expocode with initialized
// flag collections.
func New(expocode string) *Dataset {
	return &Dataset{
		Expocode:          expocode,
		NoColumnWoceThree: NewRowSet(),
		NoColumnWoceFour:  NewRowSet(),
		UserWoceThree:     NewRowSet(),
		UserWoceFour:      NewRowSet(),
	}
}

// NumRows returns the number of data rows.
func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

// NumColumns returns the number of data columns.
func (d *Dataset) NumColumns() int {
	return len(d.ColumnTypes)
}

// AppendColumn adds one column to every aligned slice, including empty
// flag sets, keeping the column-count invariant. It does not touch Rows;
// callers appending a column must also append a cell to each row.
func (d *Dataset) AppendColumn(ct ColumnType, name, unit, missingToken string) {
	d.ColumnTypes = append(d.ColumnTypes, ct)
	d.UserColNames = append(d.UserColNames, name)
	d.ColumnUnits = append(d.ColumnUnits, unit)
	d.MissingTokens = append(d.MissingTokens, missingToken)
	d.WoceThree = append(d.WoceThree, NewRowSet())
	d.WoceFour = append(d.WoceFour, NewRowSet())
}

// TruncateColumns drops every column at index n or beyond from all aligned
// slices and from every row. Used to shed derived columns appended during
// standardization before the dataset is persisted.
func (d *Dataset) TruncateColumns(n int) {
	if n < 0 || n >= len(d.ColumnTypes) {
		return
	}
	d.ColumnTypes = d.ColumnTypes[:n]
	d.UserColNames = d.UserColNames[:n]
	d.ColumnUnits = d.ColumnUnits[:n]
	d.MissingTokens = d.MissingTokens[:n]
	d.WoceThree = d.WoceThree[:n]
	d.WoceFour = d.WoceFour[:n]
	for i, row := range d.Rows {
		if len(row) > n {
			d.Rows[i] = row[:n]
		}
	}
}

// CheckShape validates the column-alignment invariants.
func (d *Dataset) CheckShape() error {
	n := len(d.ColumnTypes)
	if len(d.UserColNames) != n || len(d.ColumnUnits) != n || len(d.MissingTokens) != n {
		return fmt.Errorf("dataset %s: column metadata misaligned (%d types, %d names, %d units, %d missing tokens)",
			d.Expocode, n, len(d.UserColNames), len(d.ColumnUnits), len(d.MissingTokens))
	}
	if len(d.WoceThree) != n || len(d.WoceFour) != n {
		return fmt.Errorf("dataset %s: flag collections misaligned (%d columns, %d WOCE-3 sets, %d WOCE-4 sets)",
			d.Expocode, n, len(d.WoceThree), len(d.WoceFour))
	}
	for i, row := range d.Rows {
		if len(row) != n {
			return fmt.Errorf("dataset %s: row %d has %d cells, want %d", d.Expocode, i, len(row), n)
		}
	}
	return nil
}

// NumErrorRows returns the number of distinct rows carrying any WOCE-4 flag
// from the checker.
func (d *Dataset) NumErrorRows() int {
	return distinctRows(d.WoceFour, d.NoColumnWoceFour)
}

// NumWarnRows returns the number of distinct rows carrying any WOCE-3 flag
// from the checker.
func (d *Dataset) NumWarnRows() int {
	return distinctRows(d.WoceThree, d.NoColumnWoceThree)
}

func distinctRows(byColumn []RowSet, noColumn RowSet) int {
	seen := NewRowSet()
	for _, set := range byColumn {
		for row := range set {
			seen.Add(row)
		}
	}
	for row := range noColumn {
		seen.Add(row)
	}
	return seen.Len()
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	c := *d
	c.ColumnTypes = append([]ColumnType(nil), d.ColumnTypes...)
	c.UserColNames = append([]string(nil), d.UserColNames...)
	c.ColumnUnits = append([]string(nil), d.ColumnUnits...)
	c.MissingTokens = append([]string(nil), d.MissingTokens...)
	c.Rows = make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	c.WoceThree = cloneRowSets(d.WoceThree)
	c.WoceFour = cloneRowSets(d.WoceFour)
	c.NoColumnWoceThree = cloneRowSet(d.NoColumnWoceThree)
	c.NoColumnWoceFour = cloneRowSet(d.NoColumnWoceFour)
	c.UserWoceThree = cloneRowSet(d.UserWoceThree)
	c.UserWoceFour = cloneRowSet(d.UserWoceFour)
	return &c
}

func cloneRowSet(s RowSet) RowSet {
	c := make(RowSet, len(s))
	for row := range s {
		c.Add(row)
	}
	return c
}

func cloneRowSets(sets []RowSet) []RowSet {
	c := make([]RowSet, len(sets))
	for i, s := range sets {
		c[i] = cloneRowSet(s)
	}
	return c
}
