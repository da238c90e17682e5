package check

import (
	"errors"
	"testing"

	"github.com/oceandata/cruisedash/internal/dataset"
)

func emptySet() ColumnIndexSet { return make(ColumnIndexSet) }

func assertOnlyFlagged(t *testing.T, ds *dataset.Dataset, sets []dataset.RowSet, flagged map[int][]int) {
	t.Helper()
	for col, set := range sets {
		want := flagged[col]
		if len(want) == 0 {
			if set.Len() != 0 {
				t.Errorf("column %d flagged rows = %v, want none", col, set.Sorted())
			}
			continue
		}
		wantSet := dataset.NewRowSet(want...)
		if !set.Equal(wantSet) {
			t.Errorf("column %d flagged rows = %v, want %v", col, set.Sorted(), want)
		}
	}
}

// ----------------------------------------------------------------------------
// Flag Assignment Tests
// ----------------------------------------------------------------------------

func TestAssignFlags_ErrorAtColumn(t *testing.T) {
	// One error at row 3, column 2 (1-based): exactly row index 2 flagged
	// bad in column index 1.
	ds := scenarioDataset()
	msgs := []Message{
		{RowNumber: 3, ColumnNumber: 2, Severity: SeverityError, Text: "longitude out of range"},
	}

	if err := AssignFlags(ds, msgs, emptySet()); err != nil {
		t.Fatalf("AssignFlags() error = %v", err)
	}

	assertOnlyFlagged(t, ds, ds.WoceFour, map[int][]int{1: {2}})
	assertOnlyFlagged(t, ds, ds.WoceThree, nil)
	if ds.NoColumnWoceFour.Len() != 0 || ds.NoColumnWoceThree.Len() != 0 {
		t.Error("no-column buckets should be empty")
	}
}

func TestAssignFlags_AmbiguousWarningFansOut(t *testing.T) {
	// A warning at row 2 with negative column number fans out to the
	// date/time columns, not the no-column bucket.
	ds := scenarioDataset()
	ambiguous := emptySet()
	ambiguous.Add(0)
	msgs := []Message{
		{RowNumber: 2, ColumnNumber: -1, Severity: SeverityWarning, Text: "questionable timestamp"},
	}

	if err := AssignFlags(ds, msgs, ambiguous); err != nil {
		t.Fatalf("AssignFlags() error = %v", err)
	}

	assertOnlyFlagged(t, ds, ds.WoceThree, map[int][]int{0: {1}})
	if ds.NoColumnWoceThree.Len() != 0 {
		t.Errorf("NoColumnWoceThree = %v, want empty", ds.NoColumnWoceThree.Sorted())
	}
}

func TestAssignFlags_AmbiguousErrorAllCandidates(t *testing.T) {
	ds := dataset.New("ZZZZ20100101")
	ds.AppendColumn(dataset.Year, "yr", "", "")
	ds.AppendColumn(dataset.Month, "mon", "", "")
	ds.AppendColumn(dataset.Longitude, "lon", "deg.E", "")
	ds.Rows = [][]string{{"2010", "13", "10.0"}}

	ambiguous := emptySet()
	ambiguous.Add(0)
	ambiguous.Add(1)
	msgs := []Message{
		{RowNumber: 1, ColumnNumber: -1, Severity: SeverityError, Text: "invalid date"},
	}

	if err := AssignFlags(ds, msgs, ambiguous); err != nil {
		t.Fatalf("AssignFlags() error = %v", err)
	}

	// Every date/time column flags the row; the measurement column does not.
	assertOnlyFlagged(t, ds, ds.WoceFour, map[int][]int{0: {0}, 1: {0}})
}

func TestAssignFlags_NoAmbiguousColumnsFallsBack(t *testing.T) {
	ds := scenarioDataset()
	msgs := []Message{
		{RowNumber: 4, ColumnNumber: -1, Severity: SeverityError, Text: "row failed"},
	}

	if err := AssignFlags(ds, msgs, emptySet()); err != nil {
		t.Fatalf("AssignFlags() error = %v", err)
	}

	assertOnlyFlagged(t, ds, ds.WoceFour, nil)
	if !ds.NoColumnWoceFour.Equal(dataset.NewRowSet(3)) {
		t.Errorf("NoColumnWoceFour = %v, want [3]", ds.NoColumnWoceFour.Sorted())
	}
}

func TestAssignFlags_FullRecomputeIdempotent(t *testing.T) {
	ds := scenarioDataset()
	ambiguous := emptySet()
	ambiguous.Add(0)
	msgs := []Message{
		{RowNumber: 1, ColumnNumber: 2, Severity: SeverityError, Text: "bad longitude"},
		{RowNumber: 2, ColumnNumber: -1, Severity: SeverityWarning, Text: "odd timestamp"},
	}

	if err := AssignFlags(ds, msgs, ambiguous); err != nil {
		t.Fatalf("first AssignFlags() error = %v", err)
	}
	// Pollute with stale state, then recompute.
	ds.WoceFour[0].Add(4)
	ds.NoColumnWoceThree.Add(4)
	ds.UserWoceFour.Add(4)

	if err := AssignFlags(ds, msgs, ambiguous); err != nil {
		t.Fatalf("second AssignFlags() error = %v", err)
	}

	assertOnlyFlagged(t, ds, ds.WoceFour, map[int][]int{1: {0}})
	assertOnlyFlagged(t, ds, ds.WoceThree, map[int][]int{0: {1}})
	if ds.NoColumnWoceThree.Len() != 0 || ds.UserWoceFour.Len() != 0 {
		t.Error("stale entries survived the recompute")
	}
}

func TestAssignFlags_MessageRangeErrors(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{
			name:    "row number zero",
			msg:     Message{RowNumber: 0, ColumnNumber: 1, Severity: SeverityError},
			wantErr: ErrRowIndexOutOfRange,
		},
		{
			name:    "row number beyond data",
			msg:     Message{RowNumber: 6, ColumnNumber: 1, Severity: SeverityError},
			wantErr: ErrRowIndexOutOfRange,
		},
		{
			name:    "column number zero",
			msg:     Message{RowNumber: 1, ColumnNumber: 0, Severity: SeverityError},
			wantErr: ErrColumnIndexInvalid,
		},
		{
			name:    "column number beyond data",
			msg:     Message{RowNumber: 1, ColumnNumber: 3, Severity: SeverityError},
			wantErr: ErrColumnIndexOutOfRange,
		},
		{
			name:    "unclassifiable severity",
			msg:     Message{RowNumber: 1, ColumnNumber: 1, Severity: "info"},
			wantErr: ErrUnclassifiableSeverity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := scenarioDataset()
			err := AssignFlags(ds, []Message{tt.msg}, emptySet())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AssignFlags() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// User Flag Tests
// ----------------------------------------------------------------------------

func TestAssignFlags_UserWoceColumns(t *testing.T) {
	ds := dataset.New("ZZZZ20100101")
	ds.AppendColumn(dataset.Longitude, "lon", "deg.E", "")
	ds.AppendColumn(dataset.WoceCO2Water, "WOCE", "", "")
	ds.Rows = [][]string{
		{"10.0", "2"},
		{"10.1", " 3 "},  // whitespace around a valid flag
		{"10.2", "4"},
		{"10.3", ""},     // missing
		{"10.4", "bad"},  // unparseable, treated as missing
		{"10.5", "3"},
	}

	if err := AssignFlags(ds, nil, emptySet()); err != nil {
		t.Fatalf("AssignFlags() error = %v", err)
	}

	if !ds.UserWoceThree.Equal(dataset.NewRowSet(1, 5)) {
		t.Errorf("UserWoceThree = %v, want [1 5]", ds.UserWoceThree.Sorted())
	}
	if !ds.UserWoceFour.Equal(dataset.NewRowSet(2)) {
		t.Errorf("UserWoceFour = %v, want [2]", ds.UserWoceFour.Sorted())
	}
}
