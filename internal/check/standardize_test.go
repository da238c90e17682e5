package check

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/oceandata/cruisedash/internal/dataset"
)

func f64(v float64) *float64 { return &v }

func ts(year, month, day, hour, min, sec int) *time.Time {
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	return &t
}

// standardizedOutput builds an engine output with one record per dataset
// row, all fields derivable.
func standardizedOutput(ds *dataset.Dataset) *Output {
	out := &Output{ProcessedOK: true}
	for i := range ds.Rows {
		out.Records = append(out.Records, Record{
			Longitude: f64(10.0 + float64(i)/10),
			Latitude:  f64(-60.0),
			Time:      ts(2010, 1, 1, i, 30, 15),
			Values:    map[string]string{},
		})
	}
	return out
}

// ----------------------------------------------------------------------------
// Standardize Tests
// ----------------------------------------------------------------------------

func TestStandardize_AppendsDateTimeColumns(t *testing.T) {
	ds := scenarioDataset()
	origCols := ds.NumColumns()
	out := standardizedOutput(ds)

	if err := Standardize(ds, out, dataset.DefaultVocabulary()); err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}

	// Year, month, day, hour, minute, second appended.
	if ds.NumColumns() != origCols+6 {
		t.Fatalf("NumColumns = %d, want %d", ds.NumColumns(), origCols+6)
	}
	if err := ds.CheckShape(); err != nil {
		t.Fatalf("CheckShape: %v", err)
	}
	if len(ds.WoceThree) != ds.NumColumns() || len(ds.WoceFour) != ds.NumColumns() {
		t.Error("flag collections not aligned with appended columns")
	}

	// Row 2's record has hour 2, minute 30, second 15.
	row := ds.Rows[2]
	got := row[origCols:]
	want := []string{"2010", "1", "1", "2", "30", "15"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("appended field %d = %q, want %q", i, got[i], want[i])
		}
	}

	// Longitude overwritten with the standardized value.
	if row[1] != "10.2" {
		t.Errorf("standardized longitude = %q, want 10.2", row[1])
	}
	// Timestamp column untouched.
	if row[0] != "2010-01-01 02:00:00" {
		t.Errorf("timestamp cell modified: %q", row[0])
	}
}

func TestStandardize_MissingTimestampUsesSentinels(t *testing.T) {
	ds := scenarioDataset()
	origCols := ds.NumColumns()
	out := standardizedOutput(ds)
	// The engine could not derive row 1's timestamp.
	out.Records[1].Time = nil

	if err := Standardize(ds, out, dataset.DefaultVocabulary()); err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}

	intSentinel := strconv.Itoa(dataset.IntMissingValue)
	fpSentinel := strconv.FormatFloat(dataset.FPMissingValue, 'g', -1, 64)
	got := ds.Rows[1][origCols:]
	want := []string{intSentinel, intSentinel, intSentinel, intSentinel, intSentinel, fpSentinel}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentinel field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStandardize_ExistingDateTimeColumnsKept(t *testing.T) {
	ds := dataset.New("ZZZZ20100101")
	ds.AppendColumn(dataset.Year, "yr", "", "")
	ds.AppendColumn(dataset.Month, "mon", "", "")
	ds.AppendColumn(dataset.Day, "day", "", "")
	ds.AppendColumn(dataset.Hour, "hr", "", "")
	ds.AppendColumn(dataset.Minute, "min", "", "")
	ds.AppendColumn(dataset.Second, "sec", "", "")
	ds.Rows = [][]string{{"2010", "1", "1", "12", "00", "00"}}
	out := standardizedOutput(ds)

	if err := Standardize(ds, out, dataset.DefaultVocabulary()); err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}

	if ds.NumColumns() != 6 {
		t.Errorf("NumColumns = %d, want 6 (no columns appended)", ds.NumColumns())
	}
	// Original user values untouched even though the record says otherwise.
	if ds.Rows[0][3] != "12" {
		t.Errorf("hour cell = %q, want original 12", ds.Rows[0][3])
	}
}

func TestStandardize_ValuesByCheckerName(t *testing.T) {
	ds := scenarioDataset()
	ds.AppendColumn(dataset.Salinity, "Sal", "PSU", "")
	for i := range ds.Rows {
		ds.Rows[i] = append(ds.Rows[i], "raw")
	}
	out := standardizedOutput(ds)
	for i := range out.Records {
		out.Records[i].Values["sal"] = "35.5"
	}

	if err := Standardize(ds, out, dataset.DefaultVocabulary()); err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}
	for i := range ds.Rows {
		if ds.Rows[i][2] != "35.5" {
			t.Errorf("row %d salinity = %q, want 35.5", i, ds.Rows[i][2])
		}
	}
}

func TestStandardize_MissingValueLookup(t *testing.T) {
	ds := scenarioDataset()
	ds.AppendColumn(dataset.Salinity, "Sal", "PSU", "")
	for i := range ds.Rows {
		ds.Rows[i] = append(ds.Rows[i], "35.0")
	}
	out := standardizedOutput(ds)
	// Records carry no "sal" entry.

	err := Standardize(ds, out, dataset.DefaultVocabulary())
	if !errors.Is(err, ErrStandardizedValueMissing) {
		t.Fatalf("Standardize() error = %v, want ErrStandardizedValueMissing", err)
	}
}

func TestStandardize_RowCountMismatch(t *testing.T) {
	ds := scenarioDataset()
	out := standardizedOutput(ds)
	out.Records = out.Records[:3]

	err := Standardize(ds, out, dataset.DefaultVocabulary())
	if !errors.Is(err, ErrRowCountMismatch) {
		t.Fatalf("Standardize() error = %v, want ErrRowCountMismatch", err)
	}
}

func TestStandardize_NilCoordinateIsNaN(t *testing.T) {
	ds := scenarioDataset()
	out := standardizedOutput(ds)
	out.Records[4].Longitude = nil

	if err := Standardize(ds, out, dataset.DefaultVocabulary()); err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}
	if ds.Rows[4][1] != "NaN" {
		t.Errorf("longitude cell = %q, want NaN", ds.Rows[4][1])
	}
}
