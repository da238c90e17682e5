package submit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oceandata/cruisedash/internal/audit"
	"github.com/oceandata/cruisedash/internal/check"
	"github.com/oceandata/cruisedash/internal/dataset"
	"github.com/oceandata/cruisedash/internal/store"
)

// ----------------------------------------------------------------------------
// Fakes
// ----------------------------------------------------------------------------

type fakeStore struct {
	datasets map[string]*dataset.Dataset
	saved    map[string]*dataset.Dataset
	commits  []string
	saveErr  error
}

func newFakeStore(datasets ...*dataset.Dataset) *fakeStore {
	s := &fakeStore{
		datasets: make(map[string]*dataset.Dataset),
		saved:    make(map[string]*dataset.Dataset),
	}
	for _, ds := range datasets {
		s.datasets[ds.Expocode] = ds
	}
	return s
}

func (s *fakeStore) Load(ctx context.Context, expocode string) (*dataset.Dataset, error) {
	ds, ok := s.datasets[expocode]
	if !ok {
		return nil, store.ErrNotFound
	}
	// Hand out a copy, like a real store would.
	return ds.Clone(), nil
}

func (s *fakeStore) Save(ctx context.Context, ds *dataset.Dataset, commitMsg string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[ds.Expocode] = ds.Clone()
	s.datasets[ds.Expocode] = ds.Clone()
	s.commits = append(s.commits, commitMsg)
	return nil
}

func (s *fakeStore) History(ctx context.Context, expocode string) ([]store.HistoryEntry, error) {
	return nil, nil
}

// fakeChecker reproduces the pipeline's observable effects on the dataset:
// status, counts, and the appended date/time columns.
type fakeChecker struct {
	status      string
	numErrors   int
	processedOK bool
	geoposition bool
	appendCols  int
	flagRows    []int // rows flagged bad in column 0
	err         error
	calls       int
}

func (c *fakeChecker) Standardize(ctx context.Context, ds *dataset.Dataset) (*check.Result, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	ds.CheckStatus = c.status
	ds.NumErrors = c.numErrors
	for _, row := range c.flagRows {
		ds.WoceFour[0].Add(row)
	}
	for i := 0; i < c.appendCols; i++ {
		ds.AppendColumn(dataset.Hour, "Hour", "", "")
		for j := range ds.Rows {
			ds.Rows[j] = append(ds.Rows[j], "0")
		}
	}
	return &check.Result{
		Output:               &check.Output{ProcessedOK: c.processedOK},
		HadGeopositionErrors: c.geoposition,
	}, nil
}

type fakeEvents struct {
	events []audit.AppendParams
	err    error
}

func (e *fakeEvents) Append(ctx context.Context, params audit.AppendParams) (*audit.QCEvent, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.events = append(e.events, params)
	return &audit.QCEvent{Expocode: params.Expocode, Flag: params.Flag}, nil
}

type fakeReindexer struct {
	batches [][]string
}

func (r *fakeReindexer) Reindex(ctx context.Context, expocodes []string) error {
	r.batches = append(r.batches, expocodes)
	return nil
}

func okChecker() *fakeChecker {
	return &fakeChecker{
		status:      dataset.CheckStatusAcceptable,
		processedOK: true,
	}
}

func testDataset(expocode string) *dataset.Dataset {
	ds := dataset.New(expocode)
	ds.AppendColumn(dataset.Timestamp, "DateTime", "YYYY-MM-DD HH:MM:SS", "")
	ds.AppendColumn(dataset.Longitude, "Lon", "deg.E", "")
	ds.Rows = [][]string{
		{"2010-01-01 00:00:00", "10.0"},
		{"2010-01-01 01:00:00", "10.1"},
	}
	return ds
}

func newSubmitter(st *fakeStore, ch *fakeChecker, ev *fakeEvents, ri *fakeReindexer) *Submitter {
	return &Submitter{
		Datasets: st,
		Checker:  ch,
		Events:   ev,
		Reindex:  ri,
		Version:  "2.0",
	}
}

// ----------------------------------------------------------------------------
// Submission Tests
// ----------------------------------------------------------------------------

func TestSubmit_FirstSubmission(t *testing.T) {
	st := newFakeStore(testDataset("AAAA20100101"))
	ev := &fakeEvents{}
	ri := &fakeReindexer{}
	sub := newSubmitter(st, okChecker(), ev, ri)

	err := sub.Submit(context.Background(), Request{
		Expocodes: []string{"AAAA20100101"},
		Submitter: "jdoe",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	saved := st.saved["AAAA20100101"]
	if saved == nil {
		t.Fatal("dataset was not persisted")
	}
	if saved.QCStatus != dataset.QCStatusSubmitted {
		t.Errorf("QCStatus = %q, want %q", saved.QCStatus, dataset.QCStatusSubmitted)
	}
	if saved.Version != "2.0" {
		t.Errorf("Version = %q, want 2.0", saved.Version)
	}

	if len(ev.events) != 1 {
		t.Fatalf("events = %d, want 1", len(ev.events))
	}
	if ev.events[0].Flag != dataset.FlagNew {
		t.Errorf("flag = %q, want %q (first-ever submission)", ev.events[0].Flag, dataset.FlagNew)
	}

	if len(ri.batches) != 1 || len(ri.batches[0]) != 1 {
		t.Fatalf("reindex batches = %v, want one batch of one", ri.batches)
	}

	if len(st.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(st.commits))
	}
	msg := st.commits[0]
	for _, part := range []string{"AAAA20100101", "submit with QC flag 'N'", "by user 'jdoe'"} {
		if !strings.Contains(msg, part) {
			t.Errorf("commit message %q missing %q", msg, part)
		}
	}
}

func TestSubmit_ResubmissionUsesUpdateFlag(t *testing.T) {
	ds := testDataset("AAAA20100101")
	ds.QCStatus = dataset.QCStatusSuspended
	st := newFakeStore(ds)
	ev := &fakeEvents{}
	sub := newSubmitter(st, okChecker(), ev, &fakeReindexer{})

	if err := sub.Submit(context.Background(), Request{
		Expocodes: []string{"AAAA20100101"},
		Submitter: "jdoe",
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if ev.events[0].Flag != dataset.FlagUpdated {
		t.Errorf("flag = %q, want %q (resubmission)", ev.events[0].Flag, dataset.FlagUpdated)
	}
}

func TestSubmit_UnknownDataset(t *testing.T) {
	st := newFakeStore()
	sub := newSubmitter(st, okChecker(), &fakeEvents{}, &fakeReindexer{})

	err := sub.Submit(context.Background(), Request{
		Expocodes: []string{"MISSING"},
		Submitter: "jdoe",
	})
	if !errors.Is(err, ErrUnknownDataset) {
		t.Fatalf("Submit() error = %v, want ErrUnknownDataset", err)
	}
}

func TestSubmit_UnacceptableDataNoPartialPersist(t *testing.T) {
	// Scenario: qcStatus unacceptable, recheck still unacceptable, no
	// override. The submission fails and nothing is persisted.
	ds := testDataset("AAAA20100101")
	ds.QCStatus = dataset.QCStatusUnacceptable
	st := newFakeStore(ds)
	ch := &fakeChecker{status: dataset.CheckStatusUnacceptable, processedOK: false}
	ev := &fakeEvents{}
	ri := &fakeReindexer{}
	sub := newSubmitter(st, ch, ev, ri)

	err := sub.Submit(context.Background(), Request{
		Expocodes: []string{"AAAA20100101"},
		Submitter: "jdoe",
	})
	if !errors.Is(err, ErrUnacceptableData) {
		t.Fatalf("Submit() error = %v, want ErrUnacceptableData", err)
	}

	if len(st.saved) != 0 {
		t.Error("dataset was persisted despite the failure")
	}
	if st.datasets["AAAA20100101"].QCStatus != dataset.QCStatusUnacceptable {
		t.Error("stored QC status changed")
	}
	if len(ev.events) != 0 {
		t.Error("QC event recorded despite the failure")
	}
	if len(ri.batches) != 0 {
		t.Error("reindex notified despite the failure")
	}
}

func TestSubmit_GeopositionFailure(t *testing.T) {
	st := newFakeStore(testDataset("AAAA20100101"))
	ch := okChecker()
	ch.geoposition = true
	sub := newSubmitter(st, ch, &fakeEvents{}, &fakeReindexer{})

	err := sub.Submit(context.Background(), Request{
		Expocodes: []string{"AAAA20100101"},
		Submitter: "jdoe",
	})
	if !errors.Is(err, ErrGeopositionCheck) {
		t.Fatalf("Submit() error = %v, want ErrGeopositionCheck", err)
	}
	if len(st.saved) != 0 {
		t.Error("dataset was persisted despite the failure")
	}
}

func TestSubmit_OverrideFlagBypassesGates(t *testing.T) {
	ds := testDataset("AAAA20100101")
	ds.QCStatus = dataset.QCStatusExcluded
	st := newFakeStore(ds)
	ch := &fakeChecker{status: dataset.CheckStatusUnacceptable, processedOK: false, geoposition: true}
	ev := &fakeEvents{}
	sub := newSubmitter(st, ch, ev, &fakeReindexer{})

	err := sub.Submit(context.Background(), Request{
		Expocodes:    []string{"AAAA20100101"},
		Submitter:    "admin",
		OverrideFlag: dataset.FlagSuspend,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	saved := st.saved["AAAA20100101"]
	if saved.QCStatus != dataset.QCStatusSuspended {
		t.Errorf("QCStatus = %q, want %q", saved.QCStatus, dataset.QCStatusSuspended)
	}
	if ev.events[0].Flag != dataset.FlagSuspend {
		t.Errorf("flag = %q, want %q", ev.events[0].Flag, dataset.FlagSuspend)
	}
}

func TestSubmit_AlreadySubmittedNoOp(t *testing.T) {
	// Scenario: qcStatus already submitted and archive status unchanged.
	// Nothing runs and nothing is persisted.
	ds := testDataset("AAAA20100101")
	ds.QCStatus = dataset.QCStatusSubmitted
	ds.ArchiveStatus = dataset.ArchiveStatusWithProduct
	st := newFakeStore(ds)
	ch := okChecker()
	ri := &fakeReindexer{}
	sub := newSubmitter(st, ch, &fakeEvents{}, ri)

	err := sub.Submit(context.Background(), Request{
		Expocodes:     []string{"AAAA20100101"},
		ArchiveStatus: dataset.ArchiveStatusWithProduct,
		Submitter:     "jdoe",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if ch.calls != 0 {
		t.Error("checker ran for an already-submitted dataset")
	}
	if len(st.saved) != 0 {
		t.Error("no-op submission persisted the dataset")
	}
	if len(ri.batches) != 0 {
		t.Error("no-op submission notified the reindexer")
	}
}

func TestSubmit_ArchiveStatusOnly(t *testing.T) {
	ds := testDataset("AAAA20100101")
	ds.QCStatus = dataset.QCStatusSubmitted
	st := newFakeStore(ds)
	ri := &fakeReindexer{}
	sub := newSubmitter(st, okChecker(), &fakeEvents{}, ri)

	err := sub.Submit(context.Background(), Request{
		Expocodes:     []string{"AAAA20100101"},
		ArchiveStatus: dataset.ArchiveStatusWithProduct,
		Submitter:     "jdoe",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	saved := st.saved["AAAA20100101"]
	if saved.ArchiveStatus != dataset.ArchiveStatusWithProduct {
		t.Errorf("ArchiveStatus = %q, want %q", saved.ArchiveStatus, dataset.ArchiveStatusWithProduct)
	}
	// Archive-only changes do not trigger reindexing.
	if len(ri.batches) != 0 {
		t.Error("archive-only change notified the reindexer")
	}
	if !strings.Contains(st.commits[0], "archive status") {
		t.Errorf("commit message %q missing archive status", st.commits[0])
	}
}

func TestSubmit_ExternalSendDate(t *testing.T) {
	ds := testDataset("AAAA20100101")
	ds.QCStatus = dataset.QCStatusSubmitted
	st := newFakeStore(ds)
	sub := newSubmitter(st, okChecker(), &fakeEvents{}, &fakeReindexer{})

	err := sub.Submit(context.Background(), Request{
		Expocodes:      []string{"AAAA20100101"},
		ArchiveStatus:  dataset.ArchiveStatusSentArchive,
		LocalTimestamp: "2026-08-31 12:00",
		Submitter:      "jdoe",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	saved := st.saved["AAAA20100101"]
	if saved.ExternalArchiveDate != "2026-08-31 12:00" {
		t.Errorf("ExternalArchiveDate = %q, want the send timestamp", saved.ExternalArchiveDate)
	}

	// A second send without repeatSend leaves the original date.
	st.saved = map[string]*dataset.Dataset{}
	err = sub.Submit(context.Background(), Request{
		Expocodes:      []string{"AAAA20100101"},
		ArchiveStatus:  dataset.ArchiveStatusSentArchive,
		LocalTimestamp: "2026-09-15 09:00",
		Submitter:      "jdoe",
	})
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if len(st.saved) != 0 {
		t.Error("repeat submission without repeatSend persisted the dataset")
	}

	// With repeatSend the date advances.
	err = sub.Submit(context.Background(), Request{
		Expocodes:      []string{"AAAA20100101"},
		ArchiveStatus:  dataset.ArchiveStatusSentArchive,
		LocalTimestamp: "2026-09-15 09:00",
		RepeatSend:     true,
		Submitter:      "jdoe",
	})
	if err != nil {
		t.Fatalf("repeat Submit() error = %v", err)
	}
	if st.saved["AAAA20100101"].ExternalArchiveDate != "2026-09-15 09:00" {
		t.Errorf("ExternalArchiveDate = %q, want the new send timestamp",
			st.saved["AAAA20100101"].ExternalArchiveDate)
	}
}

func TestSubmit_DerivedColumnsTruncated(t *testing.T) {
	st := newFakeStore(testDataset("AAAA20100101"))
	ch := okChecker()
	ch.appendCols = 6
	sub := newSubmitter(st, ch, &fakeEvents{}, &fakeReindexer{})

	if err := sub.Submit(context.Background(), Request{
		Expocodes: []string{"AAAA20100101"},
		Submitter: "jdoe",
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	saved := st.saved["AAAA20100101"]
	if saved.NumColumns() != 2 {
		t.Errorf("NumColumns = %d, want 2 (derived columns truncated)", saved.NumColumns())
	}
	if err := saved.CheckShape(); err != nil {
		t.Errorf("CheckShape on persisted dataset: %v", err)
	}
}

func TestSubmit_DowngradeRecommendation(t *testing.T) {
	ds := testDataset("AAAA20100101")
	// Enough rows for the error-row count to exceed the threshold.
	ds.Rows = nil
	for i := 0; i < 60; i++ {
		ds.Rows = append(ds.Rows, []string{"2010-01-01 00:00:00", "10.0"})
	}
	st := newFakeStore(ds)
	ch := okChecker()
	ch.status = dataset.CheckStatusErrors(55)
	ch.numErrors = 55
	for i := 0; i < 55; i++ {
		ch.flagRows = append(ch.flagRows, i)
	}
	ev := &fakeEvents{}
	sub := newSubmitter(st, ch, ev, &fakeReindexer{})
	sub.MaxAcceptableErrors = 50

	if err := sub.Submit(context.Background(), Request{
		Expocodes: []string{"AAAA20100101"},
		Submitter: "jdoe",
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(ev.events) != 1 {
		t.Fatalf("events = %d, want 1", len(ev.events))
	}
	event := ev.events[0]
	if event.NumErrorRows != 55 {
		t.Errorf("NumErrorRows = %d, want 55", event.NumErrorRows)
	}
	if !strings.HasPrefix(event.Comment, "Recommend QC flag of F") {
		t.Errorf("comment %q missing downgrade recommendation", event.Comment)
	}
}

func TestSubmit_BatchCollectsFailures(t *testing.T) {
	good := testDataset("GOOD20100101")
	st := newFakeStore(good)
	ri := &fakeReindexer{}
	sub := newSubmitter(st, okChecker(), &fakeEvents{}, ri)

	err := sub.Submit(context.Background(), Request{
		Expocodes: []string{"MISSING1", "GOOD20100101", "MISSING2"},
		Submitter: "jdoe",
	})
	if !errors.Is(err, ErrUnknownDataset) {
		t.Fatalf("Submit() error = %v, want ErrUnknownDataset", err)
	}

	// The good dataset was still processed and reindexed once.
	if st.saved["GOOD20100101"] == nil {
		t.Error("good dataset not persisted")
	}
	if len(ri.batches) != 1 {
		t.Fatalf("reindex batches = %d, want 1", len(ri.batches))
	}
	if len(ri.batches[0]) != 1 || ri.batches[0][0] != "GOOD20100101" {
		t.Errorf("reindex batch = %v, want [GOOD20100101]", ri.batches[0])
	}
}

func TestSubmit_BatchedReindexSingleCall(t *testing.T) {
	a := testDataset("AAAA20100101")
	b := testDataset("BBBB20100101")
	st := newFakeStore(a, b)
	ri := &fakeReindexer{}
	sub := newSubmitter(st, okChecker(), &fakeEvents{}, ri)

	if err := sub.Submit(context.Background(), Request{
		Expocodes: []string{"AAAA20100101", "BBBB20100101"},
		Submitter: "jdoe",
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(ri.batches) != 1 {
		t.Fatalf("reindex batches = %d, want one batched call", len(ri.batches))
	}
	if len(ri.batches[0]) != 2 {
		t.Errorf("reindex batch = %v, want both expocodes", ri.batches[0])
	}
}
