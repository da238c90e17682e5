// Package check drives the automated data-quality pipeline: it translates a
// dataset's column-type assignments into the rule engine's column schema,
// invokes the engine, interprets the per-cell diagnostic messages into
// dataset-level WOCE flags, and backfills standardized values.
//
// The rule engine itself is an external collaborator reached through the
// Engine interface; this package never reimplements its per-variable
// validation rules.
package check

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Severity classifies a diagnostic message.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Message is one per-cell diagnostic from the rule engine. RowNumber is
// 1-based. ColumnNumber is 1-based; zero is invalid and negative values mark
// an ambiguous source (most often a timestamp that failed to parse, where
// any of the contributing date/time columns could be at fault).
type Message struct {
	RowNumber    int      `json:"rowNumber"`
	ColumnNumber int      `json:"columnNumber"`
	Severity     Severity `json:"severity"`
	Text         string   `json:"text"`
}

// Record is one standardized (unit-normalized) row from the engine. Position
// and timestamp are nil when the engine could not derive them; Values holds
// the normalized cell values keyed by the engine's column names.
type Record struct {
	Longitude *float64          `json:"longitude"`
	Latitude  *float64          `json:"latitude"`
	Time      *time.Time        `json:"time"`
	Values    map[string]string `json:"values"`
}

// Timestamp returns the standardized timestamp, reporting whether the
// engine was able to derive one.
func (r *Record) Timestamp() (time.Time, bool) {
	if r.Time == nil || r.Time.IsZero() {
		return time.Time{}, false
	}
	return *r.Time, true
}

// HasPosition reports whether the engine derived a usable longitude and
// latitude for this row.
func (r *Record) HasPosition() bool {
	return r.Longitude != nil && r.Latitude != nil
}

// Request is the full input handed to the rule engine for one dataset.
type Request struct {
	DatasetID  string      `json:"datasetId"`
	DateFormat string      `json:"dateFormat"`
	Spec       *ColumnSpec `json:"spec"`
	Rows       [][]string  `json:"rows"`
}

// Output is everything the rule engine reports for one run. When ProcessedOK
// is true, Records holds exactly one standardized record per input row.
type Output struct {
	ProcessedOK bool      `json:"processedOk"`
	Messages    []Message `json:"messages"`
	Records     []Record  `json:"records"`
}

// HasErrors reports whether any message has error severity.
func (o *Output) HasErrors() bool {
	for i := range o.Messages {
		if o.Messages[i].Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any message has warning severity.
func (o *Output) HasWarnings() bool {
	for i := range o.Messages {
		if o.Messages[i].Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Engine is the external rule engine boundary. Implementations must be
// deterministic for identical inputs. Calls are synchronous with no internal
// retry; callers needing bounded latency cancel through the context.
type Engine interface {
	Check(ctx context.Context, req *Request) (*Output, error)
}

// HTTPEngine reaches a rule engine service over HTTP. The request is POSTed
// as JSON to baseURL/check and the response decoded into an Output.
type HTTPEngine struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEngine creates an engine adapter for the service at baseURL.
// A zero timeout disables the client-side limit.
func NewHTTPEngine(baseURL string, timeout time.Duration) *HTTPEngine {
	return &HTTPEngine{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Check submits the dataset to the engine service.
func (e *HTTPEngine) Check(ctx context.Context, req *Request) (*Output, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode engine request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/check", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build engine request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("engine request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("engine returned %d: %s", resp.StatusCode, string(snippet))
	}

	var out Output
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}
	return &out, nil
}
