package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oceandata/cruisedash/internal/audit"
	"github.com/oceandata/cruisedash/internal/logging"
	"github.com/oceandata/cruisedash/internal/submit"
)

// handleHealthz reports service liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetDataset returns the stored dataset for an expocode.
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	expocode := chi.URLParam(r, "expocode")
	if expocode == "" {
		respondErrorMessage(w, http.StatusBadRequest, "expocode is required")
		return
	}

	ds, err := s.datasets.Load(r.Context(), expocode)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// handleDatasetHistory returns the recorded change history for a dataset,
// oldest first.
func (s *Server) handleDatasetHistory(w http.ResponseWriter, r *http.Request) {
	expocode := chi.URLParam(r, "expocode")

	entries, err := s.datasets.History(r.Context(), expocode)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expocode": expocode,
		"history":  entries,
	})
}

// checkRequest is the optional body for a standalone check run.
type checkRequest struct {
	Username string `json:"username"`
}

// checkResponse summarizes a standalone check run.
type checkResponse struct {
	Expocode    string `json:"expocode"`
	CheckStatus string `json:"checkStatus"`
	NumErrors   int    `json:"numErrors"`
	NumWarnings int    `json:"numWarnings"`
	ErrorRows   int    `json:"errorRows"`
	WarningRows int    `json:"warningRows"`
	Geoposition bool   `json:"geopositionErrors"`
}

// handleCheckDataset runs the automated data check on a dataset and persists
// the recomputed flags and status. The dataset's row data is not modified.
func (s *Server) handleCheckDataset(w http.ResponseWriter, r *http.Request) {
	expocode := chi.URLParam(r, "expocode")
	logger := logging.WithFields(r.Context(), "expocode", expocode)

	var req checkRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	username := req.Username
	if username == "" {
		username = audit.CheckerUsername
	}

	ds, err := s.datasets.Load(r.Context(), expocode)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.checker.Check(r.Context(), ds)
	if err != nil {
		respondError(w, r, err)
		return
	}

	commitMsg := "Automated data check of " + expocode + " run by user '" + username + "'"
	if err := s.datasets.Save(r.Context(), ds, commitMsg); err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info("data check completed",
		"status", ds.CheckStatus,
		"errors", ds.NumErrors,
		"warnings", ds.NumWarnings,
	)
	writeJSON(w, http.StatusOK, checkResponse{
		Expocode:    expocode,
		CheckStatus: ds.CheckStatus,
		NumErrors:   ds.NumErrors,
		NumWarnings: ds.NumWarnings,
		ErrorRows:   ds.NumErrorRows(),
		WarningRows: ds.NumWarnRows(),
		Geoposition: res.HadGeopositionErrors,
	})
}

// submitRequest is the body for a submission batch.
type submitRequest struct {
	Expocodes      []string `json:"expocodes"`
	ArchiveStatus  string   `json:"archiveStatus"`
	LocalTimestamp string   `json:"localTimestamp"`
	RepeatSend     bool     `json:"repeatSend"`
	Submitter      string   `json:"submitter"`
	OverrideFlag   string   `json:"overrideFlag"`
}

// handleSubmit processes a submission batch.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var expocodes []string
	for _, e := range req.Expocodes {
		if e = strings.TrimSpace(e); e != "" {
			expocodes = append(expocodes, e)
		}
	}
	if len(expocodes) == 0 {
		respondErrorMessage(w, http.StatusBadRequest, "expocodes is required")
		return
	}
	if req.Submitter == "" {
		respondErrorMessage(w, http.StatusBadRequest, "submitter is required")
		return
	}

	err := s.submitter.Submit(r.Context(), submit.Request{
		Expocodes:      expocodes,
		ArchiveStatus:  req.ArchiveStatus,
		LocalTimestamp: req.LocalTimestamp,
		RepeatSend:     req.RepeatSend,
		Submitter:      req.Submitter,
		OverrideFlag:   req.OverrideFlag,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"submitted": expocodes,
	})
}

// handleQCEvents returns the QC event trail for a dataset.
func (s *Server) handleQCEvents(w http.ResponseWriter, r *http.Request) {
	expocode := chi.URLParam(r, "expocode")

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	events, err := s.events.ListByExpocode(r.Context(), expocode, limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}
	total, err := s.events.Count(r.Context(), expocode)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expocode": expocode,
		"events":   events,
		"total":    total,
	})
}

// queryInt parses an integer query parameter, returning def when absent
// or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
