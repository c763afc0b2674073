package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/mwac-vis/internal/adapter/export"
	"github.com/couchcryptid/mwac-vis/internal/chart"
	"github.com/couchcryptid/mwac-vis/internal/domain"
	"github.com/couchcryptid/mwac-vis/internal/pipeline"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type tableResponse struct {
	Source          string    `json:"source"`
	Version         uint64    `json:"version"`
	LoadedAt        time.Time `json:"loaded_at"`
	SeasonStartYear int       `json:"season_start_year"`
	Columns         []string  `json:"columns"`
	Rows            [][]any   `json:"rows"`
}

type windPoint struct {
	Row    int      `json:"row"`
	Date   *string  `json:"date"`
	Series string   `json:"series"`
	Speed  *float64 `json:"speed"`
}

type issuesResponse struct {
	Total  int                      `json:"total"`
	Counts map[domain.IssueKind]int `json:"counts"`
	Issues []domain.RowIssue        `json:"issues"`
}

func (s *Server) handleTable(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	writeJSON(w, http.StatusOK, tableResponse{
		Source:          snap.Source,
		Version:         snap.Version,
		LoadedAt:        snap.LoadedAt,
		SeasonStartYear: snap.Table.SeasonStartYear,
		Columns:         snap.Table.WideColumns(),
		Rows:            snap.Table.WideRecords(),
	})
}

func (s *Server) handleWind(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	points := make([]windPoint, len(snap.Table.Wind))
	for i, p := range snap.Table.Wind {
		points[i] = windPoint{Row: p.Row, Series: p.Series, Speed: p.Speed}
		if p.Date != nil {
			d := p.Date.Format(domain.DateLayout)
			points[i].Date = &d
		}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleIssues(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	counts := snap.Table.IssueCounts()
	for _, kind := range domain.IssueKinds {
		if _, ok := counts[kind]; !ok {
			counts[kind] = 0
		}
	}
	issues := snap.Table.Issues
	if issues == nil {
		issues = []domain.RowIssue{}
	}
	writeJSON(w, http.StatusOK, issuesResponse{
		Total:  len(issues),
		Counts: counts,
		Issues: issues,
	})
}

func (s *Server) handleWindChart(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	writeJSON(w, http.StatusOK, chart.WindSpeedSpec(snap.Table))
}

func (s *Server) handleSnowChart(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	writeJSON(w, http.StatusOK, chart.SnowTotalsSpec(snap.Table))
}

func (s *Server) handleExportTableCSV(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	s.writeExport(w, snap, "text/csv; charset=utf-8", "mwac-table.csv", func(out io.Writer) error {
		return export.WriteCSV(out, snap.Table)
	})
}

func (s *Server) handleExportWindCSV(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	s.writeExport(w, snap, "text/csv; charset=utf-8", "mwac-wind.csv", func(out io.Writer) error {
		return export.WriteLongCSV(out, snap.Table)
	})
}

func (s *Server) handleExportTableXLSX(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	s.writeExport(w, snap, contentTypeXLSX, "mwac-table.xlsx", func(out io.Writer) error {
		return export.WriteXLSX(out, snap.Table)
	})
}

// writeExport serves the rendered file for the snapshot version, rendering it
// on first request. A render error becomes a 500 before any body bytes are sent.
func (s *Server) writeExport(w http.ResponseWriter, snap *pipeline.Snapshot, contentType, filename string, render func(io.Writer) error) {
	key := cacheKey(filename, snap.Version)
	data, ok := s.exports.get(key)
	if !ok {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			s.logger.Error("export failed", "file", filename, "version", snap.Version, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
			return
		}
		data = buf.Bytes()
		s.exports.put(key, data)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("export write interrupted", "file", filename, "error", err)
	}
}
