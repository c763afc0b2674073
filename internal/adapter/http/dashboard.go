package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/mwac-vis/internal/domain"
)

const dashboardTitle = "MWAC Snowpack Dashboard"

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTmpl = template.Must(parseTemplates(templateFS, "templates"))

// parseTemplates loads the dashboard page from dir within fsys.
func parseTemplates(fsys fs.FS, dir string) (*template.Template, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	return template.ParseFS(sub, "dashboard.html")
}

type issueCount struct {
	Kind  domain.IssueKind
	Count int
}

type dashboardView struct {
	Title       string
	Loaded      bool
	Source      string
	Season      string
	LoadedAt    string
	Version     uint64
	RowCount    int
	IssueTotal  int
	IssueCounts []issueCount
	Columns     []string
	Rows        [][]string
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	view := dashboardView{Title: dashboardTitle}
	status := http.StatusServiceUnavailable

	if snap := s.snapshots.Snapshot(); snap != nil {
		status = http.StatusOK
		t := snap.Table
		counts := t.IssueCounts()

		view.Loaded = true
		view.Source = snap.Source
		view.Season = fmt.Sprintf("%d-%d", t.SeasonStartYear, t.SeasonStartYear+1)
		view.LoadedAt = snap.LoadedAt.UTC().Format(time.RFC3339)
		view.Version = snap.Version
		view.RowCount = len(t.Rows)
		view.IssueTotal = len(t.Issues)
		for _, kind := range domain.IssueKinds {
			view.IssueCounts = append(view.IssueCounts, issueCount{Kind: kind, Count: counts[kind]})
		}
		view.Columns = t.WideColumns()
		for _, rec := range t.WideRecords() {
			cells := make([]string, len(rec))
			for i, v := range rec {
				cells[i] = formatCell(v)
			}
			view.Rows = append(view.Rows, cells)
		}
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		s.logger.Error("render dashboard", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck // client disconnects are not actionable
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
