package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"possales/internal/auth"
	"possales/internal/core"
	applog "possales/internal/log"
	"possales/internal/loyverse"
	"possales/internal/render"
	"possales/internal/services"
	"possales/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

type salesResponse struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Archived    bool            `json:"archived"`
	SheetRange  string          `json:"sheet_range,omitempty"`
	Summary     render.Document `json:"summary"`
}

type runResponse struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	Granularity string    `json:"granularity"`
	ByCategory  bool      `json:"by_category"`
	Total       string    `json:"total"`
	Skipped     int       `json:"skipped"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) parseRequest(r *http.Request) (services.Request, error) {
	q := r.URL.Query()
	granularity := q.Get("granularity")
	if granularity == "" {
		granularity = string(core.Day)
	}
	req, err := services.NewRequest(q.Get("start"), q.Get("end"), granularity,
		parseBool(q.Get("by_category"), false), s.reports.Location())
	if err != nil {
		return services.Request{}, err
	}
	req.IncludeUncategorized = parseBool(q.Get("include_uncategorized"), s.includeUncategorized)
	req.Archive = parseBool(q.Get("save"), false)
	return req, nil
}

func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.reports.Report(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := salesResponse{
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
		Archived:    res.Archived,
		Summary:     render.NewDocument(res.Summary),
	}
	if r.URL.Query().Get("export") == "sheets" {
		if s.exporter == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sheets export is not configured"})
			return
		}
		rng, err := s.exporter.Export(r.Context(), res.Summary)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Sheets export failed", applog.FieldError, err)
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "sheets export failed"})
			return
		}
		out.SheetRange = rng
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSalesCSV(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.reports.Report(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
	if err := render.CSV(w, res.Summary); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to write CSV", applog.FieldError, err)
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "archive is not configured"})
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, newRunResponse(run))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "archive is not configured"})
		return
	}
	run, err := s.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, salesResponse{
		RunID:       run.ID,
		GeneratedAt: run.CreatedAt,
		Archived:    true,
		Summary:     render.NewDocument(run.Summary),
	})
}

func newRunResponse(run storage.Run) runResponse {
	return runResponse{
		ID:          run.ID,
		CreatedAt:   run.CreatedAt,
		Start:       run.Summary.Start.Format(core.DateLayout),
		End:         run.Summary.End.Format(core.DateLayout),
		Granularity: run.Summary.Granularity.String(),
		ByCategory:  run.Summary.ByCategory,
		Total:       run.Total.String(),
		Skipped:     run.Summary.Skipped,
	}
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	var (
		credErr   *auth.CredentialError
		remoteErr *loyverse.RemoteServiceError
		loopErr   *loyverse.PaginationLoopError
	)
	switch {
	case errors.Is(err, core.ErrInvalidGranularity), errors.Is(err, core.ErrInvalidRange), errors.Is(err, core.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.As(err, &credErr):
		return http.StatusUnauthorized
	case errors.As(err, &remoteErr), errors.As(err, &loopErr):
		return http.StatusBadGateway
	case errors.Is(err, storage.ErrRunNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed",
			applog.FieldRequestID, middleware.GetReqID(r.Context()),
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
