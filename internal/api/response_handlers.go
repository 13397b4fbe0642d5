package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/graduate-survey/internal/auth"
	"github.com/terra-clan/graduate-survey/internal/catalog"
	"github.com/terra-clan/graduate-survey/internal/export"
	"github.com/terra-clan/graduate-survey/internal/models"
	"github.com/terra-clan/graduate-survey/internal/stats"
	"github.com/terra-clan/graduate-survey/internal/storage"
	"github.com/terra-clan/graduate-survey/internal/submissions"
)

// --- Save Response (public) ---

type saveResponseRequest struct {
	Responses json.RawMessage         `json:"responses"`
	Language  string                  `json:"language"`
	ID        string                  `json:"id"`
	Status    models.SubmissionStatus `json:"status"`
}

func (s *Server) handleSaveResponse(w http.ResponseWriter, r *http.Request) {
	var req saveResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	raw := bytes.TrimSpace(req.Responses)
	if len(raw) == 0 || raw[0] != '{' {
		respondError(w, http.StatusBadRequest, "invalid_request", "responses must be an object")
		return
	}
	var responses models.Responses
	if err := json.Unmarshal(raw, &responses); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	id, err := s.deps.Submissions.Save(r.Context(), models.SaveRequest{
		Responses: responses,
		Language:  req.Language,
		ID:        req.ID,
		Status:    req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, submissions.ErrInvalidStatus), errors.Is(err, submissions.ErrInvalidID):
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		case errors.Is(err, submissions.ErrMissingResponse):
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "save_failed", submissions.ErrSaveFailed.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, models.SaveResponse{ID: id})
}

// --- Admin handlers (bearer token) ---

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	token, expiresAt, err := s.deps.Auth.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			slog.Warn("admin login failed", "remote_addr", r.RemoteAddr)
			writeAuthError(w, http.StatusUnauthorized, "invalid_credentials", "wrong password")
			return
		}
		slog.Error("failed to issue admin token", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to log in")
		return
	}

	slog.Info("admin logged in", "remote_addr", r.RemoteAddr, "expires_at", expiresAt)
	respondJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	filters := models.ListFilters{
		Status:   models.SubmissionStatus(r.URL.Query().Get("status")),
		Language: r.URL.Query().Get("language"),
		Limit:    50,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 0 {
			respondError(w, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return
		}
		filters.Limit = l
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		o, err := strconv.Atoi(offsetStr)
		if err != nil || o < 0 {
			respondError(w, http.StatusBadRequest, "validation_error", "offset must be a non-negative integer")
			return
		}
		filters.Offset = o
	}

	subs, err := s.deps.Submissions.List(r.Context(), filters)
	if err != nil {
		if errors.Is(err, submissions.ErrInvalidStatus) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		slog.Error("failed to list submissions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list submissions")
		return
	}
	if subs == nil {
		subs = []*models.Submission{}
	}

	total, err := s.deps.Submissions.Count(r.Context(), filters)
	if err != nil {
		slog.Error("failed to count submissions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to count submissions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": subs,
		"count":       len(subs),
		"total":       total,
		"limit":       filters.Limit,
		"offset":      filters.Offset,
	})
}

func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := s.deps.Submissions.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, submissions.ErrInvalidID):
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		case errors.Is(err, storage.ErrNotFound):
			respondError(w, http.StatusNotFound, "not_found", "submission not found")
		default:
			slog.Error("failed to get submission", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to get submission")
		}
		return
	}

	respondJSON(w, http.StatusOK, sub)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	c, subs, ok := s.loadReportInput(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, stats.Aggregate(c, subs, s.deps.Location))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	c, subs, ok := s.loadReportInput(w, r)
	if !ok {
		return
	}

	var rows []*models.Submission
	for _, sub := range subs {
		if sub.Language == "" || sub.Language == c.Language {
			rows = append(rows, sub)
		}
	}

	wb, err := export.Build(c, rows, stats.Aggregate(c, subs, s.deps.Location))
	if err != nil {
		slog.Error("failed to build export", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to build export")
		return
	}
	defer wb.Close()

	filename := fmt.Sprintf("survey-responses-%s-%s.xlsx", c.Language, time.Now().In(s.deps.Location).Format("20060102"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := wb.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

func (s *Server) handleSessionCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Sessions.ActiveCount(r.Context())
	if err != nil {
		slog.Error("failed to count sessions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to count sessions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"active": n})
}

// loadReportInput resolves the catalog from ?lang and loads every submission
func (s *Server) loadReportInput(w http.ResponseWriter, r *http.Request) (*models.Catalog, []*models.Submission, bool) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.deps.DefaultLanguage
	}

	c, err := s.deps.Catalogs.Get(lang)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownLanguage) {
			respondError(w, http.StatusNotFound, "catalog_not_found", "no catalog for language: "+lang)
			return nil, nil, false
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get catalog")
		return nil, nil, false
	}

	subs, err := s.deps.Submissions.List(r.Context(), models.ListFilters{})
	if err != nil {
		slog.Error("failed to load submissions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load submissions")
		return nil, nil, false
	}
	return c, subs, true
}
