package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/graduate-survey/internal/catalog"
	"github.com/terra-clan/graduate-survey/internal/models"
	"github.com/terra-clan/graduate-survey/internal/survey"
)

// Catalog handlers, public and read-only

type catalogSummary struct {
	Language  string `json:"language"`
	Title     string `json:"title"`
	Parts     int    `json:"parts"`
	Sections  int    `json:"sections"`
	Questions int    `json:"questions"`
}

func (s *Server) handleListCatalogs(w http.ResponseWriter, r *http.Request) {
	langs := s.deps.Catalogs.Languages()
	summaries := make([]catalogSummary, 0, len(langs))
	for _, lang := range langs {
		c, err := s.deps.Catalogs.Get(lang)
		if err != nil {
			continue
		}
		summaries = append(summaries, catalogSummary{
			Language:  c.Language,
			Title:     c.Title,
			Parts:     len(c.Parts),
			Sections:  len(c.Sections),
			Questions: len(c.Questions),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"catalogs":         summaries,
		"default_language": s.deps.DefaultLanguage,
	})
}

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	c, ok := s.catalogFromPath(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleGetPages(w http.ResponseWriter, r *http.Request) {
	c, ok := s.catalogFromPath(w, r)
	if !ok {
		return
	}

	pages := survey.BuildPages(c.Questions, s.deps.PageOptions)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"language": c.Language,
		"pages":    pages,
		"count":    len(pages),
	})
}

func (s *Server) catalogFromPath(w http.ResponseWriter, r *http.Request) (*models.Catalog, bool) {
	lang := chi.URLParam(r, "lang")
	cat, err := s.deps.Catalogs.Get(lang)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownLanguage) {
			respondError(w, http.StatusNotFound, "catalog_not_found", "no catalog for language: "+lang)
			return nil, false
		}
		slog.Error("failed to get catalog", "error", err, "language", lang)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get catalog")
		return nil, false
	}
	return cat, true
}
