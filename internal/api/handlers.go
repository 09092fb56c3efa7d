package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkboard/linkboard/internal/directory"
	"github.com/linkboard/linkboard/internal/metrics"
)

type metadataRequest struct {
	URL string `json:"url"`
}

func (s *Server) previewMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing required field: url")
		return
	}
	meta, err := s.extractor.Extract(r.Context(), req.URL)
	if err != nil {
		metrics.ObserveMetadataFetch("error")
		s.writeDomainError(w, err)
		return
	}
	metrics.ObserveMetadataFetch("ok")
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) submitLink(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req directory.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	link, err := s.svc.Submit(r.Context(), req, user)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics.ObserveSubmission(string(link.Status))
	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) listLinks(w http.ResponseWriter, r *http.Request) {
	user, _ := caller(r)
	filter := directory.ListFilter{
		Status:     directory.Status(r.URL.Query().Get("status")),
		CategoryID: r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("search"),
	}
	links, err := s.svc.List(r.Context(), filter, user)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if links == nil {
		links = []directory.LinkView{}
	}
	writeJSON(w, http.StatusOK, links)
}

func (s *Server) featuredLinks(w http.ResponseWriter, r *http.Request) {
	limit := directory.DefaultFeaturedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	links, err := s.svc.Featured(r.Context(), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if links == nil {
		links = []directory.LinkView{}
	}
	writeJSON(w, http.StatusOK, links)
}

type transitionRequest struct {
	Status     directory.Status `json:"status"`
	ApprovedAt *time.Time       `json:"approved_at,omitempty"`
}

func (s *Server) transitionLink(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	link, err := s.svc.TransitionAt(r.Context(), chi.URLParam(r, "link_id"), req.Status, user, req.ApprovedAt)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics.ObserveTransition(string(link.Status))
	writeJSON(w, http.StatusOK, link)
}

func (s *Server) deleteLink(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := s.svc.Delete(r.Context(), chi.URLParam(r, "link_id"), user); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) recordView(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.RecordView(r.Context(), chi.URLParam(r, "link_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics.ObserveView()
	writeJSON(w, http.StatusOK, map[string]int64{"views": views})
}

func (s *Server) recordClick(w http.ResponseWriter, r *http.Request) {
	clicks, err := s.svc.RecordClick(r.Context(), chi.URLParam(r, "link_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics.ObserveClick()
	writeJSON(w, http.StatusOK, map[string]int64{"clicks": clicks})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.ListCategories(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if categories == nil {
		categories = []directory.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var category directory.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	created, err := s.svc.CreateCategory(r.Context(), category, user)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var category directory.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	category.ID = chi.URLParam(r, "category_id")
	updated, err := s.svc.UpdateCategory(r.Context(), category, user)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := s.svc.DeleteCategory(r.Context(), chi.URLParam(r, "category_id"), user); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
