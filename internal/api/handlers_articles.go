package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/sidetoc/internal/site"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := s.lib.List()
	if err != nil {
		s.log.Error("list articles", "error", err)
		http.Error(w, "failed to list articles", http.StatusInternalServerError)
		return
	}
	page, err := site.Index(entries)
	if err != nil {
		s.log.Error("render index", "error", err)
		http.Error(w, "failed to render index", http.StatusInternalServerError)
		return
	}
	writeHTML(w, page)
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	a, ok := s.article(w, r, false)
	if !ok {
		return
	}
	writeHTML(w, a.Page)
}

// handleOutline returns the article's outline and metadata as JSON.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	a, ok := s.article(w, r, true)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

// article loads the article named by the slug URL parameter, writing the
// error response itself when that fails.
func (s *Server) article(w http.ResponseWriter, r *http.Request, asJSON bool) (*site.Article, bool) {
	slug := chi.URLParam(r, "slug")
	a, err := s.lib.Get(slug)
	if err == nil {
		return a, true
	}

	code, msg := http.StatusInternalServerError, "failed to render article"
	if errors.Is(err, site.ErrNotFound) {
		code, msg = http.StatusNotFound, "article not found"
	} else {
		s.log.Error("render article", "slug", slug, "error", err)
	}
	if asJSON {
		jsonError(w, msg, code)
	} else {
		http.Error(w, msg, code)
	}
	return nil, false
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
