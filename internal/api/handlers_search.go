package api

import (
	"bytes"
	"html/template"
	"net/http"
	"os"

	"github.com/dgallion1/docsearch/internal/widget"
	"github.com/dgallion1/docsearch/web"
)

const pageTitle = "Documentation search"

// searchResponse is the JSON form of one query.
type searchResponse struct {
	Query   string          `json:"query"`
	State   string          `json:"state"`
	Results []widget.Result `json:"results"`
}

// handlePage serves the search page. A q parameter renders its results
// server-side so the page works without the script.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := web.PageData{
		Title: pageTitle,
		State: s.widget.State().String(),
	}

	if q, ok := r.URL.Query()["q"]; ok && len(q) > 0 {
		var frag bytes.Buffer
		if _, err := s.widget.HandleInput(&frag, q[0]); err != nil {
			s.log.Error("render results", "error", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		data.Query = q[0]
		data.Results = template.HTML(frag.String())
	}

	var buf bytes.Buffer
	if err := web.Page.Execute(&buf, data); err != nil {
		s.log.Error("render page", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleFragment answers one input event with the new contents of the
// results list.
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := s.widget.HandleInput(&buf, r.URL.Query().Get("q")); err != nil {
		s.log.Error("render results", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   q,
		State:   s.widget.State().String(),
		Results: s.widget.Search(q),
	})
}

// handleArtifact serves the built index file as it is on disk.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(s.cfg.OutputPath); err != nil {
		jsonError(w, "search index not built", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, s.cfg.OutputPath)
}
