package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ritualgrammar/navigator/internal/engine"
)

// maxQueryBytes caps the size of a submitted query.
const maxQueryBytes = 64 << 10

// SPARQLHandlers serves the query console.
type SPARQLHandlers struct {
	nav   Navigator
	pages *Pages
}

// NewSPARQLHandlers creates the query console handlers.
func NewSPARQLHandlers(nav Navigator, pages *Pages) *SPARQLHandlers {
	return &SPARQLHandlers{nav: nav, pages: pages}
}

// Page handles GET|POST /sparql/. A POST, or a GET with run set, executes
// the submitted query; a bare GET shows the default one.
func (h *SPARQLHandlers) Page(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	page := sparqlPage{
		Title:    "SPARQL",
		Query:    engine.DefaultQuery,
		Inferred: inferredParam(r, false),
	}
	if q := r.FormValue("query"); q != "" {
		page.Query = q
	}
	page.Unconfigured = !h.nav.QueryConfigured(page.Inferred)
	if r.Method == http.MethodPost || r.URL.Query().Get("run") != "" {
		page.Result = h.nav.Query(r.Context(), page.Query, page.Inferred)
	}
	h.pages.render(w, http.StatusOK, "sparql.html", page)
}

// Query handles GET|POST /api/sparql. Query failures are reported in the
// result payload with status 200.
func (h *SPARQLHandlers) Query(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	req := QueryRequest{
		Query:    r.URL.Query().Get("query"),
		Inferred: parseBool(r.URL.Query().Get("inferred"), false),
	}
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxQueryBytes)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body", err)
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				respondError(w, http.StatusBadRequest, "invalid form", err)
				return
			}
			req.Query = r.PostFormValue("query")
			req.Inferred = parseBool(r.PostFormValue("inferred"), req.Inferred)
		}
	}

	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query is required", nil)
		return
	}

	respondJSON(w, http.StatusOK, h.nav.Query(r.Context(), req.Query, req.Inferred))
}
