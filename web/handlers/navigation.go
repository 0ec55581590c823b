package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ritualgrammar/navigator/internal/engine"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// NavigationHandlers serves the tree views as HTML and JSON.
type NavigationHandlers struct {
	nav   Navigator
	pages *Pages
}

// NewNavigationHandlers creates the tree view handlers.
func NewNavigationHandlers(nav Navigator, pages *Pages) *NavigationHandlers {
	return &NavigationHandlers{nav: nav, pages: pages}
}

// Index handles GET / - the landing page.
func (h *NavigationHandlers) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}
	h.pages.render(w, http.StatusOK, "index.html", indexPage{Title: "Home"})
}

// NavigatePage returns the HTML hierarchy handler. defaultInferred applies
// when the request carries no inferred parameter.
func (h *NavigationHandlers) NavigatePage(defaultInferred bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if methodNotAllowed(w, r, http.MethodGet) {
			return
		}
		inferred := inferredParam(r, defaultInferred)
		page := treePage{Title: "Asserted hierarchy", Inferred: inferred}
		if inferred {
			page.Title = "Inferred hierarchy"
		}

		view, err := h.nav.NavigationTree(r.Context(), inferred)
		h.renderTree(w, r, page, view, err)
	}
}

// EventsPage handles GET /navigate/events/ - the event-type tree.
func (h *NavigationHandlers) EventsPage(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}
	page := treePage{Title: "Events by type", Inferred: true}
	view, err := h.nav.EventTree(r.Context())
	h.renderTree(w, r, page, view, err)
}

func (h *NavigationHandlers) renderTree(w http.ResponseWriter, r *http.Request, page treePage, view *engine.TreeView, err error) {
	if err != nil {
		slog.Error("tree view failed", "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
		page.Error = messageFor(err)
		page.Nodes = []types.TreeNode{}
		h.pages.render(w, statusFor(err), "navigate.html", page)
		return
	}
	page.Nodes = view.Nodes
	page.Notice = view.Notice
	page.Inferred = page.Inferred && view.Notice == ""
	h.pages.render(w, http.StatusOK, "navigate.html", page)
}

// APINavigation handles GET /api/navigation - the hierarchy as JSON.
func (h *NavigationHandlers) APINavigation(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}
	view, err := h.nav.NavigationTree(r.Context(), inferredParam(r, false))
	if err != nil {
		respondError(w, statusFor(err), messageFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// APIEvents handles GET /api/navigation/events - the event tree as JSON.
func (h *NavigationHandlers) APIEvents(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}
	view, err := h.nav.EventTree(r.Context())
	if err != nil {
		respondError(w, statusFor(err), messageFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
