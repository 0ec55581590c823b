package handlers

import (
	"net/http"
)

// DetailsHandler serves node inspection.
type DetailsHandler struct {
	nav Navigator
}

// NewDetailsHandler creates a DetailsHandler.
func NewDetailsHandler(nav Navigator) *DetailsHandler {
	return &DetailsHandler{nav: nav}
}

// GetDetails handles GET /details/ and GET /api/details.
//
// Query parameters:
//   - id: the node IRI (required)
//   - inferred: read from the inferred store (default false)
func (h *DetailsHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "No ID provided", nil)
		return
	}

	details, err := h.nav.Details(r.Context(), id, inferredParam(r, false))
	if err != nil {
		respondError(w, statusFor(err), messageFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}
