// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// HomeHandler serves the root greeting.
type HomeHandler struct{}

// NewHomeHandler creates a new home handler.
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// HandleHome handles GET / requests. Any other path falls through to
// this handler via the mux, so unknown routes 404 here.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, "Welcome to the Sheetboard API!")
}
