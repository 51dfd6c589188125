// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// livenessMessage is the plain-text body of GET /.
const livenessMessage = "AdRewards backend is running"

// RootHandler handles root path requests.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests with a plain-text liveness line.
// The catch-all pattern also receives unknown paths; those stay 404.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(livenessMessage))
}
