// Package healthz serves liveness and readiness probes.
package healthz

import "net/http"

// Handler answers 200 while ready reports true and 503 otherwise.  A nil
// ready func is always ready.
type Handler struct {
	ready func() bool
}

func New() *Handler {
	return &Handler{}
}

// NewReadiness returns a handler gated on ready.
func NewReadiness(ready func() bool) *Handler {
	return &Handler{ready: ready}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("503 Not Ready"))
		return
	}
	w.Write([]byte("200 OK"))
}
