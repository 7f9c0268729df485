// Package handlers contains the HTTP handlers for the Gazette content
// service. Handlers are grouped by concern (public, admin, auth) and
// receive their dependencies through the handler struct. Both surfaces
// speak JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// writeJSON serializes v with the given status. Encoding failures are
// logged; at that point the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

// jsonError writes a JSON error body with the given status.
func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes the request body into dst, limited to 1 MiB.
func readJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
