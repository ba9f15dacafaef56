package server

import (
	"encoding/json"
	"net/http"

	"github.com/playperu/quizarena/internal/arena"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps a coordinator or store error to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch arena.Code(err) {
	case "not_found":
		status = http.StatusNotFound
	case "rejected":
		status = http.StatusConflict
	case "forbidden":
		status = http.StatusForbidden
	case "unavailable":
		status = http.StatusServiceUnavailable
	default:
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
