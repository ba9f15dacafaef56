package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const reasonAdminClosed = "closed_by_admin"

func handleAdminCloseRoom(logger *slog.Logger, rooms Rooms) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if err := rooms.CloseRoom(r.Context(), code, reasonAdminClosed); err != nil {
			writeDomainError(w, err)
			return
		}
		logger.Info("room closed by admin", "room", code)
		w.WriteHeader(http.StatusNoContent)
	}
}
