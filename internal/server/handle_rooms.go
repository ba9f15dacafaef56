package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/quizarena/internal/arena"
)

// RoomListResponse is the response for GET /api/rooms.
type RoomListResponse struct {
	Rooms []arena.Room `json:"rooms"`
}

func handleListRooms(rooms Rooms) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := rooms.ListRooms()
		if list == nil {
			list = []arena.Room{}
		}
		writeJSON(w, http.StatusOK, RoomListResponse{Rooms: list})
	}
}

func handleGetRoom(rooms Rooms) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := rooms.Room(chi.URLParam(r, "code"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
