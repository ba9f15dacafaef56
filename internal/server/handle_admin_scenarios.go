package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/quizarena/internal/scenario"
)

func handleAdminListScenarios(store Scenarios) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListScenarios(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleAdminCreateScenario(logger *slog.Logger, store Scenarios) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scenario.Scenario
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sc, err := store.CreateScenario(r.Context(), req)
		if errors.Is(err, scenario.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			logger.Error("creating scenario failed", "error", err)
			writeDomainError(w, err)
			return
		}

		logger.Info("scenario created", "scenario", sc.ID, "rounds", len(sc.Rounds))
		writeJSON(w, http.StatusCreated, sc)
	}
}

func handleAdminGetScenario(store Scenarios) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := store.GetScenario(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc)
	}
}
