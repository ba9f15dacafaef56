package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/quizarena/internal/arena"
	"github.com/playperu/quizarena/internal/handler/health"
	"github.com/playperu/quizarena/internal/scenario"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type roomCodeParam struct {
	Code string `path:"code" description:"Six character room code, case-insensitive."`
}

type limitParam struct {
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"10"`
}

type scenarioIDParam struct {
	ID string `path:"id"`
}

type wsParams struct {
	PlayerID string `query:"player_id" description:"Used when the X-Player-ID header is absent."`
	Name     string `query:"name"`
	Tier     string `query:"tier" description:"Subscription tier; creating or joining rooms needs a paid tier."`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "QuizArena API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Real-time multiplayer quiz rooms. Gameplay runs over the /ws websocket; " +
		"these endpoints expose room listings, rankings and admin operations.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws")
	getWS.SetSummary("Game websocket")
	getWS.SetDescription("Upgrades to a websocket carrying JSON {type, data} messages. " +
		"Inbound: room.create, room.join, room.leave, player.ready, game.start, game.answer, ping.")
	getWS.AddReqStructure(wsParams{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusUnauthorized),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// GET /api/rooms
	listRooms, _ := r.NewOperationContext(http.MethodGet, "/api/rooms")
	listRooms.SetSummary("List open rooms")
	listRooms.SetDescription("Public rooms that are waiting for players, oldest first.")
	listRooms.AddRespStructure(RoomListResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listRooms)

	// GET /api/rooms/{code}
	getRoom, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{code}")
	getRoom.SetSummary("Get room")
	getRoom.SetDescription("Returns a room with its roster and, while playing, the session.")
	getRoom.AddReqStructure(roomCodeParam{})
	getRoom.AddRespStructure(arena.RoomView{}, openapi.WithHTTPStatus(http.StatusOK))
	getRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getRoom)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Players with the most points across all matches.")
	getBoard.AddReqStructure(limitParam{})
	getBoard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getBoard)

	// GET /api/matches
	getMatches, _ := r.NewOperationContext(http.MethodGet, "/api/matches")
	getMatches.SetSummary("Recent matches")
	getMatches.SetDescription("The most recently finished matches, newest first.")
	getMatches.AddReqStructure(limitParam{})
	getMatches.AddRespStructure(MatchesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMatches.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getMatches)

	// DELETE /api/admin/rooms/{code}
	closeRoom, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/rooms/{code}")
	closeRoom.SetSummary("Close room")
	closeRoom.SetDescription("Ends a room immediately. Connected players receive room.closed. Requires basic auth.")
	closeRoom.AddReqStructure(roomCodeParam{})
	closeRoom.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	closeRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	closeRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(closeRoom)

	// GET /api/admin/scenarios
	listScenarios, _ := r.NewOperationContext(http.MethodGet, "/api/admin/scenarios")
	listScenarios.SetSummary("List scenarios")
	listScenarios.SetDescription("Returns all scenarios with round counts. Requires basic auth.")
	listScenarios.AddRespStructure([]scenario.Summary{}, openapi.WithHTTPStatus(http.StatusOK))
	listScenarios.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listScenarios)

	// POST /api/admin/scenarios
	createScenario, _ := r.NewOperationContext(http.MethodPost, "/api/admin/scenarios")
	createScenario.SetSummary("Create scenario")
	createScenario.SetDescription("Stores a new scenario after validating every round. Requires basic auth.")
	createScenario.AddReqStructure(scenario.Scenario{})
	createScenario.AddRespStructure(scenario.Scenario{}, openapi.WithHTTPStatus(http.StatusCreated))
	createScenario.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createScenario.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createScenario)

	// GET /api/admin/scenarios/{id}
	getScenario, _ := r.NewOperationContext(http.MethodGet, "/api/admin/scenarios/{id}")
	getScenario.SetSummary("Get scenario")
	getScenario.SetDescription("Returns a scenario with its rounds, including answers. Requires basic auth.")
	getScenario.AddReqStructure(scenarioIDParam{})
	getScenario.AddRespStructure(scenario.Scenario{}, openapi.WithHTTPStatus(http.StatusOK))
	getScenario.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getScenario.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getScenario)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
