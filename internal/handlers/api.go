// internal/handlers/api.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/trivia/internal/catalog"
	"github.com/jason-s-yu/trivia/internal/middleware"
	"github.com/jason-s-yu/trivia/internal/room"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the HTTP API, the websocket endpoint and, when staticDir is set,
// the static client files.
func NewRouter(logger *logrus.Logger, svc *room.Service, hub *Hub, origins []string, staticDir string) http.Handler {
	logged := middleware.LogMiddleware(logger)
	mux := http.NewServeMux()

	questions := logged(middleware.CORS(origins)(QuestionsHandler(svc.Catalog())))
	mux.Handle("GET /api/questions", questions)
	mux.Handle("OPTIONS /api/questions", questions)
	mux.Handle("GET /api/rooms", logged(ListRoomsHandler(svc)))
	mux.HandleFunc("GET /healthz", HealthHandler(hub))

	// websocket requests are logged on connect and disconnect instead
	mux.Handle("GET /ws", RoomWSHandler(logger, svc, hub, origins))

	if staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// QuestionsHandler serves the whole catalog as a JSON array, records exactly as stored.
func QuestionsHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cat.All())
	}
}

type roomSummary struct {
	Code                 string `json:"code"`
	Players              int    `json:"players"`
	HasHost              bool   `json:"hasHost"`
	RoundActive          bool   `json:"roundActive"`
	CurrentQuestionIndex int    `json:"currentQuestionIndex"`
}

// ListRoomsHandler lists live rooms for operators.
func ListRoomsHandler(svc *room.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := lo.Map(svc.Registry().List(), func(rm *room.Room, _ int) roomSummary {
			snap := rm.Snapshot()
			return roomSummary{
				Code:                 snap.Code,
				Players:              len(snap.Players),
				HasHost:              snap.HostID != nil,
				RoundActive:          snap.RoundActive,
				CurrentQuestionIndex: snap.CurrentQuestionIndex,
			}
		})
		writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
	}
}

func HealthHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"connections": hub.Len(),
		})
	}
}
