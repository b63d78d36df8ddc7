// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/trivia/internal/middleware"
	"github.com/jason-s-yu/trivia/internal/room"
	"github.com/sirupsen/logrus"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// RoomWSHandler upgrades a request to a websocket, registers it with the hub and
// feeds its frames to the room service until the client goes away.
func RoomWSHandler(logger *logrus.Logger, svc *room.Service, hub *Hub, origins []string) http.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: origins,
		})
		if err != nil {
			logger.WithError(err).Warn("websocket accept error")
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := newConnection(logger)
		hub.Register(conn)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		go writePump(ctx, c, conn, logger)
		readErr := readPump(ctx, c, svc, conn, logger)

		// the room service may still broadcast to this connection while it leaves,
		// so it is unregistered from the hub only afterwards
		svc.Disconnect(conn.ID)
		hub.Unregister(conn.ID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// readPump decodes client frames and dispatches them until the socket closes.
// A normal close yields a nil error.
func readPump(ctx context.Context, c *websocket.Conn, svc *room.Service, conn *Connection, logger *logrus.Logger) error {
	log := logger.WithField("conn", conn.ID)
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			log.Warnf("ignoring non-text message type %d", typ)
			continue
		}

		msg, err := decodeEnvelope(data)
		if err != nil {
			log.WithError(err).Warn("rejecting client frame")
			conn.Write(room.Event{Type: EventInvalidMessage, Payload: invalidMessagePayload{Message: err.Error()}})
			continue
		}
		if err := dispatch(svc, conn, msg); err != nil {
			log.WithFields(logrus.Fields{"action": msg.Type}).WithError(err).Debug("action not applied")
		}
	}
}

// dispatch routes one decoded frame to the room service. Errors are already
// signalled to the caller by the service where that is required.
func dispatch(svc *room.Service, conn *Connection, msg inboundMessage) error {
	switch msg.Type {
	case ActionCreateRoom:
		_, err := svc.CreateRoom(conn.ID)
		return err

	case ActionHostJoin:
		var req codeRequest
		if err := decodeInto(conn, msg, &req); err != nil {
			return err
		}
		return svc.HostJoin(conn.ID, req.Code)

	case ActionPlayerJoin:
		var req playerJoinRequest
		if err := decodeInto(conn, msg, &req); err != nil {
			return err
		}
		return svc.PlayerJoin(conn.ID, req.Code, req.Name, req.Avatar)

	case ActionStartQuiz:
		var req codeRequest
		if err := decodeInto(conn, msg, &req); err != nil {
			return err
		}
		return svc.StartQuiz(conn.ID, req.Code)

	case ActionSubmitAnswer:
		var req answerRequest
		if err := decodeInto(conn, msg, &req); err != nil {
			return err
		}
		return svc.SubmitAnswer(conn.ID, req.Code, req.Answer)

	case ActionNextQuestion:
		var req nextQuestionRequest
		if err := decodeInto(conn, msg, &req); err != nil {
			return err
		}
		if req.Idx != nil {
			return svc.NextQuestionAt(conn.ID, req.Code, *req.Idx)
		}
		return svc.NextQuestion(conn.ID, req.Code)

	case ActionShowLeaderboard:
		var req codeRequest
		if err := decodeInto(conn, msg, &req); err != nil {
			return err
		}
		return svc.ShowLeaderboard(conn.ID, req.Code)

	case ActionHostSetPrefs:
		var req prefsRequest
		if err := decodeInto(conn, msg, &req); err != nil {
			return err
		}
		return svc.SetPrefs(conn.ID, req.Code, room.Prefs{Timer: req.Timer, AutoLeaderboard: req.AutoLeaderboard})
	}
	return nil
}

func decodeInto(conn *Connection, msg inboundMessage, v interface{}) error {
	if err := decodePayload(msg, v); err != nil {
		conn.Write(room.Event{Type: EventInvalidMessage, Payload: invalidMessagePayload{Message: err.Error()}})
		return err
	}
	return nil
}

// writePump drains the connection's outbox onto the socket and keeps it alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *Connection, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-conn.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, c, ev)
			cancel()
			if err != nil {
				logger.WithField("conn", conn.ID).WithError(err).Warn("failed to write to websocket")
				c.Close(websocket.StatusGoingAway, "write failed")
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.WithField("conn", conn.ID).WithError(err).Debug("ping failed")
				c.Close(websocket.StatusGoingAway, "ping failed")
				return
			}
		}
	}
}
