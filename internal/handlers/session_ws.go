// internal/handlers/session_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/solitaire/internal/game"
	"github.com/sirupsen/logrus"
)

const wsSubprotocol = "solitaire"

// SessionMessage is one intent from the client. Which fields matter depends
// on Type.
type SessionMessage struct {
	Type string `json:"type"`

	Stack  int     `json:"stack"`
	Count  int     `json:"count,omitempty"`
	Index  *int    `json:"index,omitempty"` // select by position in the expanded stack
	Target int     `json:"target,omitempty"`
	Close  int     `json:"close,omitempty"`
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
	DX     float32 `json:"dx,omitempty"`
	DY     float32 `json:"dy,omitempty"`
	Fast   bool    `json:"fast,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`

	Options map[string]interface{} `json:"options,omitempty"`
}

type boardMessage struct {
	Type  string         `json:"type"`
	Ok    bool           `json:"ok"`
	Board game.BoardView `json:"board"`
}

// clientAnimator leaves transfers in flight until the client reports them
// done with "animation_done" or "cancel_animation". The board it receives
// lists them.
type clientAnimator struct{}

func (clientAnimator) Start(game.Transfer) {}

// SessionWSHandler serves GET /session/ws/{id}. Every intent is answered
// with the board. With ?animate=1 the client animates transfers itself and
// reports each one done; otherwise cards land at once.
func SessionWSHandler(srv *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := srv.Logger
		sessionID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}
		playerID, ok := requirePlayer(w, r)
		if !ok {
			return
		}
		s, ok := srv.Sessions.GetSession(sessionID)
		if !ok {
			http.Error(w, game.ErrSessionNotFound.Error(), http.StatusNotFound)
			return
		}
		if s.PlayerID != playerID {
			http.Error(w, "session belongs to another player", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{wsSubprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error for session %s: %v", sessionID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal server error during handler exit")

		if c.Subprotocol() != wsSubprotocol {
			c.Close(BadSubprotocolError, "client must use the 'solitaire' subprotocol")
			return
		}

		if r.URL.Query().Get("animate") == "1" {
			s.SetAnimator(clientAnimator{})
		} else {
			s.SetAnimator(nil)
		}
		s.Resume()

		fields := logrus.Fields{"session": sessionID, "player": playerID, "remote": r.RemoteAddr}
		logger.WithFields(fields).Info("session websocket connected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sendWsMessage(ctx, logger, c, boardMessage{Type: "board", Ok: true, Board: s.View()})
		readSessionMessages(ctx, c, srv, s)

		s.Pause()
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.saveSession(saveCtx, s); err != nil {
			logger.WithFields(fields).WithError(err).Warn("autosave failed")
		} else if s.Won() {
			srv.Sessions.DeleteSession(s.ID)
		}
		saveCancel()
		logger.WithFields(fields).Info("session websocket disconnected")
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readSessionMessages applies intents until the connection closes.
func readSessionMessages(ctx context.Context, c *websocket.Conn, srv *SessionServer, s *game.Session) {
	logger := srv.Logger
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				logger.Debugf("session %s websocket closed", s.ID)
			} else {
				logger.Warnf("error reading from session %s websocket: %v (status %d)", s.ID, err, status)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg SessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWsError(ctx, logger, c, "invalid JSON format")
			continue
		}
		logger.Tracef("session %s intent %q", s.ID, msg.Type)

		if msg.Type == "ping" {
			sendWsMessage(ctx, logger, c, map[string]string{"type": "pong"})
			continue
		}

		ok, err := applyIntent(ctx, srv, s, msg)
		if err != nil {
			sendWsError(ctx, logger, c, err.Error())
			continue
		}
		sendWsMessage(ctx, logger, c, boardMessage{Type: "board", Ok: ok, Board: s.View()})
	}
}

// applyIntent routes msg to the session. The bool is the intent's own
// result; an error means the message itself was malformed.
func applyIntent(ctx context.Context, srv *SessionServer, s *game.Session, msg SessionMessage) (bool, error) {
	switch msg.Type {
	case "pick_up":
		if msg.Count > 0 {
			return s.PickUpRun(msg.Stack, msg.Count), nil
		}
		return s.PickUp(msg.Stack, msg.X, msg.Y), nil
	case "drag":
		if msg.DX != 0 || msg.DY != 0 {
			s.DragBy(msg.DX, msg.DY)
		} else {
			s.DragTo(msg.X, msg.Y)
		}
		return true, nil
	case "release":
		return s.Release(msg.X, msg.Y, msg.Fast), nil
	case "drop":
		return s.DropAttempt(msg.Target, msg.Close), nil
	case "fling":
		return s.Fling(), nil
	case "tap":
		return s.TapStack(msg.Stack, msg.X, msg.Y), nil
	case "select":
		if msg.Index != nil {
			return s.SelectIndex(*msg.Index), nil
		}
		return s.SelectAt(msg.X, msg.Y), nil
	case "take_selection":
		return s.TakeSelection(), nil
	case "cancel_selection":
		s.CancelSelection()
		return true, nil
	case "deal":
		return s.Deal(), nil
	case "undo":
		return s.Undo(), nil
	case "restart":
		s.RestartGame()
		return true, nil
	case "new_game":
		if msg.Options == nil {
			s.NewGame()
			return true, nil
		}
		opts, err := game.ParseOptions(msg.Options, s.Options)
		if err != nil {
			return false, err
		}
		return true, s.NewGameWith(opts)
	case "resize":
		s.Resize(msg.Width, msg.Height)
		return true, nil
	case "replay":
		return s.StartReplay(), nil
	case "stop_replay":
		s.StopReplay()
		return true, nil
	case "animation_done":
		return s.FinishAnimation(), nil
	case "cancel_animation":
		s.CancelAnimation()
		return true, nil
	case "pause":
		s.Pause()
		if err := srv.saveSession(ctx, s); err != nil {
			srv.Logger.WithError(err).Warnf("autosave of session %s failed", s.ID)
		}
		return true, nil
	case "resume":
		s.Resume()
		return true, nil
	default:
		return false, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// sendWsMessage marshals message and writes it with a timeout. Write errors
// are left for the read loop to notice.
func sendWsMessage(ctx context.Context, logger logrus.FieldLogger, c *websocket.Conn, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Errorf("error marshaling websocket message: %v", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, data); err != nil {
		logger.Debugf("error writing websocket message: %v", err)
	}
}

func sendWsError(ctx context.Context, logger logrus.FieldLogger, c *websocket.Conn, message string) {
	sendWsMessage(ctx, logger, c, map[string]string{
		"type":    "error",
		"message": message,
	})
}
