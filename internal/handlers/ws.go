package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"impostor/internal/game"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// The nil CheckOrigin rejects handshakes whose Origin host differs from the request host
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// GameMessage is one frame of the websocket feed: the human player's view
// and, once the game is over, the verdict
type GameMessage struct {
	Type    string          `json:"type"`
	Code    string          `json:"code"`
	View    game.PlayerView `json:"view"`
	Verdict *game.Verdict   `json:"verdict,omitempty"`
}

func newGameMessage(eventType, code string, snap game.Snapshot) GameMessage {
	msg := GameMessage{
		Type: eventType,
		Code: code,
		View: game.ViewFor(snap, game.HumanID),
	}
	if verdict, ok := game.Project(snap, game.HumanID); ok {
		msg.Verdict = &verdict
	}
	return msg
}

// GameSocket streams the game as JSON over a websocket. The feed is read-only;
// commands still go through the POST endpoints.
func (h *Handler) GameSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	code := sess.Code
	log := h.log.With(zap.String("code", code))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	log.Debug("ws connected", zap.String("remote", r.RemoteAddr))

	events := h.eventBus.Subscribe(code)
	defer h.eventBus.Unsubscribe(code, events)

	// The reader only watches for the close frame and answers pings
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(msg GameMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug("ws write failed", zap.Error(err))
			return false
		}
		return true
	}

	initial := sess.Controller.Snapshot()
	if !send(newGameMessage("snapshot", code, initial)) {
		return
	}
	shown := initial.Revision

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			log.Debug("ws disconnected")
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case event, open := <-events:
			if !open {
				return
			}
			sess.Touch()
			if !newer(&shown, event.Snapshot) {
				continue
			}
			if !send(newGameMessage(event.Type, code, event.Snapshot)) {
				return
			}
		}
	}
}
