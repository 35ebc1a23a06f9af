package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	datastar "github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"impostor/internal/game"
	"impostor/internal/store"
	"impostor/internal/views/pages"
)

// heartbeatInterval keeps idle browsers and proxies from dropping the stream
const heartbeatInterval = 30 * time.Second

// StreamGame streams the game view. The page already holds the current state;
// it is sent once more on connect to cover changes made while the page loaded.
func (h *Handler) StreamGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	code := sess.Code
	log := h.log.With(zap.String("code", code))

	events := h.eventBus.Subscribe(code)
	defer h.eventBus.Unsubscribe(code, events)

	sse := datastar.NewSSE(w, r)
	log.Debug("sse connected", zap.String("remote", r.RemoteAddr))

	initial := sess.Controller.Snapshot()
	if err := h.renderGame(sse, sess, initial); err != nil {
		log.Debug("initial render failed", zap.Error(err))
		return
	}
	shown := initial.Revision

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug("sse disconnected")
			return
		case <-heartbeat.C:
			if _, err := h.store.GetSession(code); err != nil {
				log.Debug("session gone, closing sse")
				return
			}
			if err := sse.Send("keepalive", []string{fmt.Sprintf(`{"time":"%s"}`, time.Now().Format(time.RFC3339))}); err != nil {
				log.Debug("keepalive failed", zap.Error(err))
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

			var err error
			if event.Type == EventCountdownUpdate {
				err = sse.MarshalAndPatchSignals(map[string]any{"countdown": event.Snapshot.RevealCountdown})
			} else {
				err = h.renderGame(sse, sess, event.Snapshot)
			}
			if err != nil {
				log.Debug("patch failed", zap.String("event", event.Type), zap.Error(err))
				return
			}
		}
	}
}

// renderGame replaces #game and syncs the countdown signal
func (h *Handler) renderGame(sse *datastar.ServerSentEventGenerator, sess *store.Session, snap game.Snapshot) error {
	html, err := renderToString(pages.GameContent(h.gameProps(sess, snap)))
	if err != nil {
		return err
	}
	if err := sse.PatchElements(html, datastar.WithSelector("#game")); err != nil {
		return err
	}
	return sse.MarshalAndPatchSignals(map[string]any{"countdown": snap.RevealCountdown})
}

// newer reports whether snap is later than the last revision sent and records it
func newer(last *uint64, snap game.Snapshot) bool {
	if snap.Revision <= *last {
		return false
	}
	*last = snap.Revision
	return true
}

func renderToString(component templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
