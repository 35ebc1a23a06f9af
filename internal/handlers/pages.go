package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"impostor/internal/game"
	"impostor/internal/store"
	"impostor/internal/views/pages"
)

// Home renders the home page, linking back to the visitor's last game while it exists
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	getOrCreateSession(w, r)

	resume := ""
	if cookie, err := r.Cookie(lastGameCookie); err == nil {
		if _, err := h.store.GetSession(cookie.Value); err == nil {
			resume = cookie.Value
		}
	}

	if err := pages.Home(resume).Render(r.Context(), w); err != nil {
		h.log.Error("rendering home", zap.Error(err))
	}
}

// CreateGame creates a session and redirects to it
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	browser := getOrCreateSession(w, r)

	sess, err := h.store.CreateSession()
	if err != nil {
		if errors.Is(err, store.ErrStoreFull) {
			http.Error(w, "Too many games in progress, try again later", http.StatusServiceUnavailable)
			return
		}
		h.log.Error("creating session", zap.Error(err))
		http.Error(w, "Failed to create game", http.StatusInternalServerError)
		return
	}

	h.log.Info("game created", zap.String("code", sess.Code), zap.String("browser", browser))
	rememberGame(w, sess.Code)
	http.Redirect(w, r, "/game/"+sess.Code, http.StatusSeeOther)
}

// GamePage renders the full page for the session's current phase
func (h *Handler) GamePage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	rememberGame(w, sess.Code)

	props := h.gameProps(sess, sess.Controller.Snapshot())
	if err := pages.GamePage(props).Render(r.Context(), w); err != nil {
		h.log.Error("rendering game page", zap.String("code", sess.Code), zap.Error(err))
	}
}

// gameProps projects a snapshot for the human player
func (h *Handler) gameProps(sess *store.Session, snap game.Snapshot) pages.GameProps {
	props := pages.GameProps{
		Code:          sess.Code,
		View:          game.ViewFor(snap, game.HumanID),
		MaxClueLength: h.config.Game.MaxClueLength,
		Roster:        sess.Controller.Roster(),
	}
	if verdict, ok := game.Project(snap, game.HumanID); ok {
		props.Verdict = &verdict
	}
	return props
}
