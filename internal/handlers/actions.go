package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"impostor/internal/game"
	"impostor/internal/store"
)

// StartGame deals a new game. From the result screen it starts a rematch.
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := sess.Controller.Start(); err != nil {
		h.actionError(w, sess.Code, "start", err)
		return
	}
	h.actionDone(w, r, sess)
}

// SubmitClue records the human player's clue from the "clue" form field
func (h *Handler) SubmitClue(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := sess.Controller.SubmitClue(game.HumanID, r.FormValue("clue")); err != nil {
		h.actionError(w, sess.Code, "clue", err)
		return
	}
	h.actionDone(w, r, sess)
}

// CastVote records the human player's vote from the "target" form field
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := sess.Controller.CastVote(game.HumanID, r.FormValue("target")); err != nil {
		h.actionError(w, sess.Code, "vote", err)
		return
	}
	h.actionDone(w, r, sess)
}

// actionDone answers a successful command. Datastar requests get an empty
// response because the change reaches the page over the event stream; plain
// form posts are redirected back to the game.
func (h *Handler) actionDone(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	if r.Header.Get("Datastar-Request") == "true" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/game/"+sess.Code, http.StatusSeeOther)
}

func (h *Handler) actionError(w http.ResponseWriter, code, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("action failed", zap.String("code", code), zap.String("action", action), zap.Error(err))
	} else {
		h.log.Debug("action rejected", zap.String("code", code), zap.String("action", action), zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrAlreadyVoted):
		return http.StatusConflict
	case errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, game.ErrInvalidTarget):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
