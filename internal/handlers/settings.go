package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"impostor/internal/game"
	"impostor/internal/profile"
	"impostor/internal/store"
	"impostor/internal/views/pages"
)

// SettingsPage renders the roster editor for a session
func (h *Handler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	h.renderSettings(w, r, sess, sess.Controller.Roster(), "", r.URL.Query().Get("saved") == "1", http.StatusOK)
}

// SaveSettings applies and persists new names and avatars. The roster can only
// change between games.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes()); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.renderSettings(w, r, sess, sess.Controller.Roster(), "The upload could not be read", false, http.StatusBadRequest)
		return
	}

	current := sess.Controller.Roster()
	roster, err := h.rosterFromForm(r, current)
	if err == nil {
		roster = profile.Normalize(roster)
		err = h.profiles.Validate(roster)
	}
	if err != nil {
		h.renderSettings(w, r, sess, current, err.Error(), false, http.StatusBadRequest)
		return
	}

	if err := sess.Controller.UpdateRoster(roster); err != nil {
		if errors.Is(err, game.ErrWrongPhase) {
			h.renderSettings(w, r, sess, current, "Finish the current game first", false, http.StatusConflict)
			return
		}
		h.actionError(w, sess.Code, "settings", err)
		return
	}

	if err := h.profiles.Save(roster); err != nil {
		h.log.Error("saving profile", zap.String("code", sess.Code), zap.Error(err))
		h.renderSettings(w, r, sess, roster, "Saved for this game, but the profile could not be written", false, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/game/"+sess.Code+"/settings?saved=1", http.StatusSeeOther)
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, sess *store.Session, roster game.Roster, errMsg string, saved bool, status int) {
	phase := sess.Controller.Snapshot().Phase
	props := pages.SettingsProps{
		Code:    sess.Code,
		Roster:  roster,
		Presets: profile.PresetAvatars,
		Error:   errMsg,
		Saved:   saved,
		Locked:  phase != game.PhaseLobby && phase != game.PhaseResult,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.SettingsPage(props).Render(r.Context(), w); err != nil {
		h.log.Error("rendering settings", zap.String("code", sess.Code), zap.Error(err))
	}
}

// rosterFromForm reads <seat>_name, <seat>_avatar and an optional <seat>_upload per seat
func (h *Handler) rosterFromForm(r *http.Request, current game.Roster) (game.Roster, error) {
	seat := func(id string, prev game.PlayerConfig) (game.PlayerConfig, error) {
		p := game.PlayerConfig{Name: r.FormValue(id + "_name"), Avatar: r.FormValue(id + "_avatar")}
		if p.Avatar == "" || p.Avatar == pages.AvatarKeep {
			p.Avatar = prev.Avatar
		}

		uploaded, err := h.readUpload(r, id+"_upload")
		if err != nil {
			return p, err
		}
		if uploaded != "" {
			p.Avatar = uploaded
		}
		return p, nil
	}

	var (
		out game.Roster
		err error
	)
	if out.User, err = seat(game.HumanID, current.User); err != nil {
		return current, err
	}
	if out.AI1, err = seat(game.Agent1ID, current.AI1); err != nil {
		return current, err
	}
	if out.AI2, err = seat(game.Agent2ID, current.AI2); err != nil {
		return current, err
	}
	return out, nil
}

// readUpload turns an uploaded image into a data URI. It returns "" when no file was sent.
func (h *Handler) readUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", field, err)
	}
	defer file.Close()
	if header.Size == 0 {
		return "", nil
	}

	limit := int64(h.config.Profiles.MaxAvatarBytes)
	var reader io.Reader = file
	if limit > 0 {
		reader = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", field, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("%w: image larger than %d bytes", profile.ErrInvalidAvatar, limit)
	}

	mediaType := http.DetectContentType(data)
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (h *Handler) maxUploadBytes() int64 {
	// three avatars plus the text fields
	return 3*int64(h.config.Profiles.MaxAvatarBytes) + 64*1024
}
