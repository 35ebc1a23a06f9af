package pages

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"impostor/internal/config"
	"impostor/internal/game"
	"impostor/internal/views"
)

// AvatarKeep is the select value that keeps an uploaded avatar unchanged
const AvatarKeep = "keep"

// SettingsProps drives the roster editor
type SettingsProps struct {
	Code    string
	Roster  game.Roster
	Presets []string
	Error   string
	Saved   bool
	Locked  bool // a game is in progress; the roster can't change until it ends
}

type seatField struct {
	id     string
	label  string
	player game.PlayerConfig
}

// SettingsPage renders the name and avatar editor for the three seats
func SettingsPage(props SettingsProps) templ.Component {
	return page("Impostor · Settings", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := views.NewHTML(w)
		h.Raw(`<h1>Players</h1>`)
		if props.Error != "" {
			h.Rawf(`<p class="error" id="settings-error">%s</p>`, views.Esc(props.Error))
		}
		if props.Saved {
			h.Raw(`<p class="saved" id="settings-saved">Saved.</p>`)
		}
		if props.Locked {
			h.Raw(`<p class="notice">Changes can be saved once the current game ends.</p>`)
		}

		h.Rawf(`<form method="POST" action="/game/%s/settings" enctype="multipart/form-data">`, views.Esc(props.Code))
		seats := []seatField{
			{id: game.HumanID, label: "You", player: props.Roster.User},
			{id: game.Agent1ID, label: "Agent 1", player: props.Roster.AI1},
			{id: game.Agent2ID, label: "Agent 2", player: props.Roster.AI2},
		}
		for _, s := range seats {
			renderSeatField(h, s, props.Presets)
		}
		if props.Locked {
			h.Raw(`<button type="submit" disabled>Save</button>`)
		} else {
			h.Raw(`<button type="submit">Save</button>`)
		}
		h.Raw(`</form>`)
		h.Rawf(`<p><a href="/game/%s">Back to the game</a></p>`, views.Esc(props.Code))
		return h.Err()
	}))
}

func renderSeatField(h *views.HTML, s seatField, presets []string) {
	h.Rawf(`<fieldset id="seat-%s"><legend>%s</legend>`, s.id, views.Esc(s.label))
	h.Rawf(`<img class="avatar" src="%s" alt="">`, views.Esc(views.AvatarSrc(s.player.Avatar)))
	h.Rawf(`<label>Name <input type="text" name="%s_name" value="%s" maxlength="%d" required></label>`,
		s.id, views.Esc(s.player.Name), config.MaxNameLength)

	h.Rawf(`<label>Avatar <select name="%s_avatar">`, s.id)
	if strings.HasPrefix(s.player.Avatar, "data:") {
		h.Rawf(`<option value="%s" selected>Uploaded image</option>`, AvatarKeep)
	}
	for _, preset := range presets {
		selected := ""
		if preset == s.player.Avatar {
			selected = " selected"
		}
		h.Rawf(`<option value="%s"%s>%s</option>`, views.Esc(preset), selected,
			views.Esc(strings.TrimPrefix(preset, "avatar-")))
	}
	h.Raw(`</select></label>`)
	h.Rawf(`<label>Upload <input type="file" name="%s_upload" accept="image/png,image/jpeg,image/gif,image/webp"></label>`, s.id)
	h.Raw(`</fieldset>`)
}
