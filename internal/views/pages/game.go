package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"impostor/internal/game"
	"impostor/internal/views"
)

// GameProps is everything the game page needs for one render
type GameProps struct {
	Code          string
	View          game.PlayerView
	Verdict       *game.Verdict
	MaxClueLength int

	// Roster fills the player list before the first game is dealt
	Roster game.Roster
}

// GamePage renders the full session page. The wrapper opens the event stream
// once; only the inner #game element is replaced by later patches.
func GamePage(props GameProps) templ.Component {
	title := "Impostor · " + props.Code
	return page(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := views.NewHTML(w)
		h.Rawf(`<div id="game-container" data-signals-countdown="%d" data-on-load="%s">`,
			props.View.RevealCountdown,
			views.Esc(fmt.Sprintf("@get('/sse/game/%s')", props.Code)))
		h.Component(ctx, GameContent(props))
		h.Raw(`</div>`)
		return h.Err()
	}))
}

// GameContent renders the phase-dependent body of a session
func GameContent(props GameProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		v := props.View
		h := views.NewHTML(w)
		h.Rawf(`<div id="game" class="phase-%s">`, views.Esc(v.Phase.String()))
		h.Rawf(`<header class="game-header"><span class="code">Game %s</span>`, views.Esc(props.Code))
		if v.Phase == game.PhasePlaying || v.Phase == game.PhaseVoting {
			h.Rawf(` <span class="round">Round %d of %d</span>`, min(v.CurrentRound, v.TotalRounds), v.TotalRounds)
		}
		h.Raw(`</header>`)

		players := v.Players
		if len(players) == 0 {
			players = rosterPlayers(props.Roster)
		}
		renderPlayers(h, v, players)

		switch v.Phase {
		case game.PhaseLobby:
			renderLobby(h, props.Code)
		case game.PhaseReveal:
			renderReveal(h, v)
		case game.PhasePlaying:
			renderRoleReminder(h, v)
			renderTranscript(h, v)
			renderTurn(h, props)
		case game.PhaseVoting:
			renderTranscript(h, v)
			renderVoting(h, props.Code, v)
		case game.PhaseResult:
			renderResult(h, props.Code, props.Verdict)
			renderTranscript(h, v)
		}

		h.Raw(`</div>`)
		return h.Err()
	})
}

func rosterPlayers(r game.Roster) []game.Player {
	return []game.Player{
		{ID: game.HumanID, Name: r.User.Name, Avatar: r.User.Avatar, Seat: 0},
		{ID: game.Agent1ID, Name: r.AI1.Name, Avatar: r.AI1.Avatar, IsAgent: true, Seat: 1},
		{ID: game.Agent2ID, Name: r.AI2.Name, Avatar: r.AI2.Avatar, IsAgent: true, Seat: 2},
	}
}

func renderPlayers(h *views.HTML, v game.PlayerView, players []game.Player) {
	h.Raw(`<ul class="players">`)
	for _, p := range players {
		class := "player"
		if p.ID == v.CurrentPlayerID {
			class += " current"
		}
		h.Rawf(`<li class="%s" id="player-%s">`, class, views.Esc(p.ID))
		h.Rawf(`<img class="avatar" src="%s" alt="%s">`, views.Esc(views.AvatarSrc(p.Avatar)), views.Esc(p.Name))
		h.Rawf(`<div class="name">%s</div>`, views.Esc(p.Name))
		if p.ID == v.ViewerID {
			h.Raw(`<div class="tag">you</div>`)
		}
		h.Raw(`</li>`)
	}
	h.Raw(`</ul>`)
}

func renderLobby(h *views.HTML, code string) {
	h.Raw(`<section class="lobby"><h2>Ready when you are</h2>`)
	h.Rawf(`<form method="POST" action="/game/%s/start"><button type="submit">Start game</button></form>`, views.Esc(code))
	h.Rawf(`<p><a href="/game/%s/settings">Edit names and avatars</a></p>`, views.Esc(code))
	h.Rawf(`<figure class="qr"><img src="/game/%s/qr" alt="Open this game on another device" width="160" height="160">`, views.Esc(code))
	h.Raw(`<figcaption>Continue on your phone</figcaption></figure>`)
	h.Raw(`</section>`)
}

func renderReveal(h *views.HTML, v game.PlayerView) {
	h.Raw(`<section class="reveal">`)
	if v.ViewerRole == game.RoleImpostor {
		h.Raw(`<h2 class="role-impostor">You are the Impostor</h2>`)
		h.Raw(`<p>You don't know the word. Listen closely and blend in.</p>`)
	} else {
		h.Raw(`<h2 class="role-innocent">You are Innocent</h2>`)
		h.Rawf(`<p>The secret word is <strong id="secret-word">%s</strong></p>`, views.Esc(v.SecretWord))
	}
	h.Rawf(`<div class="countdown" data-text="$countdown">%d</div>`, v.RevealCountdown)
	h.Raw(`</section>`)
}

func renderRoleReminder(h *views.HTML, v game.PlayerView) {
	if v.ViewerRole == game.RoleImpostor {
		h.Raw(`<p class="role role-impostor">You are the Impostor</p>`)
		return
	}
	h.Rawf(`<p class="role role-innocent">Secret word: <strong>%s</strong></p>`, views.Esc(v.SecretWord))
}

func renderTranscript(h *views.HTML, v game.PlayerView) {
	h.Raw(`<ol class="transcript" id="transcript">`)
	if len(v.Transcript) == 0 {
		h.Raw(`<li class="empty">No clues yet</li>`)
	}
	for _, entry := range v.Transcript {
		h.Rawf(`<li id="clue-%s"><span class="round">R%d</span> <strong>%s</strong>: %s</li>`,
			views.Esc(entry.ID), entry.Round, views.Esc(entry.AuthorName), views.Esc(entry.Text))
	}
	h.Raw(`</ol>`)
}

func renderTurn(h *views.HTML, props GameProps) {
	v := props.View
	if v.CurrentPlayerID == v.ViewerID {
		h.Rawf(`<form class="clue-form" method="POST" action="/game/%s/clue">`, views.Esc(props.Code))
		h.Rawf(`<input type="text" id="clue" name="clue" maxlength="%d" placeholder="Give a one-sentence clue" autocomplete="off" autofocus required>`,
			props.MaxClueLength)
		h.Raw(`<button type="submit">Send</button></form>`)
		return
	}
	name := "Someone"
	for _, p := range v.Players {
		if p.ID == v.CurrentPlayerID {
			name = p.Name
		}
	}
	h.Rawf(`<p class="waiting">%s is thinking...</p>`, views.Esc(name))
}

func renderVoting(h *views.HTML, code string, v game.PlayerView) {
	h.Raw(`<section class="voting">`)
	if v.HasVoted {
		h.Raw(`<p class="waiting">Vote cast. Waiting for the others...</p></section>`)
		return
	}
	h.Raw(`<h2>Who is the Impostor?</h2>`)
	h.Rawf(`<form method="POST" action="/game/%s/vote">`, views.Esc(code))
	for _, p := range v.Players {
		if p.ID == v.ViewerID {
			continue
		}
		h.Rawf(`<button type="submit" name="target" value="%s">%s</button> `, views.Esc(p.ID), views.Esc(p.Name))
	}
	h.Raw(`</form></section>`)
}

func renderResult(h *views.HTML, code string, verdict *game.Verdict) {
	h.Raw(`<section class="result">`)
	if verdict == nil {
		h.Raw(`<p>Counting votes...</p></section>`)
		return
	}
	h.Rawf(`<h2 id="verdict">%s</h2>`, views.Esc(verdict.Title))
	switch {
	case verdict.HumanWon:
		h.Raw(`<p class="outcome won">You won!</p>`)
	case verdict.Outcome == game.OutcomeDraw:
		h.Raw(`<p class="outcome draw">Nobody was ejected.</p>`)
	default:
		h.Raw(`<p class="outcome lost">You lost.</p>`)
	}
	h.Rawf(`<p>The secret word was <strong>%s</strong>. The Impostor was <strong>%s</strong>.</p>`,
		views.Esc(verdict.SecretWord), views.Esc(verdict.Impostor.Name))

	h.Raw(`<table class="scores"><thead><tr><th>Player</th><th>Votes</th><th></th></tr></thead><tbody>`)
	for _, line := range verdict.Scores {
		h.Rawf(`<tr><td>%s</td><td>%d</td><td>`, views.Esc(line.Name), line.Votes)
		if line.IsImpostor {
			h.Raw(`<span class="role-impostor">Impostor</span> `)
		}
		if line.Ejected {
			h.Raw(`<span class="ejected">ejected</span>`)
		}
		h.Raw(`</td></tr>`)
	}
	h.Raw(`</tbody></table>`)

	h.Rawf(`<form method="POST" action="/game/%s/start"><button type="submit">Play again</button></form>`, views.Esc(code))
	h.Rawf(`<p><a href="/game/%s/settings">Edit names and avatars</a></p>`, views.Esc(code))
	h.Raw(`</section>`)
}
