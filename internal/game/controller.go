package game

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Options tunes a Controller. Zero durations disable pacing.
type Options struct {
	Settings Settings

	// RevealInterval is the length of one countdown step (one second in play)
	RevealInterval time.Duration

	// CluePacing and VotePacing delay agent actions so turns keep a human cadence
	CluePacing time.Duration
	VotePacing time.Duration

	// AdvisorTimeout bounds a single advisor call; zero means no bound
	AdvisorTimeout time.Duration

	// MaxClueLength truncates human clues (in runes); zero means no cap
	MaxClueLength int

	Randomizer *Randomizer
	Logger     *zap.Logger

	// OnChange receives a copy of the session after every committed transition,
	// one call at a time and in commit order. It must not call back into the controller.
	OnChange func(Snapshot)
}

// Controller drives one session: the reveal countdown, turn order, agent clue
// and vote solicitation, and the final tally. All session mutations happen under mu.
type Controller struct {
	mu      sync.Mutex
	session *Session
	roster  Roster

	advisor Advisor
	opts    Options
	rnd     *Randomizer
	log     *zap.Logger

	// advisorBusy guards against a second advisor request for the same generation
	advisorBusy bool
	busyGen     uint64

	// rev numbers committed states; notified is the last revision handed to OnChange
	rev      uint64
	notifyMu sync.Mutex
	notified uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a controller waiting in the lobby
func NewController(advisor Advisor, opts Options) *Controller {
	if opts.RevealInterval <= 0 {
		opts.RevealInterval = time.Second
	}
	if opts.Randomizer == nil {
		opts.Randomizer = NewRandomizer(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.Settings.Words) == 0 {
		opts.Settings.Words = DefaultWords()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		session: NewSession(),
		roster:  opts.Settings.Roster,
		advisor: advisor,
		opts:    opts,
		rnd:     opts.Randomizer,
		log:     opts.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Snapshot returns a copy of the current session stamped with the latest revision
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.session.Snapshot()
	snap.Revision = c.rev
	return snap
}

// Roster returns the profiles used for the next game
func (c *Controller) Roster() Roster {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roster
}

// UpdateRoster replaces the cosmetic profiles. Only allowed between games.
// Observers are notified so pages showing the roster refresh.
func (c *Controller) UpdateRoster(r Roster) error {
	c.mu.Lock()
	if c.session.Phase != PhaseLobby && c.session.Phase != PhaseResult {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	c.roster = r
	c.unlockAndNotify(c.commitLocked())
	return nil
}

// Start deals a new game and begins the reveal countdown.
// Any game in progress is discarded; late advisor replies for it are ignored.
func (c *Controller) Start() error {
	deal, err := c.rnd.Deal(c.opts.Settings.Words)
	if err != nil {
		return err
	}

	c.mu.Lock()
	settings := c.opts.Settings
	settings.Roster = c.roster
	c.session.StartGame(settings, deal)
	gen := c.session.Generation
	c.checkLocked()
	if c.session.Phase == PhaseReveal && c.session.RevealCountdown <= 0 {
		c.session.TickReveal()
		c.dispatchLocked()
	}
	snap := c.commitLocked()
	c.unlockAndNotify(snap)

	c.log.Info("game started",
		zap.Uint64("generation", gen),
		zap.Int("rounds", snap.TotalRounds),
		zap.String("first_player", firstPlayerName(snap)))

	if snap.Phase == PhaseReveal {
		c.goBackground(func() { c.runReveal(gen) })
	}
	return nil
}

// SubmitClue records the human player's clue for the current turn.
// Blank clues are ignored without error so the player can try again.
func (c *Controller) SubmitClue(playerID, text string) error {
	c.mu.Lock()

	if c.session.Phase != PhasePlaying {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	current, ok := c.session.CurrentPlayer()
	if !ok || current.ID != playerID || current.IsAgent {
		c.mu.Unlock()
		return ErrNotYourTurn
	}

	text = truncateRunes(strings.TrimSpace(text), c.opts.MaxClueLength)
	if !c.session.AppendClue(playerID, text, c.session.CurrentRound) {
		c.mu.Unlock()
		return nil
	}
	if err := c.session.AdvanceTurn(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.checkLocked()
	c.dispatchLocked()
	c.unlockAndNotify(c.commitLocked())
	return nil
}

// CastVote records the human vote and then solicits the agents' votes in turn
func (c *Controller) CastVote(voterID, targetID string) error {
	c.mu.Lock()

	if c.session.Phase != PhaseVoting {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	voter, ok := c.session.Player(voterID)
	if !ok {
		c.mu.Unlock()
		return ErrUnknownPlayer
	}
	if voter.IsAgent {
		c.mu.Unlock()
		return ErrNotYourTurn
	}
	if c.session.HasVoted(voterID) {
		c.mu.Unlock()
		return ErrAlreadyVoted
	}
	if targetID == voterID {
		c.mu.Unlock()
		return ErrInvalidTarget
	}
	if err := c.session.RecordVote(voterID, targetID); err != nil {
		c.mu.Unlock()
		return err
	}
	c.finishVotingLocked()
	c.checkLocked()
	c.dispatchLocked()
	c.unlockAndNotify(c.commitLocked())
	return nil
}

// Close stops background work. Pending advisor replies are dropped.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

// Wait blocks until all background tasks have finished
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) goBackground(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// runReveal ticks the countdown until the session enters Playing
func (c *Controller) runReveal(gen uint64) {
	ticker := time.NewTicker(c.opts.RevealInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.session.Generation != gen || c.session.Phase != PhaseReveal {
			c.mu.Unlock()
			return
		}
		changed, _ := c.session.TickReveal()
		if changed {
			c.checkLocked()
			c.dispatchLocked()
		}
		c.unlockAndNotify(c.commitLocked())
		if changed {
			c.log.Debug("reveal finished", zap.Uint64("generation", gen))
			return
		}
	}
}

// dispatchLocked starts the agent action that the just-committed state made due
func (c *Controller) dispatchLocked() {
	s := c.session
	if c.advisorBusy && c.busyGen == s.Generation {
		return
	}

	switch s.Phase {
	case PhasePlaying:
		current, ok := s.CurrentPlayer()
		if !ok || !current.IsAgent {
			return
		}
		task := clueTask{
			gen:    s.Generation,
			round:  s.CurrentRound,
			turn:   s.CurrentTurnIndex,
			player: current,
			snap:   s.Snapshot(),
		}
		c.markBusyLocked(s.Generation)
		c.goBackground(func() { c.runAgentClue(task) })

	case PhaseVoting:
		if !s.HasVoted(HumanID) || s.AllVoted() {
			return
		}
		gen, snap := s.Generation, s.Snapshot()
		c.markBusyLocked(gen)
		c.goBackground(func() { c.runAgentVotes(gen, snap) })
	}
}

func (c *Controller) markBusyLocked(gen uint64) {
	c.advisorBusy = true
	c.busyGen = gen
}

func (c *Controller) releaseBusyLocked(gen uint64) {
	if c.busyGen == gen {
		c.advisorBusy = false
	}
}

type clueTask struct {
	gen    uint64
	round  int
	turn   int
	player Player
	snap   Snapshot
}

// runAgentClue asks the advisor for the agent's clue and commits it with the turn advance
func (c *Controller) runAgentClue(task clueTask) {
	if !c.pause(c.opts.CluePacing) {
		return
	}

	req := ClueRequest{Player: task.player, Transcript: task.snap.Transcript}
	if task.player.Role == RoleInnocent {
		req.SecretWord = task.snap.SecretWord
	}

	text, err := c.askClue(req)
	text = strings.TrimSpace(text)
	if err != nil || !usableClue(text) {
		c.log.Warn("advisor clue unavailable, using fallback",
			zap.String("player", task.player.ID),
			zap.String("answer", text),
			zap.Error(err))
		text = FallbackClue(task.player.Role, c.rnd)
	}

	c.mu.Lock()
	c.releaseBusyLocked(task.gen)
	s := c.session
	if c.ctx.Err() != nil || s.Generation != task.gen || s.Phase != PhasePlaying ||
		s.CurrentRound != task.round || s.CurrentTurnIndex != task.turn {
		c.mu.Unlock()
		c.log.Debug("dropping stale agent clue", zap.String("player", task.player.ID), zap.Uint64("generation", task.gen))
		return
	}
	s.AppendClue(task.player.ID, text, s.CurrentRound)
	s.AdvanceTurn()
	c.checkLocked()
	c.dispatchLocked()
	c.unlockAndNotify(c.commitLocked())

	c.log.Info("agent clue",
		zap.String("player", task.player.Name),
		zap.Int("round", task.round),
		zap.String("clue", text))
}

// runAgentVotes collects one vote per agent, in roster order, one request at a time
func (c *Controller) runAgentVotes(gen uint64, snap Snapshot) {
	defer func() {
		c.mu.Lock()
		c.releaseBusyLocked(gen)
		c.mu.Unlock()
	}()

	agents := make([]Player, 0, len(snap.Players))
	for _, p := range snap.Players {
		if _, voted := snap.Votes[p.ID]; p.IsAgent && !voted {
			agents = append(agents, p)
		}
	}
	slices.SortFunc(agents, func(a, b Player) int { return a.Seat - b.Seat })

	for _, agent := range agents {
		if !c.pause(c.opts.VotePacing) {
			return
		}

		answer, err := c.askVote(VoteRequest{
			Player:     agent,
			Players:    snap.Players,
			SecretWord: snap.SecretWord,
			Transcript: snap.Transcript,
		})
		target, ok := "", false
		if err == nil {
			target, ok = ResolveVoteTarget(answer, snap.Players, agent.ID)
		}
		if !ok {
			c.log.Warn("advisor vote unresolved, picking at random",
				zap.String("player", agent.ID),
				zap.String("answer", answer),
				zap.Error(err))
			target, _ = RandomTarget(snap.Players, agent.ID, c.rnd)
		}

		c.mu.Lock()
		s := c.session
		if c.ctx.Err() != nil || s.Generation != gen || s.Phase != PhaseVoting {
			c.mu.Unlock()
			return
		}
		if err := s.RecordVote(agent.ID, target); err != nil {
			c.log.Error("recording agent vote", zap.String("player", agent.ID), zap.Error(err))
		}
		c.finishVotingLocked()
		c.checkLocked()
		c.unlockAndNotify(c.commitLocked())

		c.log.Info("agent vote", zap.String("player", agent.Name), zap.String("target", target))
	}
}

// finishVotingLocked tallies once every player has voted
func (c *Controller) finishVotingLocked() {
	s := c.session
	if s.Phase != PhaseVoting || !s.AllVoted() {
		return
	}
	result := Tally(s.Players, s.Votes)
	if err := s.ApplyTally(result); err != nil {
		c.log.Error("applying tally", zap.Error(err))
		return
	}
	c.log.Info("votes tallied",
		zap.String("winner", string(result.Winner)),
		zap.Int("max_count", result.MaxCount),
		zap.Strings("tied", result.Tied))
}

// checkLocked discards a session whose invariants no longer hold
func (c *Controller) checkLocked() {
	if err := c.session.CheckInvariants(); err != nil {
		c.log.Error("discarding corrupt session", zap.Error(err))
		c.session.Reset()
	}
}

func (c *Controller) askClue(req ClueRequest) (string, error) {
	ctx, cancel := c.advisorContext()
	defer cancel()
	return c.advisor.Clue(ctx, req)
}

func (c *Controller) askVote(req VoteRequest) (string, error) {
	ctx, cancel := c.advisorContext()
	defer cancel()
	return c.advisor.Vote(ctx, req)
}

func (c *Controller) advisorContext() (context.Context, context.CancelFunc) {
	if c.opts.AdvisorTimeout > 0 {
		return context.WithTimeout(c.ctx, c.opts.AdvisorTimeout)
	}
	return context.WithCancel(c.ctx)
}

// pause waits d unless the controller is closed first
func (c *Controller) pause(d time.Duration) bool {
	if d <= 0 {
		return c.ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// commitLocked numbers the state just committed and returns its snapshot
func (c *Controller) commitLocked() Snapshot {
	c.rev++
	snap := c.session.Snapshot()
	snap.Revision = c.rev
	return snap
}

// unlockAndNotify releases mu and delivers snap. notifyMu is taken while mu is
// still held, so deliveries follow commit order.
func (c *Controller) unlockAndNotify(snap Snapshot) {
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	if snap.Revision <= c.notified {
		return
	}
	c.notified = snap.Revision
	if c.opts.OnChange != nil {
		c.opts.OnChange(snap)
	}
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func firstPlayerName(s Snapshot) string {
	if len(s.Players) == 0 {
		return ""
	}
	return s.Players[0].Name
}
