// internal/game/session.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/solitaire/internal/anchor"
	"github.com/jason-s-yu/solitaire/internal/card"
	"github.com/sirupsen/logrus"
)

// Mode is what the session is currently doing with pointer input.
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeMoveCard Mode = "move_card" // a run is lifted and follows the pointer
	ModeSelect   Mode = "select"    // a stack is expanded for choosing a card
	ModeAnimate  Mode = "animate"   // cards are in flight
	ModeWin      Mode = "win"
)

// Result summarizes a won game.
type Result struct {
	SessionID  uuid.UUID     `json:"sessionId"`
	PlayerID   uuid.UUID     `json:"playerId"`
	Variant    Variant       `json:"variant"`
	TypeString string        `json:"type"`
	Elapsed    time.Duration `json:"elapsed"`
	Score      int           `json:"score"`
	HasScore   bool          `json:"hasScore"`
	Moves      int           `json:"moves"`
}

// Session is one game of solitaire. All exported methods take Mu; callbacks
// run with Mu held and must not call back into the session.
type Session struct {
	ID       uuid.UUID
	PlayerID uuid.UUID
	Variant  Variant
	Options  Options

	Mu sync.Mutex

	// OnAttempt fires once per game, when the first move is committed.
	OnAttempt func(res Result)
	// OnWin fires once when the game is won.
	OnWin func(res Result)

	rules   *rules
	vs      variantState
	layout  Layout
	anchors []*anchor.Anchor
	metrics card.Metrics
	width   int
	height  int

	history      History
	events       eventQueue
	ignoreEvents bool
	mode         Mode
	won          bool
	attempted    bool

	moveCard   *MoveCard
	selectCard *SelectCard

	animator Animator
	inFlight []*transfer
	landing  []*transfer
	draining bool
	snapping bool

	replay replayState

	rng         *rand.Rand
	logger      logrus.FieldLogger
	now         func() time.Time
	started     time.Time
	elapsed     time.Duration
	paused      bool
	pausedAt    time.Time
	actionIndex int
}

// NewSession deals a fresh game. A zero seed shuffles from the clock.
func NewSession(variant Variant, opts Options, seed int64, logger logrus.FieldLogger) (*Session, error) {
	id, _ := uuid.NewRandom()
	s, err := newSession(id, uuid.Nil, variant, opts, seed, logger)
	if err != nil {
		return nil, err
	}
	s.dealFresh()
	return s, nil
}

// newSession builds the stacks of a session without dealing.
func newSession(id, playerID uuid.UUID, variant Variant, opts Options, seed int64, logger logrus.FieldLogger) (*Session, error) {
	r, err := rulesFor(variant)
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Session{
		ID:       id,
		PlayerID: playerID,
		Variant:  variant,
		Options:  opts,
		rules:    r,
		metrics:  card.DefaultMetrics,
		mode:     ModeNormal,
		rng:      rand.New(rand.NewSource(seed)),
		now:      time.Now,
	}
	s.logger = logger.WithFields(logrus.Fields{"session": id, "variant": variant})
	s.build()
	return s, nil
}

// SetAnimator routes card transfers through a. Nil lands them immediately.
func (s *Session) SetAnimator(a Animator) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.animator = a
}

// SetClock replaces the time source used for the elapsed timer.
func (s *Session) SetClock(now func() time.Time) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.now = now
	s.started = now()
}

// build creates the variant's stacks and wires their hooks.
func (s *Session) build() {
	s.anchors = nil
	s.layout = newLayout()
	s.vs = variantState{dealsLeft: -1}
	s.rules.setup(s)
	for _, a := range s.anchors {
		a.FreeSpaces = s.freeSpaces
		a.Notify = s.stackAdded
	}
	if s.width > 0 && s.height > 0 {
		s.applyResize(s.width, s.height)
	}
}

// addAnchor appends a stack and returns its id.
func (s *Session) addAnchor(p anchor.Policy) int {
	id := len(s.anchors)
	s.anchors = append(s.anchors, anchor.New(id, p, &s.metrics))
	return id
}

func (s *Session) addAnchors(n int, p anchor.Policy) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = s.addAnchor(p)
	}
	return ids
}

// dealFresh lays out a new game and logs its start.
func (s *Session) dealFresh() {
	s.dealTable()
	s.logAction("game_start", map[string]interface{}{"type": s.typeString()})
}

// dealTable shuffles a new deck and lays it out. Events are suppressed while
// the table is being built.
func (s *Session) dealTable() {
	deck := card.NewDeck(s.rules.decks, s.rules.suitCount(s.Options), s.rng)
	old := s.ignoreEvents
	s.ignoreEvents = true
	s.rules.deal(s, deck)
	s.ignoreEvents = old

	s.history.Clear()
	s.events.clear()
	s.mode = ModeNormal
	s.won = false
	s.attempted = false
	s.elapsed = 0
	s.started = s.now()
}

func (s *Session) freeSpaces() int {
	if s.rules.freeSpaces == nil {
		return 0
	}
	return s.rules.freeSpaces(s)
}

func (s *Session) stackAdded(a *anchor.Anchor) {
	s.post(Event{Type: EventStackAdd, Anchor: a.ID})
}

func (s *Session) anchor(id int) *anchor.Anchor {
	if id < 0 || id >= len(s.anchors) {
		return nil
	}
	return s.anchors[id]
}

// post queues a rule event unless events are being ignored.
func (s *Session) post(ev Event) {
	if s.ignoreEvents {
		return
	}
	s.events.post(ev)
}

// drain lands finished transfers and dispatches queued events until the
// session is idle. Handlers may queue more work; it runs in the same loop.
func (s *Session) drain() {
	if s.draining {
		return
	}
	s.draining = true
	defer func() { s.draining = false }()

	for {
		if len(s.landing) > 0 {
			t := s.landing[0]
			s.landing = s.landing[1:]
			s.land(t)
			continue
		}
		if s.ignoreEvents {
			s.events.clear()
			break
		}
		ev, ok := s.events.next()
		if !ok {
			break
		}
		s.handleEvent(ev)
	}

	if s.mode == ModeAnimate && len(s.inFlight) == 0 && !s.replay.active {
		s.mode = ModeNormal
		s.vs.stillDealing = false
	}
}

func (s *Session) handleEvent(ev Event) {
	switch ev.Type {
	case EventDeal:
		if s.rules.onDeal != nil {
			s.rules.onDeal(s)
		}
	case EventStackAdd:
		if a := s.anchor(ev.Anchor); a != nil && s.rules.onStackAdd != nil {
			s.rules.onStackAdd(s, a)
		}
	case EventFling:
		s.onFling(ev)
	case EventSmartMove:
		s.smartMove()
	case EventDealNext:
		if s.rules.onDealNext != nil {
			s.rules.onDealNext(s, ev.Anchor)
		}
	}
}

// commit records a move. The first commit of a game counts as an attempt.
func (s *Session) commit(m Move) {
	s.history.Push(m)
	s.logAction("move", map[string]interface{}{
		"from":    m.From,
		"toBegin": m.ToBegin,
		"toEnd":   m.ToEnd,
		"count":   m.Count,
		"flags":   int(m.Flags),
	})
	if !s.attempted {
		s.attempted = true
		if s.OnAttempt != nil {
			s.OnAttempt(s.result())
		}
	}
}

// tryToSink moves the top card of a to the first sink that takes it.
func (s *Session) tryToSink(a *anchor.Anchor) bool {
	top := a.Top()
	if top == nil || a.Visible() == 0 || !s.sinkAccepts(top) {
		return false
	}
	return s.tryToSinkCard(a, a.Pop())
}

func (s *Session) sinkAccepts(c *card.Card) bool {
	for _, id := range s.layout.Sinks {
		if s.anchors[id].AcceptsCard(c) {
			return true
		}
	}
	return false
}

// tryToSinkCard sends c, already removed from origin, to the first sink that
// takes it.
func (s *Session) tryToSinkCard(origin *anchor.Anchor, c *card.Card) bool {
	for _, id := range s.layout.Sinks {
		sink := s.anchors[id]
		if !sink.AcceptsCard(c) {
			continue
		}
		s.commit(NewMove(origin.ID, sink.ID, 1, false, origin.UnhideTop()))
		s.animate([]*card.Card{c}, sink.ID, nil)
		return true
	}
	return false
}

// smartMove sinks the first eligible card among the variant's sources.
func (s *Session) smartMove() {
	for _, id := range s.layout.SmartSources {
		if s.tryToSink(s.anchors[id]) {
			return
		}
	}
	s.vs.wasFling = false
}

func (s *Session) onFling(ev Event) {
	origin := s.anchor(ev.Anchor)
	if origin == nil || ev.Card == nil {
		return
	}
	s.vs.wasFling = true
	if !s.tryToSinkCard(origin, ev.Card) {
		origin.Push(ev.Card)
		s.vs.wasFling = false
	}
}

func (s *Session) signalWin() {
	if s.won {
		return
	}
	s.elapsed = s.elapsedLocked()
	s.won = true
	s.mode = ModeWin
	s.ignoreEvents = true
	s.events.clear()

	res := s.result()
	s.logger.WithFields(logrus.Fields{
		"elapsed": res.Elapsed,
		"moves":   res.Moves,
		"score":   res.Score,
	}).Info("game won")
	s.logAction("game_win", map[string]interface{}{"elapsedMs": res.Elapsed.Milliseconds(), "score": res.Score})
	if s.OnWin != nil {
		s.OnWin(res)
	}
}

// clearWin reopens play after a won game is undone.
func (s *Session) clearWin() {
	if !s.won {
		return
	}
	s.won = false
	s.ignoreEvents = false
	s.mode = ModeNormal
	s.started = s.now()
}

func (s *Session) result() Result {
	return Result{
		SessionID:  s.ID,
		PlayerID:   s.PlayerID,
		Variant:    s.Variant,
		TypeString: s.typeString(),
		Elapsed:    s.elapsedLocked(),
		Score:      s.score(),
		HasScore:   s.hasScore(),
		Moves:      s.history.Len(),
	}
}

// releaseHeld returns any lifted or expanded cards to their stacks.
func (s *Session) releaseHeld() {
	if s.moveCard != nil {
		s.moveCard.Release()
		s.moveCard = nil
	}
	if s.selectCard != nil {
		s.selectCard.Release()
		s.selectCard = nil
	}
	if s.mode == ModeMoveCard || s.mode == ModeSelect {
		s.mode = ModeNormal
	}
}

func (s *Session) score() int {
	if s.rules.score == nil {
		return 0
	}
	score, _ := s.rules.score(s)
	return score
}

func (s *Session) hasScore() bool {
	if s.rules.score == nil {
		return false
	}
	_, ok := s.rules.score(s)
	return ok
}

func (s *Session) typeString() string {
	if s.rules.typeString == nil {
		return s.rules.name
	}
	return s.rules.typeString(s)
}

func (s *Session) prettyName() string {
	if s.rules.prettyName == nil {
		return s.rules.name
	}
	return s.rules.prettyName(s)
}

func (s *Session) elapsedLocked() time.Duration {
	if s.paused || s.won {
		return s.elapsed
	}
	return s.elapsed + s.now().Sub(s.started)
}

// Intents.

// PickUp lifts cards from stack id starting at the card under (x, y). The run
// never extends below the stack's movable run; touching a card beneath it
// lifts the whole movable run when the touch is close to the run.
func (s *Session) PickUp(id int, x, y float32) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	if s.mode != ModeNormal || s.replay.active {
		return false
	}
	a := s.anchor(id)
	if a == nil {
		return false
	}
	movable := min(a.MovableRunLength(), maxRunLength)
	if movable == 0 {
		return false
	}
	idx := a.IndexAt(x, y)
	if idx < 0 {
		return false
	}
	n := a.Count() - idx
	if n > movable {
		first := a.CardAt(a.Count() - movable)
		if y < first.Y-float32(s.metrics.Height)/2 {
			return false
		}
		n = movable
	}
	s.moveCard = newMoveCard(a, a.PopRun(n), x, y)
	s.mode = ModeMoveCard
	return true
}

// PickUpRun lifts the top n cards of stack id, if they form a movable run.
func (s *Session) PickUpRun(id, n int) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	if s.mode != ModeNormal || s.replay.active {
		return false
	}
	a := s.anchor(id)
	if a == nil || n < 1 || n > min(a.MovableRunLength(), maxRunLength) {
		return false
	}
	run := a.PopRun(n)
	s.moveCard = newMoveCard(a, run, run[0].X, run[0].Y)
	s.mode = ModeMoveCard
	return true
}

// DragTo moves the lifted run with the pointer.
func (s *Session) DragTo(x, y float32) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.mode == ModeMoveCard && s.moveCard != nil {
		s.moveCard.DragTo(x, y)
	}
}

// DragBy moves the lifted run by an offset.
func (s *Session) DragBy(dx, dy float32) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.mode == ModeMoveCard && s.moveCard != nil {
		s.moveCard.DragBy(dx, dy)
	}
}

// Release drops the lifted run where it is. Every other stack is tried with
// an exact hit box first and then a loose one; the first that accepts the run
// gets it. A run that never moved is put back and its stack may expand; a
// fast single-card release is flung at the sinks. It reports whether a move
// was committed.
func (s *Session) Release(x, y float32, fast bool) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	if s.mode != ModeMoveCard || s.moveCard == nil {
		return false
	}
	mc := s.moveCard
	for close := 0; close < 2; close++ {
		for _, a := range s.anchors {
			if a == mc.Origin() {
				continue
			}
			if a.CanAccept(mc.Cards(), close) {
				s.dropOn(a)
				return true
			}
		}
	}

	switch {
	case !mc.HasMoved():
		origin := mc.Origin()
		s.releaseHeld()
		s.expand(origin, x, y)
	case fast && mc.Count() == 1:
		s.fling()
	default:
		s.releaseHeld()
	}
	return false
}

// DropAttempt drops the lifted run on one stack. The run is placed over the
// stack and accepted only if that stack's rules and hit box allow it at the
// given tolerance. A refused run goes back to its origin.
func (s *Session) DropAttempt(target, close int) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	if s.mode != ModeMoveCard || s.moveCard == nil {
		return false
	}
	a := s.anchor(target)
	if a == nil || a == s.moveCard.Origin() {
		s.releaseHeld()
		return false
	}
	s.moveCard.PlaceAt(a.TargetPoint())
	if !a.CanAccept(s.moveCard.Cards(), close) {
		s.releaseHeld()
		return false
	}
	s.dropOn(a)
	return true
}

// dropOn commits the lifted run to dest, flipping the origin's new top card
// if the lift left it with nothing face up.
func (s *Session) dropOn(dest *anchor.Anchor) {
	mc := s.moveCard
	origin := mc.Origin()
	unhide := origin.Visible() == 0 && origin.Count() > 0
	s.commit(NewMove(origin.ID, dest.ID, mc.Count(), false, unhide))
	s.moveCard = nil
	s.mode = ModeNormal
	mc.Dump(dest, unhide)
}

// Fling throws the lifted card at the sinks.
func (s *Session) Fling() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	if s.mode != ModeMoveCard || s.moveCard == nil {
		return false
	}
	return s.fling()
}

func (s *Session) fling() bool {
	mc := s.moveCard
	if mc.Count() != 1 || !s.sinkAccepts(mc.Cards()[0]) {
		s.releaseHeld()
		return false
	}
	c := mc.take()[0]
	s.moveCard = nil
	s.mode = ModeNormal
	s.post(Event{Type: EventFling, Anchor: mc.Origin().ID, Card: c})
	return true
}

// TapStack handles a tap that did not drag: the draw pile deals, a stack with
// a longer movable run expands for selection.
func (s *Session) TapStack(id int, x, y float32) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	if s.mode != ModeNormal || s.replay.active {
		return false
	}
	a := s.anchor(id)
	if a == nil {
		return false
	}
	if a.Policy.TapDeals {
		s.post(Event{Type: EventDeal, Anchor: id})
		return true
	}
	return s.expand(a, x, y)
}

// Deal taps the draw pile.
func (s *Session) Deal() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	if s.mode != ModeNormal || s.replay.active || s.layout.DrawPile < 0 {
		return false
	}
	s.post(Event{Type: EventDeal, Anchor: s.layout.DrawPile})
	return true
}

// expand opens the selection view over a's movable run when the point is on
// the stack and more than one card could be chosen.
func (s *Session) expand(a *anchor.Anchor, x, y float32) bool {
	n := min(a.MovableRunLength(), maxRunLength)
	if n < 2 || !a.IsOverDeck(x, y) {
		return false
	}
	s.selectCard = newSelectCard(a, a.PopRun(n), s.metrics)
	s.mode = ModeSelect
	return true
}

// SelectAt chooses the card under (x, y) in the expanded stack.
func (s *Session) SelectAt(x, y float32) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.mode != ModeSelect || s.selectCard == nil {
		return false
	}
	return s.selectCard.Tap(x, y)
}

// SelectIndex chooses the card at index i of the expanded run, deepest first.
func (s *Session) SelectIndex(i int) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.mode != ModeSelect || s.selectCard == nil {
		return false
	}
	return s.selectCard.Select(i)
}

// TakeSelection lifts the selected card and everything above it; the cards
// beneath the selection go back to the stack.
func (s *Session) TakeSelection() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.mode != ModeSelect || s.selectCard == nil {
		return false
	}
	sc := s.selectCard
	s.selectCard = nil
	run := sc.Dump()
	s.moveCard = newMoveCard(sc.Origin(), run, run[0].X, run[0].Y)
	s.mode = ModeMoveCard
	return true
}

// CancelSelection collapses the expanded stack.
func (s *Session) CancelSelection() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()
	s.releaseHeld()
}

// Undo reverts the most recent move.
func (s *Session) Undo() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	if (s.mode != ModeNormal && s.mode != ModeWin) || s.replay.active {
		return false
	}
	if s.history.Len() == 0 {
		return false
	}
	if !s.undo() {
		return false
	}
	s.clearWin()
	s.logAction("undo", nil)
	return true
}

// RestartGame undoes every move, back to the initial deal.
func (s *Session) RestartGame() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	s.stopReplay()
	s.snapAll()
	old := s.ignoreEvents
	s.ignoreEvents = true
	s.releaseHeld()
	for s.history.Len() > 0 {
		s.undo()
	}
	s.ignoreEvents = old
	s.events.clear()
	s.clearWin()
	s.mode = ModeNormal
	s.logAction("restart", nil)
}

// NewGame deals a new game with the session's options. A Vegas score carries
// over into the next game of the same type.
func (s *Session) NewGame() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.newGame(s.Options)
}

// NewGameWith deals a new game with different options.
func (s *Session) NewGameWith(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.newGame(opts)
	return nil
}

func (s *Session) newGame(opts Options) {
	s.stopReplay()
	s.snapAll()
	s.releaseHeld()

	prevType, prevScore, hadScore := s.typeString(), s.score(), s.hasScore()
	s.Options = opts
	s.ignoreEvents = false
	s.build()
	if hadScore && s.hasScore() && s.typeString() == prevType {
		s.vs.carryOver = prevScore
	}
	s.dealFresh()
}

// Resize lays the table out for a w x h screen.
func (s *Session) Resize(w, h int) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.applyResize(w, h)
}

func (s *Session) applyResize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	s.width, s.height = w, h
	s.metrics = card.MetricsFor(s.rules.columns, w)
	if s.rules.resize != nil {
		s.rules.resize(s, w, h)
	}
	for _, a := range s.anchors {
		a.Relayout()
	}
}

// Pause stops the clock, lands every card in flight and stops a replay.
func (s *Session) Pause() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.paused {
		return
	}
	s.stopReplay()
	s.snapAll()
	s.releaseHeld()
	s.elapsed = s.elapsedLocked()
	s.paused = true
	s.pausedAt = s.now()
	s.events.clear()
}

// Resume restarts the clock.
func (s *Session) Resume() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	s.started = s.now()
}

// IdleSince reports when the session was paused. ok is false while the
// clock runs.
func (s *Session) IdleSince() (since time.Time, ok bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.pausedAt, s.paused
}

// Accessors.

func (s *Session) Mode() Mode {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.mode
}

func (s *Session) Won() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.won
}

func (s *Session) Layout() Layout {
	return s.layout
}

// Anchor returns stack id for inspection. Callers must hold Mu or otherwise
// ensure the session is idle.
func (s *Session) Anchor(id int) *anchor.Anchor {
	return s.anchor(id)
}

func (s *Session) StackCount() int {
	return len(s.anchors)
}

func (s *Session) History() []Move {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.history.Moves()
}

func (s *Session) Elapsed() time.Duration {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) TypeString() string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.typeString()
}

// PrettyName is the display title of the game, e.g. "Spider Two Suit".
func (s *Session) PrettyName() string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.prettyName()
}

// Score is the Vegas score; HasScore reports whether the game keeps one.
func (s *Session) Score() int {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.score()
}

func (s *Session) HasScore() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.hasScore()
}

func (s *Session) Status() string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.status()
}

func (s *Session) status() string {
	if s.rules.status == nil {
		return ""
	}
	return s.rules.status(s)
}

// SanityCheck verifies that every card of the deal is on the table, in hand
// or in flight exactly as many times as the deck holds it.
func (s *Session) SanityCheck() error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	seen := map[cardKey]int{}
	add := func(cards []*card.Card) {
		for _, c := range cards {
			seen[cardKey{c.Value, c.Suit}]++
		}
	}
	for _, a := range s.anchors {
		add(a.Cards())
	}
	if s.moveCard != nil {
		add(s.moveCard.Cards())
	}
	if s.selectCard != nil {
		add(s.selectCard.Cards())
	}
	for _, t := range s.inFlight {
		add(t.cards)
	}
	for _, t := range s.landing {
		add(t.cards)
	}

	want := expectedCards(s.rules, s.Options)
	for k, n := range want {
		if seen[k] != n {
			return fmt.Errorf("card %v seen %d times, want %d", card.New(k.value, k.suit), seen[k], n)
		}
	}
	for k, n := range seen {
		if _, ok := want[k]; !ok {
			return fmt.Errorf("unexpected card %v seen %d times", card.New(k.value, k.suit), n)
		}
	}
	return nil
}

type cardKey struct {
	value int
	suit  card.Suit
}

// expectedCards is the multiset of cards a deck for r holds.
func expectedCards(r *rules, o Options) map[cardKey]int {
	suits := r.suitCount(o)
	copies := r.decks * 4 / suits
	want := map[cardKey]int{}
	for su := 0; su < suits; su++ {
		for v := card.Ace; v <= card.King; v++ {
			want[cardKey{v, card.Suit(su)}] = copies
		}
	}
	return want
}
