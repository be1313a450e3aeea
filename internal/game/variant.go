// internal/game/variant.go
package game

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/solitaire/internal/anchor"
	"github.com/jason-s-yu/solitaire/internal/card"
)

// Variant selects the rule set of a session.
type Variant int

const (
	Klondike     Variant = 1
	Spider       Variant = 2
	Freecell     Variant = 3
	FortyThieves Variant = 4
)

var variantNames = map[Variant]string{
	Klondike:     "klondike",
	Spider:       "spider",
	Freecell:     "freecell",
	FortyThieves: "fortythieves",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant accepts a variant name, case-insensitively.
func ParseVariant(name string) (Variant, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for v, n := range variantNames {
		if n == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

func (v Variant) MarshalText() ([]byte, error) {
	if _, ok := variantNames[v]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Layout names the stacks of a variant by role. Only variant setup code
// assigns raw indices; everything else goes through these roles.
type Layout struct {
	DrawPile int   `json:"drawPile"` // -1 when absent
	Waste    int   `json:"waste"`    // -1 when absent
	Overflow int   `json:"overflow"` // -1 when absent
	Sinks    []int `json:"sinks"`
	Tableau  []int `json:"tableau"`
	Cells    []int `json:"cells,omitempty"`

	// SmartSources are scanned in order when auto-sinking.
	SmartSources []int `json:"-"`
}

func newLayout() Layout {
	return Layout{DrawPile: -1, Waste: -1, Overflow: -1}
}

// Role describes what stack id is used for.
func (l Layout) Role(id int) string {
	switch {
	case id == l.DrawPile:
		return "draw_pile"
	case id == l.Waste:
		return "waste"
	case id == l.Overflow:
		return "overflow"
	case contains(l.Sinks, id):
		return "sink"
	case contains(l.Cells, id):
		return "cell"
	case contains(l.Tableau, id):
		return "tableau"
	}
	return ""
}

func (l Layout) IsSink(id int) bool {
	return contains(l.Sinks, id)
}

func contains(ids []int, id int) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

// variantState is the per-variant bookkeeping that survives between events.
type variantState struct {
	dealsLeft    int  // Klondike redeals left, -1 for unlimited
	carryOver    int  // Klondike Vegas score carried between games
	stillDealing bool // Spider one-card-at-a-time deal in progress
	wasFling     bool // the current auto-move chain started with a fling
}

// rules is one row of the variant dispatch table. Nil handlers do nothing.
type rules struct {
	name       string
	stackCount int
	decks      int
	columns    int // card columns across the screen, for sizing

	suits      func(o Options) int
	setup      func(s *Session)
	deal       func(s *Session, d *card.Deck)
	onDeal     func(s *Session)
	onStackAdd func(s *Session, a *anchor.Anchor)
	onDealNext func(s *Session, next int)
	freeSpaces func(s *Session) int
	resize     func(s *Session, w, h int)
	typeString func(s *Session) string
	prettyName func(s *Session) string
	status     func(s *Session) string
	score      func(s *Session) (int, bool)

	// rulesExtra round-trips through the save format.
	extra        func(s *Session) int
	restoreExtra func(s *Session, extra int)
	addDealCount func(s *Session)
}

var variantTable map[Variant]*rules

func init() {
	variantTable = map[Variant]*rules{
		Klondike:     &klondikeRules,
		Spider:       &spiderRules,
		Freecell:     &freecellRules,
		FortyThieves: &fortyThievesRules,
	}
}

func rulesFor(v Variant) (*rules, error) {
	r, ok := variantTable[v]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	return r, nil
}

func (r *rules) cardCount() int {
	return r.decks * 52
}

func (r *rules) suitCount(o Options) int {
	if r.suits == nil {
		return 4
	}
	return r.suits(o)
}

// Shared rule handlers.

// sinkStackAdd is the stack-add handler of the foundation variants: win when
// every sink is complete, otherwise keep auto-sinking if the settings allow.
func sinkStackAdd(s *Session, a *anchor.Anchor) {
	if !s.layout.IsSink(a.ID) {
		return
	}
	if s.sinksComplete() {
		s.signalWin()
		return
	}
	auto := s.Options.AutoMove
	if auto == AutoMoveAlways || (auto == AutoMoveFlingOnly && s.vs.wasFling) {
		s.post(Event{Type: EventSmartMove, Anchor: -1})
		return
	}
	s.vs.wasFling = false
}

func (s *Session) sinksComplete() bool {
	for _, id := range s.layout.Sinks {
		if s.anchors[id].Count() != card.King {
			return false
		}
	}
	return true
}

// countEmpty counts the empty stacks among ids.
func (s *Session) countEmpty(ids []int) int {
	n := 0
	for _, id := range ids {
		if s.anchors[id].Count() == 0 {
			n++
		}
	}
	return n
}

// columnX is the left edge of column i of n spread evenly across width w.
func columnX(i, n, w int, m card.Metrics) float32 {
	gap := float32(w-n*m.Width) / float32(n+1)
	if gap < 0 {
		gap = 0
	}
	return gap + float32(i)*(float32(m.Width)+gap)
}

// layoutTableau places the tableau columns on one row starting at y, with
// the outer columns' hit boxes stretched to the screen edges.
func (s *Session) layoutTableau(cols []int, y float32, w, h int) {
	for i, id := range cols {
		a := s.anchors[id]
		a.SetPosition(columnX(i, len(cols), w, s.metrics), y)
		a.SetMaxHeight(float32(h) - y)
		a.SetBottom(float32(h))
		a.SetLeftEdge(-1)
		a.SetRightEdge(-1)
	}
	if len(cols) > 0 {
		s.anchors[cols[0]].SetLeftEdge(0)
		s.anchors[cols[len(cols)-1]].SetRightEdge(float32(w))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
