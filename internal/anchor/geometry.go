// internal/anchor/geometry.go
package anchor

const (
	smallSpacing  = 7 // below this a cascade collapses its hidden cards
	hiddenSpacing = 3 // vertical offset between face-down cards
	bumpTolerance = 10
)

type geometry struct {
	x, y       float32
	leftEdge   float32 // -1 when unset
	rightEdge  float32 // -1 when unset
	bottom     float32 // -1 when unset
	maxHeight  float32 // 0 means unbounded
	showing    int
	spacing    float32
	hideHidden bool
}

// Rect is an axis aligned box in screen pixels.
type Rect struct {
	Left   float32 `json:"left"`
	Top    float32 `json:"top"`
	Right  float32 `json:"right"`
	Bottom float32 `json:"bottom"`
}

func (r Rect) Contains(x, y float32) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

func (a *Anchor) SetPosition(x, y float32) {
	a.geom.x = x
	a.geom.y = y
	a.layout()
}

func (a *Anchor) Position() (float32, float32) {
	return a.geom.x, a.geom.y
}

// SetLeftEdge extends the hit box to x; -1 clears it.
func (a *Anchor) SetLeftEdge(x float32) {
	a.geom.leftEdge = x
}

// SetRightEdge extends the hit box to x; -1 clears it.
func (a *Anchor) SetRightEdge(x float32) {
	a.geom.rightEdge = x
}

// SetBottom lets the hit box reach the bottom of the screen once the
// cascade gets close to it; -1 clears it.
func (a *Anchor) SetBottom(y float32) {
	a.geom.bottom = y
}

// SetMaxHeight bounds the cascade height used to compute card spacing.
func (a *Anchor) SetMaxHeight(h float32) {
	a.geom.maxHeight = h
	a.layout()
}

// SetShowing sets how many top cards a waste fan displays.
func (a *Anchor) SetShowing(n int) {
	if n < 1 {
		n = 1
	}
	a.geom.showing = n
	a.layout()
}

func (a *Anchor) Showing() int {
	return a.geom.showing
}

func (a *Anchor) Spacing() float32 {
	return a.geom.spacing
}

func (a *Anchor) HidesHidden() bool {
	return a.geom.hideHidden
}

// Relayout recomputes card positions, e.g. after the card metrics change.
func (a *Anchor) Relayout() {
	a.layout()
}

// TargetPoint is where a dragged run's lead card should be placed to land on
// this stack.
func (a *Anchor) TargetPoint() (float32, float32) {
	if top := a.Top(); top != nil {
		return top.X, top.Y
	}
	return a.geom.x, a.geom.y
}

// DropBox is the hit area of the stack. With deck set the box covers the
// whole cascade instead of only the top card.
func (a *Anchor) DropBox(close int, deck bool) Rect {
	w := float32(a.metrics.Width)
	h := float32(a.metrics.Height)

	topX, topY := a.geom.x, a.geom.y
	if top := a.Top(); top != nil {
		topX, topY = top.X, top.Y
	}

	r := Rect{Left: topX, Right: topX + w, Top: topY, Bottom: topY + h}
	if a.geom.leftEdge != -1 {
		r.Left = a.geom.leftEdge
	}
	if a.geom.rightEdge != -1 {
		r.Right = a.geom.rightEdge
	}
	if len(a.cards) == 0 || deck {
		r.Top = a.geom.y
	}

	grow := float32(close)
	r.Left -= grow * w / 2
	r.Right += grow * w / 2
	r.Top -= grow * h / 2
	r.Bottom += grow * h / 2

	if a.geom.bottom != -1 && r.Bottom+bumpTolerance >= a.geom.bottom {
		r.Bottom = a.geom.bottom
	}
	return r
}

// IsOverCard hit-tests the top card area.
func (a *Anchor) IsOverCard(x, y float32, close int) bool {
	return a.DropBox(close, false).Contains(x, y)
}

// IsOverDeck hit-tests the whole stack.
func (a *Anchor) IsOverDeck(x, y float32) bool {
	return a.DropBox(0, true).Contains(x, y)
}

// IndexAt returns the index of the topmost card whose face contains y, for
// picking a card out of a cascade. It returns -1 when y misses the stack.
func (a *Anchor) IndexAt(x, y float32) int {
	if !a.IsOverDeck(x, y) {
		return -1
	}
	h := float32(a.metrics.Height)
	for i := len(a.cards) - 1; i >= 0; i-- {
		c := a.cards[i]
		if y >= c.Y && y <= c.Y+h {
			return i
		}
	}
	return -1
}

func (a *Anchor) layout() {
	switch a.Policy.Spread {
	case SpreadDown:
		a.layoutCascade()
	case SpreadRight:
		a.layoutFan()
	default:
		for _, c := range a.cards {
			c.SetPosition(a.geom.x, a.geom.y)
		}
	}
}

func (a *Anchor) layoutFan() {
	w := float32(a.metrics.Width)
	first := len(a.cards) - a.geom.showing
	if first < 0 {
		first = 0
	}
	for i, c := range a.cards {
		if i < first {
			c.SetPosition(a.geom.x, a.geom.y)
			continue
		}
		c.SetPosition(a.geom.x+float32(i-first)*w/2, a.geom.y)
	}
}

func (a *Anchor) layoutCascade() {
	a.checkSizing()

	startY := float32(a.hidden * hiddenSpacing)
	if a.geom.hideHidden {
		startY = hiddenSpacing
	}
	for i, c := range a.cards {
		if i < a.hidden {
			y := a.geom.y
			if !a.geom.hideHidden {
				y += float32(i * hiddenSpacing)
			}
			c.SetPosition(a.geom.x, y)
			continue
		}
		c.SetPosition(a.geom.x, a.geom.y+startY+float32(i-a.hidden)*a.geom.spacing)
	}
}

// checkSizing picks the vertical spacing between face-up cards so the
// cascade fits in maxHeight, collapsing the hidden cards when it gets tight.
func (a *Anchor) checkSizing() {
	h := float32(a.metrics.Height)
	maxSpacing := h / 3
	showing := a.Visible()

	a.geom.hideHidden = false
	if len(a.cards) < 2 || showing < 2 || a.geom.maxHeight <= 0 {
		a.geom.spacing = maxSpacing
		return
	}

	spaceLeft := a.geom.maxHeight - float32(a.hidden*hiddenSpacing) - h
	spacing := spaceLeft / float32(showing-1)
	if spacing < smallSpacing && a.hidden > 1 {
		a.geom.hideHidden = true
		spaceLeft = a.geom.maxHeight - hiddenSpacing - h
		spacing = spaceLeft / float32(showing-1)
	}
	if spacing > maxSpacing {
		spacing = maxSpacing
	}
	a.geom.spacing = spacing
}
