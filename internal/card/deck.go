// internal/card/deck.go
package card

import (
	"math/rand"
	"time"
)

const shufflePasses = 3

// Deck is a shuffled draw source built from one or more packs.
type Deck struct {
	cards []*Card
}

// NewDeck builds decks*52 cards using only the first `suits` suits. Partial
// suit decks are multiplied so the total is always decks*52 (2 suits doubles
// the copies, 1 suit quadruples them). A nil rng seeds from the clock.
func NewDeck(decks, suits int, rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch suits {
	case 1:
		decks *= 4
	case 2:
		decks *= 2
	default:
		suits = 4
	}

	d := &Deck{cards: make([]*Card, 0, decks*suits*13)}
	for deck := 0; deck < decks; deck++ {
		for suit := 0; suit < suits; suit++ {
			for value := Ace; value <= King; value++ {
				d.cards = append(d.cards, New(value, Suit(suit)))
			}
		}
	}
	for i := 0; i < shufflePasses; i++ {
		d.shuffle(rng)
	}
	return d
}

// shuffle swaps every card with a strictly lower index, walking down from the
// end of the pack.
func (d *Deck) shuffle(rng *rand.Rand) {
	for last := len(d.cards) - 1; last > 0; last-- {
		j := rng.Intn(last)
		d.cards[last], d.cards[j] = d.cards[j], d.cards[last]
	}
}

// Pop removes the card at the end of the deck, or returns nil when empty.
func (d *Deck) Pop() *Card {
	n := len(d.cards)
	if n == 0 {
		return nil
	}
	c := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return c
}

func (d *Deck) Empty() bool {
	return len(d.cards) == 0
}

func (d *Deck) Len() int {
	return len(d.cards)
}
