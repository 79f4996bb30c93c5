package deck

import (
	"errors"
	"math/rand"
)

// ErrEmpty is returned by Deal when no cards remain.
var ErrEmpty = errors.New("deck: no cards left")

// Deck is an ordered sequence of remaining cards, owned by one game.
// It starts at 52 and shrinks by one per Deal.
type Deck []Card

// New creates the canonical 52-card deck, unshuffled.
func New() Deck {
	cards := make(Deck, 0, 52)
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Shuffle permutes the deck uniformly at random in place.
func (d *Deck) Shuffle() {
	cards := *d
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Deal removes and returns the top card.
func (d *Deck) Deal() (Card, error) {
	if len(*d) == 0 {
		return Card{}, ErrEmpty
	}
	top := (*d)[0]
	*d = (*d)[1:]
	return top, nil
}
