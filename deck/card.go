package deck

import "fmt"

// Rank represents a rank in a deck of cards.
// Ranks are ordered low to high so they can be compared directly;
// Ace is high (Ace-low straights are handled by the hand package).
type Rank int

var rankNames = []string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine", "Ten", "Jack", "Queen", "King", "Ace"}

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

func (r Rank) String() string {
	return rankNames[r]
}

// Suit represents a suit in a deck of cards
type Suit int

var suitNames = []string{"Clubs", "Diamonds", "Hearts", "Spades"}

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

func (s Suit) String() string {
	return suitNames[s]
}

// Card represents a playing card. It is an immutable value type;
// two Cards are equal iff their rank and suit are equal.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard constructs a card, panicking on out-of-range arguments.
// The canonical deck in New is the only construction source the
// game itself uses.
func NewCard(rank Rank, suit Suit) Card {
	if rank < Two || rank > Ace || suit < Clubs || suit > Spades {
		panic(fmt.Sprintf("deck: invalid card (%d, %d)", rank, suit))
	}
	return Card{Rank: rank, Suit: suit}
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}
