package game

import (
	"drawpoker/deck"
	"drawpoker/hand"
)

// Player is one seat at the table. It is owned exclusively by its Game:
// credit persists across hands for the lifetime of the seat, while the
// hand and round flags are reset each new hand.
type Player struct {
	ID         int
	Hand       []deck.Card
	Credit     int
	CurrentBid int // amount committed in the current negotiation round
	TotalBid   int // amount committed across the whole hand
	Folded     bool
	HasActed   bool

	leaving bool // removal requested mid-hand, honored after showdown
}

// Evaluation is the category of the player's current hand.
func (p *Player) Evaluation() hand.Value {
	return hand.Evaluate(p.Hand)
}

// bid moves amount from the player's credit into the hand.
func (p *Player) bid(amount int) error {
	if amount > p.Credit {
		return ErrInsufficientCredit
	}
	p.Credit -= amount
	p.CurrentBid += amount
	p.TotalBid += amount
	return nil
}

func (p *Player) resetForHand() {
	p.Hand = nil
	p.CurrentBid = 0
	p.TotalBid = 0
	p.Folded = false
	p.HasActed = false
}
