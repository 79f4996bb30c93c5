// Package game owns the five-card-draw rules: seating, antes, bidding
// rounds, the draw phase, folds and the showdown. A Game is mutated by
// exactly one goroutine; it does no locking of its own.
package game

import (
	"fmt"
	"sort"

	"drawpoker/deck"
	"drawpoker/hand"
)

const handSize = 5

// Game is one table. Exactly one hand is in progress at a time.
type Game struct {
	id           int
	seats        int
	ante         int
	pot          int
	currentStake int // highest cumulative bid of the round
	dealerIdx    int
	players      []*Player // in seating order
	deck         deck.Deck
	inProgress   bool
}

// New constructs a table with a fixed number of seats (2-4).
func New(id, seats, ante int) (*Game, error) {
	if seats < 2 {
		return nil, ErrTooFewPlayers
	}
	if seats > 4 {
		return nil, ErrTooManyPlayers
	}
	return &Game{
		id:        id,
		seats:     seats,
		ante:      ante,
		dealerIdx: -1, // first hand advances to seat 0
	}, nil
}

func (g *Game) ID() int            { return g.id }
func (g *Game) Seats() int         { return g.seats }
func (g *Game) Ante() int          { return g.ante }
func (g *Game) Pot() int           { return g.pot }
func (g *Game) CurrentStake() int  { return g.currentStake }
func (g *Game) InProgress() bool   { return g.inProgress }
func (g *Game) Players() []*Player { return g.players }

// Player finds a seat by id.
func (g *Game) Player(id int) (*Player, bool) {
	for _, p := range g.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// AddPlayer seats a new player with the given starting credit.
func (g *Game) AddPlayer(id, credit int) (*Player, error) {
	if len(g.players) >= g.seats {
		return nil, ErrSeatsFull
	}
	p := &Player{ID: id, Credit: credit}
	g.players = append(g.players, p)
	return p, nil
}

// CanBegin reports whether every seat is taken.
func (g *Game) CanBegin() bool {
	return len(g.players) == g.seats
}

// StartHand collects antes, advances the dealer and deals five cards to
// each player. Ante collection is atomic: if any player cannot cover
// the ante, no credits move.
func (g *Game) StartHand() error {
	if g.inProgress {
		return ErrHandInProgress
	}
	if len(g.players) < g.seats {
		return ErrNotEnoughPlayers
	}
	for _, p := range g.players {
		if p.Credit < g.ante {
			return fmt.Errorf("player %d cannot cover the ante of %d: %w", p.ID, g.ante, ErrInsufficientCredit)
		}
	}

	g.dealerIdx = (g.dealerIdx + 1) % len(g.players)
	g.currentStake = 0

	for _, p := range g.players {
		p.resetForHand()
		p.bid(g.ante)
		p.CurrentBid = 0 // the ante is not part of the first negotiation round
		g.pot += g.ante
	}

	g.deck = deck.New()
	g.deck.Shuffle()

	// one card at a time, round-robin, starting just after the dealer
	order := g.BiddingOrder()
	for i := 0; i < handSize; i++ {
		for _, p := range order {
			card, err := g.deck.Deal()
			if err != nil {
				return err
			}
			p.Hand = append(p.Hand, card)
		}
	}

	g.inProgress = true
	return nil
}

// BiddingOrder is the seating order starting with the seat just after
// the dealer. Folded players are included; callers skip them.
func (g *Game) BiddingOrder() []*Player {
	order := make([]*Player, 0, len(g.players))
	for i := 1; i <= len(g.players); i++ {
		order = append(order, g.players[(g.dealerIdx+i)%len(g.players)])
	}
	return order
}

// Bid commits amount of the player's credit to the pot. The player's
// cumulative bid for the round must at least call the current stake.
func (g *Game) Bid(playerID, amount int) error {
	p, ok := g.Player(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	if amount+p.CurrentBid < g.currentStake {
		return fmt.Errorf("%w: %d to call", ErrTooSmallBid, g.currentStake-p.CurrentBid)
	}
	if err := p.bid(amount); err != nil {
		return err
	}
	g.pot += amount
	p.HasActed = true
	if p.CurrentBid > g.currentStake {
		g.currentStake = p.CurrentBid
	}
	return nil
}

// HowMuchToCall is the amount the player still owes to stay in.
func (g *Game) HowMuchToCall(playerID int) int {
	p, ok := g.Player(playerID)
	if !ok {
		return 0
	}
	return g.currentStake - p.CurrentBid
}

// Fold withdraws the player from the current hand. Folding twice, or
// folding an id that is not seated, is a no-op. The return value is the
// early-showdown signal: true when at most one active player remains.
func (g *Game) Fold(playerID int) bool {
	p, ok := g.Player(playerID)
	if !ok {
		return false
	}
	p.Folded = true
	return g.countActive() <= 1
}

func (g *Game) countActive() int {
	active := 0
	for _, p := range g.players {
		if !p.Folded {
			active++
		}
	}
	return active
}

// ActivePlayers are the non-folded seats in seating order.
func (g *Game) ActivePlayers() []*Player {
	var active []*Player
	for _, p := range g.players {
		if !p.Folded {
			active = append(active, p)
		}
	}
	return active
}

// BiddingOver reports whether every active player has acted and matched
// the current stake. When true it also resets the round: currentBid and
// hasActed on every player and the negotiation stake all return to zero.
// The reset is part of the contract.
func (g *Game) BiddingOver() bool {
	for _, p := range g.players {
		if p.Folded {
			continue
		}
		if !p.HasActed || p.CurrentBid != g.currentStake {
			return false
		}
	}

	for _, p := range g.players {
		p.CurrentBid = 0
		p.HasActed = false
	}
	g.currentStake = 0
	return true
}

// Draw discards the cards at the given hand positions and deals the
// same number of replacements. At most four cards may go.
func (g *Game) Draw(playerID int, discards []int) error {
	p, ok := g.Player(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	if len(discards) > 4 {
		return ErrTooManyDiscards
	}
	for _, idx := range discards {
		if idx < 0 || idx >= handSize {
			return fmt.Errorf("%w: %d", ErrInvalidCardIndex, idx)
		}
	}

	// dedupe, then remove from the highest index down so earlier
	// removals don't shift later ones
	seen := map[int]bool{}
	unique := make([]int, 0, len(discards))
	for _, idx := range discards {
		if !seen[idx] {
			seen[idx] = true
			unique = append(unique, idx)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(unique)))

	for _, idx := range unique {
		p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	}
	for range unique {
		card, err := g.deck.Deal()
		if err != nil {
			return err
		}
		p.Hand = append(p.Hand, card)
	}
	return nil
}

// Showdown ranks the active players, splits the pot evenly among the
// winners and ends the hand. The remainder of an uneven split stays
// undistributed. Seats that asked to
// leave mid-hand are removed once the pot settles.
func (g *Game) Showdown() (prizes map[int]int, remainder int) {
	prizes = map[int]int{}

	active := g.ActivePlayers()
	var winners []*Player

	if len(active) == 0 {
		// everyone left mid-hand; the pot has no claimant
		remainder = g.pot
		g.endHand()
		return prizes, remainder
	}

	if len(active) == 1 {
		// everyone else folded; the hand is not consulted
		winners = active
	} else {
		ranked := make([]*Player, len(active))
		copy(ranked, active)
		sort.SliceStable(ranked, func(i, j int) bool {
			return hand.Compare(ranked[i].Hand, ranked[j].Hand) > 0
		})

		// the best hand wins, plus the chain of exact ties below it
		winners = []*Player{ranked[0]}
		for i := 1; i < len(ranked); i++ {
			if hand.Compare(ranked[i-1].Hand, ranked[i].Hand) != 0 {
				break
			}
			winners = append(winners, ranked[i])
		}
	}

	share := g.pot / len(winners)
	remainder = g.pot % len(winners)
	for _, w := range winners {
		w.Credit += share
		prizes[w.ID] = share
	}

	g.endHand()
	return prizes, remainder
}

func (g *Game) endHand() {
	g.pot = 0
	g.currentStake = 0
	g.inProgress = false
	for _, p := range g.players {
		p.Hand = nil
		p.CurrentBid = 0
		p.HasActed = false
	}
	g.removeLeavers()
}

// RemovePlayer frees the player's seat. Mid-hand this is an implicit
// fold with the removal deferred until the showdown settles; the
// return value is the early-showdown signal from Fold.
func (g *Game) RemovePlayer(playerID int) bool {
	p, ok := g.Player(playerID)
	if !ok {
		return false
	}
	if g.inProgress {
		p.leaving = true
		return g.Fold(playerID)
	}
	g.remove(playerID)
	return false
}

func (g *Game) remove(playerID int) {
	for i, p := range g.players {
		if p.ID == playerID {
			if i <= g.dealerIdx && g.dealerIdx >= 0 {
				g.dealerIdx--
			}
			g.players = append(g.players[:i], g.players[i+1:]...)
			return
		}
	}
}

func (g *Game) removeLeavers() {
	for _, p := range append([]*Player(nil), g.players...) {
		if p.leaving {
			g.remove(p.ID)
		}
	}
}
