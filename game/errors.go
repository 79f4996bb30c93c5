package game

import "errors"

var (
	// ErrTooFewPlayers and ErrTooManyPlayers bound the table size.
	ErrTooFewPlayers  = errors.New("minimum of 2 players required")
	ErrTooManyPlayers = errors.New("maximum of 4 players allowed")

	// ErrSeatsFull rejects a join once every seat is taken.
	ErrSeatsFull = errors.New("no free seats")

	// ErrNotEnoughPlayers rejects starting a hand before seats fill.
	ErrNotEnoughPlayers = errors.New("not enough players seated")

	// ErrInsufficientCredit rejects a bid (or an ante) a player cannot cover.
	ErrInsufficientCredit = errors.New("not enough credit")

	// ErrTooSmallBid rejects a bid below the amount needed to call.
	ErrTooSmallBid = errors.New("bid below the current stake")

	// ErrTooManyDiscards rejects a draw of more than four cards.
	ErrTooManyDiscards = errors.New("at most 4 cards may be discarded")

	// ErrInvalidCardIndex rejects a discard index outside the hand.
	ErrInvalidCardIndex = errors.New("no card at that index")

	// ErrUnknownPlayer rejects an action from an id that is not seated.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrHandInProgress rejects starting a hand while one is being played.
	ErrHandInProgress = errors.New("hand already in progress")
)
