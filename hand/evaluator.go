// Package hand classifies five-card poker hands and breaks ties
// between hands of the same category.
package hand

import (
	"sort"

	"drawpoker/deck"
)

// Value is the category of a five-card hand, ordered worst to best.
type Value int

const (
	HighCard Value = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var valueNames = []string{
	"High card",
	"Pair",
	"Two pair",
	"Three of a kind",
	"Straight",
	"Flush",
	"Full house",
	"Four of a kind",
	"Straight flush",
}

func (v Value) String() string {
	return valueNames[v]
}

// Evaluate classifies a five-card hand. Categories are mutually
// exclusive; the highest matching one wins.
func Evaluate(cards []deck.Card) Value {
	h := sortedByRankDesc(cards)

	straight := isStraight(h)
	flush := isFlush(h)

	switch {
	case straight && flush:
		return StraightFlush
	case hasGroupOf(h, 4):
		return FourOfAKind
	case hasGroupOf(h, 3) && hasDistinctPairBelow(h, 3):
		return FullHouse
	case flush:
		return Flush
	case straight:
		return Straight
	case hasGroupOf(h, 3):
		return ThreeOfAKind
	case pairCount(h) == 2:
		return TwoPair
	case pairCount(h) == 1:
		return Pair
	}
	return HighCard
}

// Compare reports whether hand a is worse (negative), equal (zero) or
// better (positive) than hand b. Hands of equal category are settled by
// the category's tie-break: straights by the high card of the run (an
// ace-low wheel counts as five-high), grouped hands by group rank then
// every remaining kicker from highest to lowest.
func Compare(a, b []deck.Card) int {
	va, vb := Evaluate(a), Evaluate(b)
	if va != vb {
		return int(va) - int(vb)
	}

	ha, hb := sortedByRankDesc(a), sortedByRankDesc(b)

	switch va {
	case Straight, StraightFlush:
		return int(runHigh(ha)) - int(runHigh(hb))
	default:
		return compareRankKeys(rankKey(ha), rankKey(hb))
	}
}

// sortedByRankDesc returns a copy of cards ordered by rank, highest first.
func sortedByRankDesc(cards []deck.Card) []deck.Card {
	h := make([]deck.Card, len(cards))
	copy(h, cards)
	sort.Slice(h, func(i, j int) bool {
		return h[i].Rank > h[j].Rank
	})
	return h
}

func isFlush(h []deck.Card) bool {
	for i := 1; i < len(h); i++ {
		if h[i].Suit != h[0].Suit {
			return false
		}
	}
	return true
}

// isStraight expects h sorted by rank descending. Ace may head an
// ace-high run (A-K-Q-J-10) or tail an ace-low run (5-4-3-2-A); no
// other wrap-around counts.
func isStraight(h []deck.Card) bool {
	if h[0].Rank == deck.Ace {
		for i := 1; i < len(h)-1; i++ {
			if h[i].Rank-h[i+1].Rank != 1 {
				return false
			}
		}
		return h[1].Rank == deck.King || h[len(h)-1].Rank == deck.Two
	}

	for i := 0; i < len(h)-1; i++ {
		if h[i].Rank-h[i+1].Rank != 1 {
			return false
		}
	}
	return true
}

// runHigh is the high card of a straight once the ace-low wheel is
// normalized: in 5-4-3-2-A the five heads the run, not the ace.
func runHigh(h []deck.Card) deck.Rank {
	if h[0].Rank == deck.Ace && h[1].Rank == deck.Five {
		return deck.Five
	}
	return h[0].Rank
}

func rankCounts(h []deck.Card) map[deck.Rank]int {
	counts := map[deck.Rank]int{}
	for _, c := range h {
		counts[c.Rank]++
	}
	return counts
}

func hasGroupOf(h []deck.Card, n int) bool {
	for _, count := range rankCounts(h) {
		if count == n {
			return true
		}
	}
	return false
}

// hasDistinctPairBelow reports whether a pair exists on a rank other
// than the rank of the n-group (the full house test).
func hasDistinctPairBelow(h []deck.Card, n int) bool {
	counts := rankCounts(h)
	var groupRank deck.Rank = -1
	for rank, count := range counts {
		if count == n {
			groupRank = rank
		}
	}
	for rank, count := range counts {
		if rank != groupRank && count >= 2 {
			return true
		}
	}
	return false
}

func pairCount(h []deck.Card) int {
	pairs := 0
	for _, count := range rankCounts(h) {
		if count == 2 {
			pairs++
		}
	}
	return pairs
}

// rankKey orders the hand's ranks by group size, then rank, both
// descending. For a pair it yields [pair, kicker, kicker, kicker]; for
// two pair [high pair, low pair, kicker]; for a full house [triple,
// pair]; for quads [quad, kicker]; for plain hands all five ranks.
// Comparing keys element-wise walks every kicker, not just the first.
func rankKey(h []deck.Card) []deck.Rank {
	counts := rankCounts(h)

	ranks := make([]deck.Rank, 0, len(counts))
	for rank := range counts {
		ranks = append(ranks, rank)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if counts[ranks[i]] != counts[ranks[j]] {
			return counts[ranks[i]] > counts[ranks[j]]
		}
		return ranks[i] > ranks[j]
	})
	return ranks
}

func compareRankKeys(a, b []deck.Rank) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return 0
}
