package hand

import (
	"testing"

	"github.com/paulhankin/poker"
	"github.com/stretchr/testify/require"

	"drawpoker/deck"
)

// hankinCard converts to the reference evaluator's encoding: suits 0-3
// clubs through spades, ranks 1-13 with ace as 1.
func hankinCard(t *testing.T, c deck.Card) poker.Card {
	t.Helper()

	rank := int(c.Rank) + 2
	if c.Rank == deck.Ace {
		rank = 1
	}
	card, err := poker.MakeCard(poker.Suit(c.Suit), poker.Rank(rank))
	require.NoError(t, err)
	return card
}

func hankinScore(t *testing.T, h []deck.Card) int16 {
	t.Helper()

	var cards [5]poker.Card
	for i, c := range h {
		cards[i] = hankinCard(t, c)
	}
	return poker.Eval5(&cards)
}

// TestCompareAgainstReferenceEvaluator cross-checks Compare's ordering
// against an independent evaluator over every pair of a varied set of
// hands.
func TestCompareAgainstReferenceEvaluator(t *testing.T) {
	hands := [][]deck.Card{
		mustHand(t, "AS KS QS JS 10S"),
		mustHand(t, "9C 8C 7C 6C 5C"),
		mustHand(t, "5H 4H 3H 2H AH"),
		mustHand(t, "JS JD JC JH 10H"),
		mustHand(t, "2S 2D 2C 2H AS"),
		mustHand(t, "KS KD KC 4H 4S"),
		mustHand(t, "4S 4D 4C KH KS"),
		mustHand(t, "AH KH 8H 3H 2H"),
		mustHand(t, "AC KC 8C 4C 2C"),
		mustHand(t, "AS KD QC JH 10D"),
		mustHand(t, "5S 4D 3C 2H AD"),
		mustHand(t, "7S 7D 7C KH 2S"),
		mustHand(t, "QS QD 9C 9H 2S"),
		mustHand(t, "KS KD 4C 4H 9S"),
		mustHand(t, "10S 10D AC 8H 2S"),
		mustHand(t, "10H 10C AD 7S 3D"),
		mustHand(t, "AS QD 9C 7H 2S"),
		mustHand(t, "AH QC 9D 7S 3C"),
		mustHand(t, "KS QC 9H 7D 2C"),
	}

	for i, a := range hands {
		for j, b := range hands {
			got := sign(Compare(a, b))
			want := sign(int(hankinScore(t, a)) - int(hankinScore(t, b)))
			if got != want {
				t.Errorf("hands %d vs %d: Compare sign %d, reference sign %d", i, j, got, want)
			}
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
