package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	utils "drawpoker/internal"
)

func TestEncode(t *testing.T) {
	m := Message{GameID: 1, PlayerID: 3, Action: Bid, Params: "50 20"}
	utils.AssertEqual(t, Encode(m), "1/3/bid/50 20")

	empty := Message{GameID: 1, PlayerID: 3, Action: Fold}
	utils.AssertEqual(t, Encode(empty), "1/3/fol/")
}

func TestDecode(t *testing.T) {
	t.Run("round-trips every action", func(t *testing.T) {
		for a := Accept; a <= Prize; a++ {
			m := Message{GameID: 7, PlayerID: 2, Action: a, Params: "some params"}

			decoded, err := Decode(Encode(m))
			utils.AssertNoError(t, err)
			utils.AssertEqual(t, decoded, m)
		}
	})

	t.Run("escapes newlines in params", func(t *testing.T) {
		m := Message{GameID: 1, PlayerID: 3, Action: Hand, Params: "Ace of Spades\nKing of Hearts"}

		wire := Encode(m)
		utils.AssertTrue(t, !strings.Contains(wire, "\n"))

		decoded, err := Decode(wire)
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, decoded.Params, m.Params)
	})

	t.Run("unknown action code decodes as deny", func(t *testing.T) {
		m, err := Decode("1/2/xyz/whatever")
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, m.Action, Deny)
	})

	t.Run("missing params yields the empty string", func(t *testing.T) {
		m, err := Decode("1/2/fol")
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, m.Params, "")
	})

	t.Run("strips the line terminator", func(t *testing.T) {
		m, err := Decode("1/2/crd/990\n")
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, m.Params, "990")
	})

	t.Run("rejects malformed messages", func(t *testing.T) {
		for _, raw := range []string{"", "justtext", "1/2", "x/2/bid/5", "1/y/bid/5"} {
			_, err := Decode(raw)
			assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
		}
	})
}

func TestActionCodes(t *testing.T) {
	utils.AssertEqual(t, Accept.Code(), "acc")
	utils.AssertEqual(t, Deny.Code(), "den")
	utils.AssertEqual(t, Bid.Code(), "bid")
	utils.AssertEqual(t, Fold.Code(), "fol")
	utils.AssertEqual(t, Hand.Code(), "han")
	utils.AssertEqual(t, Start.Code(), "srt")
	utils.AssertEqual(t, Disconnect.Code(), "dsc")
	utils.AssertEqual(t, Eval.Code(), "evl")
	utils.AssertEqual(t, End.Code(), "end")
	utils.AssertEqual(t, Draw.Code(), "drw")
	utils.AssertEqual(t, Credit.Code(), "crd")
	utils.AssertEqual(t, Prize.Code(), "prz")
}
