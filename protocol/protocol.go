// Package protocol implements the line-oriented wire format shared by
// the poker server and client. A message is four `/`-joined fields:
//
//	gameId/playerId/code/params
//
// Messages are newline-terminated on the wire. Newlines inside params
// (the HAND card list) are escaped on encode and restored on decode so
// they never break framing.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Delim terminates each message on the wire.
const Delim = '\n'

// Action is the fixed 12-symbol vocabulary of the protocol.
type Action int

const (
	Accept Action = iota // accepted request, or client joining/continuing
	Deny                 // denied request, params carry the reason
	Bid                  // server prompt: "currentStake toCall"; client reply: amount
	Fold                 // client folds
	Hand                 // hand request, or newline-joined cards from server
	Start                // server announces a new hand
	Disconnect           // either side leaving, params optionally a reason
	Eval                 // hand category request or response
	End                  // hand over; params: seats still missing
	Draw                 // server prompt, or client's space-separated discard indices
	Credit               // credit request or response
	Prize                // prize amount from the server
)

var actionCodes = []string{"acc", "den", "bid", "fol", "han", "srt", "dsc", "evl", "end", "drw", "crd", "prz"}

// Code returns the three-letter wire symbol for the action.
func (a Action) Code() string {
	return actionCodes[a]
}

func (a Action) String() string {
	return a.Code()
}

// actionFromCode maps a wire symbol back to its Action. Unrecognized
// codes decode as Deny.
func actionFromCode(code string) Action {
	for i, c := range actionCodes {
		if c == code {
			return Action(i)
		}
	}
	return Deny
}

// Message is one protocol exchange. It is transient: constructed per
// send or receive, never stored.
type Message struct {
	GameID   int
	PlayerID int
	Action   Action
	Params   string
}

// ErrMalformed is returned by Decode for messages that cannot carry a
// game id, player id and action code.
var ErrMalformed = errors.New("protocol: malformed message")

// newlineEscape stands in for a literal newline inside params. Params
// that already contain the two-character sequence do not survive a
// round trip; none of the protocol's params do.
const newlineEscape = `\n`

// Encode renders m in wire form, without the trailing delimiter.
func Encode(m Message) string {
	params := strings.ReplaceAll(m.Params, "\n", newlineEscape)
	return fmt.Sprintf("%d/%d/%s/%s", m.GameID, m.PlayerID, m.Action.Code(), params)
}

// Decode parses a wire message. A message with fewer than four fields
// yields empty params rather than failing; an unknown action code
// yields Deny.
func Decode(raw string) (Message, error) {
	fields := strings.SplitN(strings.TrimRight(raw, "\r\n"), "/", 4)
	if len(fields) < 3 {
		return Message{}, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}

	gameID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Message{}, fmt.Errorf("%w: bad game id %q", ErrMalformed, fields[0])
	}
	playerID, err := strconv.Atoi(fields[1])
	if err != nil {
		return Message{}, fmt.Errorf("%w: bad player id %q", ErrMalformed, fields[1])
	}

	m := Message{
		GameID:   gameID,
		PlayerID: playerID,
		Action:   actionFromCode(fields[2]),
	}
	if len(fields) == 4 {
		m.Params = strings.ReplaceAll(fields[3], newlineEscape, "\n")
	}
	return m, nil
}
