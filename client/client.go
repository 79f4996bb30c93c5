// Package client implements the interactive command-line poker client:
// it renders server state with pterm and forwards human choices over
// the line protocol.
package client

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"drawpoker/protocol"
)

// sendDelay paces outbound writes, mirroring the server's throttle.
const sendDelay = 100 * time.Millisecond

const (
	choiceBid    = "bid"
	choiceCheck  = "check (call)"
	choiceFold   = "fold"
	choiceHand   = "show hand"
	choiceEval   = "show hand value"
	choiceCredit = "show credit"

	choicePlayOn     = "play another hand"
	choiceDisconnect = "disconnect"
)

// Client is one connected player.
type Client struct {
	conn     net.Conn
	sc       *bufio.Scanner
	gameID   int
	playerID int
	log      *slog.Logger
}

// Dial connects to the server and completes the join handshake. A DENY
// reply means no seat was available.
func Dial(addr string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}

	c := &Client{conn: conn, sc: bufio.NewScanner(conn), log: logger}

	msg, err := c.read()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if msg.Action == protocol.Deny {
		conn.Close()
		return nil, fmt.Errorf("unable to join: %s", msg.Params)
	}

	c.gameID = msg.GameID
	c.playerID = msg.PlayerID
	return c, nil
}

// PlayerID is the id the server assigned during the handshake.
func (c *Client) PlayerID() int {
	return c.playerID
}

// Run renders server messages and forwards choices until the player
// disconnects or the server goes away.
func (c *Client) Run() error {
	defer c.conn.Close()

	pterm.Info.Printfln("Connected. You are player %d in game %d.", c.playerID, c.gameID)

	for {
		msg, err := c.read()
		if err != nil {
			pterm.Warning.Println("Lost connection to the server.")
			return err
		}

		switch msg.Action {
		case protocol.Start:
			pterm.Info.Println("A new hand has started.")

		case protocol.Hand:
			renderHand(msg.Params)

		case protocol.Eval:
			pterm.Info.Printfln("Your hand value is: %s", msg.Params)

		case protocol.Credit:
			pterm.Info.Printfln("Your credit is: %s", msg.Params)

		case protocol.Prize:
			pterm.Success.Printfln("You won %s!", msg.Params)

		case protocol.Deny:
			pterm.Warning.Printfln("Denied: %s", msg.Params)

		case protocol.Bid:
			if err := c.bidMenu(msg.Params); err != nil {
				return err
			}

		case protocol.Draw:
			if err := c.drawPrompt(); err != nil {
				return err
			}

		case protocol.End:
			playOn, err := c.endMenu(msg.Params)
			if err != nil || !playOn {
				return err
			}

		case protocol.Disconnect:
			pterm.Warning.Println("Server disconnected.")
			return nil
		}
	}
}

func (c *Client) read() (protocol.Message, error) {
	for c.sc.Scan() {
		line := strings.TrimSpace(c.sc.Text())
		if line == "" {
			continue
		}
		msg, err := protocol.Decode(line)
		if err != nil {
			c.log.Warn("dropping malformed message", "error", err)
			continue
		}
		return msg, nil
	}
	if err := c.sc.Err(); err != nil {
		return protocol.Message{}, err
	}
	return protocol.Message{}, fmt.Errorf("connection closed")
}

func (c *Client) write(action protocol.Action, params string) error {
	time.Sleep(sendDelay)
	m := protocol.Message{GameID: c.gameID, PlayerID: c.playerID, Action: action, Params: params}
	_, err := fmt.Fprintf(c.conn, "%s%c", protocol.Encode(m), protocol.Delim)
	return err
}

// bidMenu runs the bidding prompt. Queries leave the turn open; the
// server answers and re-prompts, so a single choice per prompt is sent.
func (c *Client) bidMenu(params string) error {
	stake, toCall, err := ParseBidPrompt(params)
	if err != nil {
		c.log.Warn("bad bid prompt from server", "params", params)
		stake, toCall = 0, 0
	}

	pterm.Info.Printfln("It is your turn. Current stake: %d. To call: %d.", stake, toCall)

	options := []string{choiceBid, choiceCheck, choiceFold, choiceHand, choiceEval, choiceCredit}
	choice, _ := pterm.DefaultInteractiveSelect.WithOptions(options).Show("What do you want to do?")

	switch choice {
	case choiceBid:
		for {
			raw, _ := pterm.DefaultInteractiveTextInput.Show("How much do you want to bid?")
			amount, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || amount < 0 {
				pterm.Warning.Println("Your bid should be an integer greater or equal 0.")
				continue
			}
			return c.write(protocol.Bid, strconv.Itoa(amount))
		}
	case choiceCheck:
		return c.write(protocol.Bid, strconv.Itoa(toCall))
	case choiceFold:
		return c.write(protocol.Fold, "")
	case choiceHand:
		return c.write(protocol.Hand, "")
	case choiceEval:
		return c.write(protocol.Eval, "")
	case choiceCredit:
		return c.write(protocol.Credit, "")
	}
	return nil
}

func (c *Client) drawPrompt() error {
	renderDrawHelp()
	for {
		raw, _ := pterm.DefaultInteractiveTextInput.Show("Cards to discard (indices 0-4, space separated, empty for none)")
		params, err := NormalizeDiscards(raw)
		if err != nil {
			pterm.Warning.Println(err.Error())
			continue
		}
		return c.write(protocol.Draw, params)
	}
}

func (c *Client) endMenu(params string) (bool, error) {
	if missing, err := strconv.Atoi(strings.TrimSpace(params)); err == nil && missing > 0 {
		pterm.Info.Printfln("The hand has ended. Waiting for %d more player(s).", missing)
	} else {
		pterm.Info.Println("The hand has ended.")
	}

	options := []string{choicePlayOn, choiceDisconnect}
	choice, _ := pterm.DefaultInteractiveSelect.WithOptions(options).Show("What next?")

	if choice == choicePlayOn {
		return true, c.write(protocol.Accept, "")
	}
	return false, c.write(protocol.Disconnect, "")
}

func renderHand(params string) {
	box := pterm.DefaultBox.WithTitle(pterm.LightYellow("|YOUR HAND|")).WithTitleTopCenter()

	lines := make([]string, 0, 5)
	for i, card := range strings.Split(params, "\n") {
		lines = append(lines, fmt.Sprintf("%d: %s", i, card))
	}
	box.Println(strings.Join(lines, "\n"))
}

func renderDrawHelp() {
	pterm.Info.Println("You may discard up to 4 cards and draw replacements.")
}

// ParseBidPrompt splits the server's "currentStake toCall" prompt.
func ParseBidPrompt(params string) (stake, toCall int, err error) {
	fields := strings.Fields(params)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("malformed bid prompt %q", params)
	}
	stake, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed bid prompt %q", params)
	}
	toCall, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed bid prompt %q", params)
	}
	return stake, toCall, nil
}

// NormalizeDiscards validates user input for the draw phase and returns
// the wire form: space-separated indices, or empty to keep all cards.
func NormalizeDiscards(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) > 4 {
		return "", fmt.Errorf("at most 4 cards may be discarded")
	}
	seen := map[int]bool{}
	indices := make([]string, 0, len(fields))
	for _, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil || idx < 0 || idx > 4 {
			return "", fmt.Errorf("indices must be integers between 0 and 4")
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, strconv.Itoa(idx))
	}
	return strings.Join(indices, " "), nil
}
