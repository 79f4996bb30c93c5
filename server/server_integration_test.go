package server

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"drawpoker/config"
	utils "drawpoker/internal"
	"drawpoker/protocol"
)

// testClient is a scripted player driving one TCP connection.
type testClient struct {
	t    *testing.T
	conn net.Conn
	sc   *bufio.Scanner
	id   int
}

func startTestSession(t *testing.T, cfg config.Config) (*Session, string, chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess, err := NewSession(cfg, ln, logger, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- sess.Run() }()
	t.Cleanup(func() { sess.Close() })

	return sess, ln.Addr().String(), done
}

func dialTestClient(t *testing.T, addr string) *testClient {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testClient{t: t, conn: conn, sc: bufio.NewScanner(conn)}
}

// join reads the seating confirmation and remembers the assigned id.
func (c *testClient) join() {
	c.t.Helper()
	c.id = c.expect(protocol.Accept).PlayerID
}

func (c *testClient) read() protocol.Message {
	c.t.Helper()

	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if !c.sc.Scan() {
		c.t.Fatalf("connection went quiet: %v", c.sc.Err())
	}

	msg, err := protocol.Decode(c.sc.Text())
	utils.AssertNoError(c.t, err)
	return msg
}

func (c *testClient) expect(action protocol.Action) protocol.Message {
	c.t.Helper()

	msg := c.read()
	if msg.Action != action {
		c.t.Fatalf("got %s %q, want %s", msg.Action, msg.Params, action)
	}
	return msg
}

func (c *testClient) send(action protocol.Action, params string) {
	c.t.Helper()

	m := protocol.Message{GameID: 1, PlayerID: c.id, Action: action, Params: params}
	_, err := fmt.Fprintf(c.conn, "%s%c", protocol.Encode(m), protocol.Delim)
	utils.AssertNoError(c.t, err)
}

func TestSessionPlaysAFullHand(t *testing.T) {
	sess, addr, done := startTestSession(t, config.Config{Seats: 2, Ante: 5, StartingCredit: 1000})

	alice := dialTestClient(t, addr)
	alice.join()
	bob := dialTestClient(t, addr)
	bob.join()

	utils.AssertEqual(t, alice.id, 1)
	utils.AssertEqual(t, bob.id, 2)

	for _, c := range []*testClient{alice, bob} {
		c.expect(protocol.Start)
		hand := c.expect(protocol.Hand)
		utils.AssertEqual(t, len(strings.Split(hand.Params, "\n")), 5)
		c.expect(protocol.Eval)
	}

	// the player left of the dealer opens every negotiation round
	checkRound := func() {
		for _, c := range []*testClient{bob, alice} {
			prompt := c.expect(protocol.Bid)
			utils.AssertEqual(t, prompt.Params, "0 0")
			c.send(protocol.Bid, "0")
		}
	}
	checkRound()

	for _, c := range []*testClient{bob, alice} {
		c.expect(protocol.Draw)
		c.send(protocol.Draw, "")
		c.expect(protocol.Hand)
		c.expect(protocol.Eval)
	}

	checkRound()

	// showdown: winners see a prize, everyone sees their credit, and
	// the whole pot of two antes lands somewhere
	prizes, credits := 0, 0
	for _, c := range []*testClient{alice, bob} {
		msg := c.read()
		if msg.Action == protocol.Prize {
			prize, err := strconv.Atoi(msg.Params)
			utils.AssertNoError(t, err)
			prizes += prize
			msg = c.read()
		}
		utils.AssertEqual(t, msg.Action, protocol.Credit)
		credit, err := strconv.Atoi(msg.Params)
		utils.AssertNoError(t, err)
		credits += credit
	}
	utils.AssertEqual(t, prizes, 10)
	utils.AssertEqual(t, credits, 2000)

	for _, c := range []*testClient{alice, bob} {
		end := c.expect(protocol.End)
		utils.AssertEqual(t, end.Params, "0")
		c.send(protocol.Disconnect, "")
	}

	sess.Close()
	utils.Within(t, 3*time.Second, func() { <-done })
}

func TestSessionFoldsSilentPlayers(t *testing.T) {
	cfg := config.Config{Seats: 2, Ante: 5, StartingCredit: 1000, TurnTimeout: 100 * time.Millisecond}
	_, addr, _ := startTestSession(t, cfg)

	alice := dialTestClient(t, addr)
	alice.join()
	bob := dialTestClient(t, addr)
	bob.join()

	for _, c := range []*testClient{alice, bob} {
		c.expect(protocol.Start)
		c.expect(protocol.Hand)
		c.expect(protocol.Eval)
	}

	// bob opens the bidding and never answers
	bob.expect(protocol.Bid)
	deny := bob.expect(protocol.Deny)
	utils.AssertTrue(t, strings.Contains(deny.Params, "timed out"))

	utils.AssertEqual(t, alice.expect(protocol.Prize).Params, "10")
	utils.AssertEqual(t, alice.expect(protocol.Credit).Params, "1005")
	utils.AssertEqual(t, bob.expect(protocol.Credit).Params, "995")
}

func TestSessionDeniesJoinsMidHand(t *testing.T) {
	_, addr, _ := startTestSession(t, config.Config{Seats: 2, Ante: 5, StartingCredit: 1000})

	alice := dialTestClient(t, addr)
	alice.join()
	bob := dialTestClient(t, addr)
	bob.join()

	carol := dialTestClient(t, addr)
	deny := carol.read()
	utils.AssertEqual(t, deny.Action, protocol.Deny)
	utils.AssertEqual(t, deny.Params, "hand in progress")
}

func TestSessionAnswersQueriesWhileSeating(t *testing.T) {
	_, addr, _ := startTestSession(t, config.Config{Seats: 2, Ante: 5, StartingCredit: 1000})

	alice := dialTestClient(t, addr)
	alice.join()

	alice.send(protocol.Credit, "")
	utils.AssertEqual(t, alice.expect(protocol.Credit).Params, "1000")

	alice.send(protocol.Hand, "")
	utils.AssertEqual(t, alice.expect(protocol.Deny).Params, "no cards in hand")
}

// playCheckedHand drives one two-player hand to its settlement: every
// bid prompt is answered with a check and no cards are drawn.
func playCheckedHand(t *testing.T, opener, dealer *testClient) {
	t.Helper()

	for _, c := range []*testClient{opener, dealer} {
		c.expect(protocol.Start)
		c.expect(protocol.Hand)
		c.expect(protocol.Eval)
	}

	for _, c := range []*testClient{opener, dealer} {
		c.expect(protocol.Bid)
		c.send(protocol.Bid, "0")
	}

	for _, c := range []*testClient{opener, dealer} {
		c.expect(protocol.Draw)
		c.send(protocol.Draw, "")
		c.expect(protocol.Hand)
		c.expect(protocol.Eval)
	}

	for _, c := range []*testClient{opener, dealer} {
		c.expect(protocol.Bid)
		c.send(protocol.Bid, "0")
	}

	for _, c := range []*testClient{opener, dealer} {
		msg := c.read()
		if msg.Action == protocol.Prize {
			msg = c.read()
		}
		utils.AssertEqual(t, msg.Action, protocol.Credit)
	}
}

func TestSessionReseatsBetweenHands(t *testing.T) {
	_, addr, _ := startTestSession(t, config.Config{Seats: 2, Ante: 5, StartingCredit: 1000})

	alice := dialTestClient(t, addr)
	alice.join()
	bob := dialTestClient(t, addr)
	bob.join()

	// first hand: alice holds the button, bob opens
	playCheckedHand(t, bob, alice)

	for _, c := range []*testClient{alice, bob} {
		utils.AssertEqual(t, c.expect(protocol.End).Params, "0")
	}

	// bob leaves during re-entry; exactly one updated count goes out
	bob.send(protocol.Disconnect, "")
	utils.AssertEqual(t, alice.expect(protocol.End).Params, "1")

	// a fresh join refills the seat and counts as its own acceptance
	carol := dialTestClient(t, addr)
	carol.join()
	utils.AssertEqual(t, carol.id, 3)
	utils.AssertEqual(t, alice.expect(protocol.End).Params, "0")
	utils.AssertEqual(t, carol.expect(protocol.End).Params, "0")

	// the barrier holds until the survivor freshly accepts
	alice.send(protocol.Accept, "")

	for _, c := range []*testClient{alice, carol} {
		c.expect(protocol.Start)
		c.expect(protocol.Hand)
		c.expect(protocol.Eval)
	}

	// the button moved to carol's seat, so alice opens the second hand
	utils.AssertEqual(t, alice.expect(protocol.Bid).Params, "0 0")
}
