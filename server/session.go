// Package server runs the poker table: it accepts TCP connections,
// funnels every decoded message into a single event channel, and drives
// the game through its phases from one goroutine. Only that goroutine
// touches game state; per-connection readers do nothing but decode and
// forward.
package server

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"

	"drawpoker/config"
	"drawpoker/game"
	"drawpoker/protocol"
)

type eventKind int

const (
	evConnect eventKind = iota
	evMessage
	evGone
	evShutdown
)

// event is the only thing that crosses from the I/O goroutines into
// the session goroutine.
type event struct {
	kind eventKind
	conn net.Conn         // evConnect
	id   int              // evMessage, evGone
	msg  protocol.Message // evMessage
	err  error            // evGone, evShutdown
}

// stepResult is how a phase step tells its caller to proceed: carry on,
// short-circuit to showdown because folds left one player standing, or
// abandon the hand entirely.
type stepResult int

const (
	stepContinue stepResult = iota
	stepEarlyShowdown
	stepFatal
)

// remote is the server's handle on one connected player.
type remote struct {
	id   int
	conn net.Conn
}

// Session owns the table: the single Game, the player-id to connection
// map and the id counter. It is passed into every phase handler instead
// of living in package globals.
type Session struct {
	cfg      config.Config
	log      *slog.Logger
	game     *game.Game
	clients  map[int]*remote
	accepted map[int]bool // re-entry barrier bookkeeping
	nextID   int
	events   chan event
	ln       net.Listener
	feed     *Feed
	handID   string // correlation id for the hand in progress
}

// NewSession builds a session listening on ln. feed may be nil.
func NewSession(cfg config.Config, ln net.Listener, logger *slog.Logger, feed *Feed) (*Session, error) {
	g, err := game.New(1, cfg.Seats, cfg.Ante)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cfg:      cfg,
		log:      logger,
		game:     g,
		clients:  map[int]*remote{},
		accepted: map[int]bool{},
		nextID:   1,
		events:   make(chan event),
		ln:       ln,
		feed:     feed,
	}, nil
}

// Run drives the table until the listener closes: fill seats, play a
// hand, negotiate re-entry, repeat.
func (s *Session) Run() error {
	s.log.Info("server listening", "addr", s.ln.Addr().String(), "seats", s.cfg.Seats, "ante", s.cfg.Ante)
	go s.acceptLoop()

	for {
		if err := s.awaitSeats(); err != nil {
			return err
		}

		switch s.playHand() {
		case stepFatal:
			s.dropAll("hand aborted")
		case stepContinue:
			if err := s.reEntry(); err != nil {
				return err
			}
		}
	}
}

// Close stops the accept loop and unblocks Run.
func (s *Session) Close() error {
	return s.ln.Close()
}

func (s *Session) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.events <- event{kind: evShutdown, err: err}
			return
		}
		s.events <- event{kind: evConnect, conn: conn}
	}
}

func (s *Session) readLoop(r *remote) {
	sc := bufio.NewScanner(r.conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		msg, err := protocol.Decode(line)
		if err != nil {
			// protocol-level garbage never crashes the loop
			s.log.Warn("dropping malformed message", "player", r.id, "error", err)
			continue
		}
		s.events <- event{kind: evMessage, id: r.id, msg: msg}
	}
	s.events <- event{kind: evGone, id: r.id, err: sc.Err()}
}

// nextEvent blocks for the next event. With a positive timeout it
// reports false when the wait expires instead.
func (s *Session) nextEvent(timeout time.Duration) (event, bool) {
	if timeout <= 0 {
		return <-s.events, true
	}
	select {
	case ev := <-s.events:
		return ev, true
	case <-time.After(timeout):
		return event{}, false
	}
}

// handleConnect seats a fresh connection, or denies and closes it when
// no seat can be taken. Returns the new player id on success.
func (s *Session) handleConnect(conn net.Conn, joinable bool) (int, bool) {
	reason := ""
	if !joinable {
		reason = "hand in progress"
	} else if len(s.game.Players()) >= s.cfg.Seats {
		reason = "no free seats"
	}
	if reason != "" {
		s.writeTo(conn, 0, protocol.Deny, reason)
		conn.Close()
		s.log.Info("connection denied", "reason", reason)
		return 0, false
	}

	id := s.nextID
	s.nextID++
	if _, err := s.game.AddPlayer(id, s.cfg.StartingCredit); err != nil {
		s.writeTo(conn, 0, protocol.Deny, err.Error())
		conn.Close()
		return 0, false
	}

	r := &remote{id: id, conn: conn}
	s.clients[id] = r
	go s.readLoop(r)

	s.send(id, protocol.Accept, "")
	s.log.Info("player joined", "player", id, "seated", len(s.game.Players()))
	s.publish("seating")
	return id, true
}

// dropPlayer closes and forgets the player's connection and removes
// them from the game (a deferred fold mid-hand). The return value is
// the early-showdown signal.
func (s *Session) dropPlayer(id int, reason string) bool {
	r, ok := s.clients[id]
	if !ok {
		return false
	}
	r.conn.Close()
	delete(s.clients, id)
	delete(s.accepted, id)

	ended := s.game.RemovePlayer(id)
	s.log.Info("player left", "player", id, "reason", reason, "seated", len(s.game.Players()))
	s.publish("seating")
	return ended
}

func (s *Session) dropAll(reason string) {
	for id := range s.clients {
		s.send(id, protocol.Disconnect, reason)
		s.dropPlayer(id, reason)
	}
}

// send writes one message to a seated player, after the pacing delay.
// Write failures close the connection; the reader goroutine surfaces
// the drop as an evGone event.
func (s *Session) send(id int, action protocol.Action, params string) {
	r, ok := s.clients[id]
	if !ok {
		return
	}
	if err := s.writeTo(r.conn, id, action, params); err != nil {
		s.log.Warn("write failed, closing connection", "player", id, "error", err)
		r.conn.Close()
	}
}

func (s *Session) writeTo(conn net.Conn, id int, action protocol.Action, params string) error {
	time.Sleep(s.cfg.SendDelay)
	m := protocol.Message{GameID: s.game.ID(), PlayerID: id, Action: action, Params: params}
	_, err := fmt.Fprintf(conn, "%s%c", protocol.Encode(m), protocol.Delim)
	return err
}

func (s *Session) broadcast(action protocol.Action, params string) {
	for id := range s.clients {
		s.send(id, action, params)
	}
}

// answerQuery serves the out-of-band HAND/EVAL/CREDIT lookups permitted
// from any player at any time.
func (s *Session) answerQuery(id int, action protocol.Action) {
	p, ok := s.game.Player(id)
	if !ok {
		s.send(id, protocol.Deny, game.ErrUnknownPlayer.Error())
		return
	}

	switch action {
	case protocol.Credit:
		s.send(id, protocol.Credit, fmt.Sprintf("%d", p.Credit))
	case protocol.Hand:
		if len(p.Hand) == 0 {
			s.send(id, protocol.Deny, "no cards in hand")
			return
		}
		s.send(id, protocol.Hand, handParams(p))
	case protocol.Eval:
		if len(p.Hand) == 0 {
			s.send(id, protocol.Deny, "no cards in hand")
			return
		}
		s.send(id, protocol.Eval, p.Evaluation().String())
	}
}

func isQuery(a protocol.Action) bool {
	return a == protocol.Hand || a == protocol.Eval || a == protocol.Credit
}

func handParams(p *game.Player) string {
	cards := make([]string, len(p.Hand))
	for i, c := range p.Hand {
		cards[i] = c.String()
	}
	return strings.Join(cards, "\n")
}

func newHandID() string {
	return uuid.NewV4().String()
}
