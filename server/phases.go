package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"drawpoker/game"
	"drawpoker/protocol"
)

// awaitSeats blocks until every seat is taken, answering side queries
// from players already seated.
func (s *Session) awaitSeats() error {
	s.publish("waiting for players")
	for !s.game.CanBegin() {
		ev, _ := s.nextEvent(0)
		switch ev.kind {
		case evShutdown:
			return ev.err
		case evConnect:
			s.handleConnect(ev.conn, true)
		case evGone:
			s.dropPlayer(ev.id, "connection lost")
		case evMessage:
			if ev.msg.Action == protocol.Disconnect {
				s.dropPlayer(ev.id, "disconnected")
			} else if isQuery(ev.msg.Action) {
				s.answerQuery(ev.id, ev.msg.Action)
			}
		}
	}
	return nil
}

// playHand runs one complete hand: ante and deal, a bidding round, the
// draw, a second bidding round, then showdown. An early-showdown signal
// from any step jumps straight to the showdown.
func (s *Session) playHand() stepResult {
	if res := s.startHand(); res != stepContinue {
		return res
	}

	res := s.biddingRound()
	if res == stepContinue {
		res = s.drawRound()
	}
	if res == stepContinue {
		res = s.biddingRound()
	}
	if res == stepFatal {
		return stepFatal
	}

	s.showdown()
	return stepContinue
}

// startHand collects antes and deals. A seated player who cannot cover
// the ante aborts the entire hand: everyone is told why and dropped.
func (s *Session) startHand() stepResult {
	if err := s.game.StartHand(); err != nil {
		if errors.Is(err, game.ErrInsufficientCredit) {
			s.log.Error("aborting hand", "error", err)
			s.broadcast(protocol.Deny, err.Error())
			return stepFatal
		}
		s.log.Error("could not start hand", "error", err)
		return stepFatal
	}

	s.handID = newHandID()
	s.log.Info("hand started", "hand", s.handID, "pot", s.game.Pot(), "players", len(s.game.Players()))
	s.publish("bidding")

	s.broadcast(protocol.Start, "")
	for _, p := range s.game.Players() {
		s.send(p.ID, protocol.Hand, handParams(p))
		s.send(p.ID, protocol.Eval, p.Evaluation().String())
	}
	return stepContinue
}

// biddingRound cycles through the bidding order until every active
// player has acted and matched the stake. Only the current actor can
// advance the turn pointer.
func (s *Session) biddingRound() stepResult {
	for {
		if s.game.BiddingOver() {
			return stepContinue
		}
		for _, p := range s.game.BiddingOrder() {
			if _, seated := s.game.Player(p.ID); !seated || p.Folded {
				continue
			}
			if res := s.bidTurn(p); res != stepContinue {
				return res
			}
			if s.game.BiddingOver() {
				return stepContinue
			}
		}
	}
}

// bidTurn prompts one player and waits for their BID or FOLD. Side
// queries from any player are answered without moving the turn; rule
// violations are denied and the turn retried.
func (s *Session) bidTurn(p *game.Player) stepResult {
	s.sendBidPrompt(p)

	for {
		ev, ok := s.nextEvent(s.cfg.TurnTimeout)
		if !ok {
			s.log.Info("turn timed out, folding", "hand", s.handID, "player", p.ID)
			s.send(p.ID, protocol.Deny, "turn timed out, folding")
			if s.game.Fold(p.ID) {
				return stepEarlyShowdown
			}
			return stepContinue
		}

		switch ev.kind {
		case evShutdown:
			return stepFatal
		case evConnect:
			s.handleConnect(ev.conn, false)
		case evGone:
			if s.dropPlayer(ev.id, "connection lost") {
				return stepEarlyShowdown
			}
			if ev.id == p.ID {
				return stepContinue
			}
		case evMessage:
			if res, done := s.bidMessage(p, ev); done {
				return res
			}
		}
	}
}

// bidMessage handles one inbound message during a bidding turn. done
// reports whether the turn is over.
func (s *Session) bidMessage(p *game.Player, ev event) (stepResult, bool) {
	msg := ev.msg

	if msg.Action == protocol.Disconnect {
		if s.dropPlayer(ev.id, "disconnected") {
			return stepEarlyShowdown, true
		}
		if ev.id == p.ID {
			return stepContinue, true
		}
		return stepContinue, false
	}

	if isQuery(msg.Action) {
		s.answerQuery(ev.id, msg.Action)
		if ev.id == p.ID {
			// keep the actor's prompt live after the reply
			s.sendBidPrompt(p)
		}
		return stepContinue, false
	}

	if ev.id != p.ID {
		s.send(ev.id, protocol.Deny, "not your turn")
		return stepContinue, false
	}

	switch msg.Action {
	case protocol.Fold:
		s.log.Info("player folded", "hand", s.handID, "player", p.ID)
		if s.game.Fold(p.ID) {
			return stepEarlyShowdown, true
		}
		return stepContinue, true

	case protocol.Bid:
		amount, err := strconv.Atoi(strings.TrimSpace(msg.Params))
		if err != nil || amount < 0 {
			s.deny(p, fmt.Sprintf("bad bid %q", msg.Params))
			return stepContinue, false
		}
		if err := s.game.Bid(p.ID, amount); err != nil {
			s.deny(p, err.Error())
			return stepContinue, false
		}
		s.log.Info("player bid", "hand", s.handID, "player", p.ID, "amount", amount, "pot", s.game.Pot())
		s.publish("bidding")
		return stepContinue, true

	default:
		s.deny(p, "unexpected action")
		return stepContinue, false
	}
}

// deny rejects the current actor's action and retries their turn.
func (s *Session) deny(p *game.Player, reason string) {
	s.send(p.ID, protocol.Deny, reason)
	s.sendBidPrompt(p)
}

func (s *Session) sendBidPrompt(p *game.Player) {
	params := fmt.Sprintf("%d %d", s.game.CurrentStake(), s.game.HowMuchToCall(p.ID))
	s.send(p.ID, protocol.Bid, params)
}

// drawRound gives each active player one chance to discard up to four
// cards. The pointer advances past every seat exactly once.
func (s *Session) drawRound() stepResult {
	s.publish("drawing")
	for _, p := range s.game.BiddingOrder() {
		if _, seated := s.game.Player(p.ID); !seated || p.Folded {
			continue
		}
		if res := s.drawTurn(p); res != stepContinue {
			return res
		}
	}
	return stepContinue
}

func (s *Session) drawTurn(p *game.Player) stepResult {
	s.send(p.ID, protocol.Draw, "")

	for {
		ev, ok := s.nextEvent(s.cfg.TurnTimeout)
		if !ok {
			s.log.Info("turn timed out, folding", "hand", s.handID, "player", p.ID)
			s.send(p.ID, protocol.Deny, "turn timed out, folding")
			if s.game.Fold(p.ID) {
				return stepEarlyShowdown
			}
			return stepContinue
		}

		switch ev.kind {
		case evShutdown:
			return stepFatal
		case evConnect:
			s.handleConnect(ev.conn, false)
		case evGone:
			if s.dropPlayer(ev.id, "connection lost") {
				return stepEarlyShowdown
			}
			if ev.id == p.ID {
				return stepContinue
			}
		case evMessage:
			msg := ev.msg

			if msg.Action == protocol.Disconnect {
				if s.dropPlayer(ev.id, "disconnected") {
					return stepEarlyShowdown
				}
				if ev.id == p.ID {
					return stepContinue
				}
				continue
			}

			if isQuery(msg.Action) {
				s.answerQuery(ev.id, msg.Action)
				if ev.id == p.ID {
					s.send(p.ID, protocol.Draw, "")
				}
				continue
			}

			if ev.id != p.ID {
				s.send(ev.id, protocol.Deny, "not your turn")
				continue
			}

			if msg.Action != protocol.Draw {
				s.send(p.ID, protocol.Deny, "unexpected action")
				s.send(p.ID, protocol.Draw, "")
				continue
			}

			discards, err := parseDiscards(msg.Params)
			if err != nil {
				s.send(p.ID, protocol.Deny, err.Error())
				s.send(p.ID, protocol.Draw, "")
				continue
			}
			if err := s.game.Draw(p.ID, discards); err != nil {
				s.send(p.ID, protocol.Deny, err.Error())
				s.send(p.ID, protocol.Draw, "")
				continue
			}

			s.log.Info("player drew", "hand", s.handID, "player", p.ID, "discarded", len(discards))
			s.send(p.ID, protocol.Hand, handParams(p))
			s.send(p.ID, protocol.Eval, p.Evaluation().String())
			return stepContinue
		}
	}
}

func parseDiscards(params string) ([]int, error) {
	fields := strings.Fields(params)
	discards := make([]int, 0, len(fields))
	for _, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad discard index %q", f)
		}
		discards = append(discards, idx)
	}
	return discards, nil
}

// showdown settles the pot and reports prizes and credits. The
// remainder of an uneven split is not distributed; it is only logged.
func (s *Session) showdown() {
	s.publish("showdown")
	prizes, remainder := s.game.Showdown()

	s.log.Info("hand settled", "hand", s.handID, "winners", len(prizes), "remainder", remainder)
	s.handID = ""

	for id := range s.clients {
		if prize, won := prizes[id]; won {
			s.send(id, protocol.Prize, strconv.Itoa(prize))
		}
		if p, ok := s.game.Player(id); ok {
			s.send(id, protocol.Credit, strconv.Itoa(p.Credit))
		}
	}
}

// reEntry is the barrier between hands: every still-connected player
// must freshly ACCEPT, and empty seats must refill, before the next
// hand starts. END broadcasts carry the count of seats still missing.
func (s *Session) reEntry() error {
	s.publish("re-entry")
	s.accepted = map[int]bool{}
	s.broadcast(protocol.End, strconv.Itoa(s.missingSeats()))

	for !s.barrierDown() {
		ev, _ := s.nextEvent(0)
		switch ev.kind {
		case evShutdown:
			return ev.err
		case evConnect:
			if id, ok := s.handleConnect(ev.conn, true); ok {
				// a fresh join is its own acceptance
				s.accepted[id] = true
				s.broadcast(protocol.End, strconv.Itoa(s.missingSeats()))
			}
		case evGone:
			// the reader of a conn closed by dropPlayer reports a
			// second evGone for an id already forgotten
			if _, seated := s.clients[ev.id]; seated {
				s.dropPlayer(ev.id, "connection lost")
				s.broadcast(protocol.End, strconv.Itoa(s.missingSeats()))
			}
		case evMessage:
			switch {
			case ev.msg.Action == protocol.Disconnect:
				if _, seated := s.clients[ev.id]; seated {
					s.dropPlayer(ev.id, "disconnected")
					s.broadcast(protocol.End, strconv.Itoa(s.missingSeats()))
				}
			case ev.msg.Action == protocol.Accept:
				s.accepted[ev.id] = true
			case isQuery(ev.msg.Action):
				s.answerQuery(ev.id, ev.msg.Action)
			}
		}
	}
	return nil
}

func (s *Session) missingSeats() int {
	return s.cfg.Seats - len(s.game.Players())
}

func (s *Session) barrierDown() bool {
	if len(s.game.Players()) != s.cfg.Seats {
		return false
	}
	for _, p := range s.game.Players() {
		if !s.accepted[p.ID] {
			return false
		}
	}
	return true
}
