package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Status is the public snapshot of the table, safe to expose to
// spectators: no hands, no hole information.
type Status struct {
	Phase   string         `json:"phase"`
	Seats   int            `json:"seats"`
	Seated  int            `json:"seated"`
	Pot     int            `json:"pot"`
	HandID  string         `json:"hand_id,omitempty"`
	Players []PlayerStatus `json:"players"`
}

// PlayerStatus is one seat in a Status snapshot.
type PlayerStatus struct {
	ID     int  `json:"id"`
	Credit int  `json:"credit"`
	Folded bool `json:"folded"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Feed fans table snapshots out to websocket spectators and serves the
// latest one over plain HTTP. The session publishes from its own
// goroutine; Feed does its own locking and never touches game state.
type Feed struct {
	current atomic.Value // Status

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewFeed constructs an empty feed.
func NewFeed() *Feed {
	f := &Feed{conns: map[*websocket.Conn]bool{}}
	f.current.Store(Status{})
	return f
}

// Publish stores the snapshot and pushes it to every spectator.
// Spectators that cannot keep up are dropped.
func (f *Feed) Publish(st Status) {
	f.current.Store(st)

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if err := conn.WriteJSON(st); err != nil {
			conn.Close()
			delete(f.conns, conn)
		}
	}
}

// Status returns the last published snapshot.
func (f *Feed) Status() Status {
	return f.current.Load().(Status)
}

// Handler serves GET /status (latest snapshot as JSON) and /feed (a
// websocket pushing each new snapshot).
func (f *Feed) Handler() http.Handler {
	router := http.NewServeMux()
	router.Handle("/status", http.HandlerFunc(f.handleStatus))
	router.Handle("/feed", http.HandlerFunc(f.handleFeed))
	return router
}

func (f *Feed) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(f.Status()); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (f *Feed) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	f.mu.Lock()
	f.conns[conn] = true
	f.mu.Unlock()

	// drain and discard inbound frames until the spectator leaves
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				f.mu.Lock()
				delete(f.conns, conn)
				f.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// publish pushes the session's current public state to the feed.
func (s *Session) publish(phase string) {
	if s.feed == nil {
		return
	}

	players := []PlayerStatus{}
	for _, p := range s.game.Players() {
		players = append(players, PlayerStatus{ID: p.ID, Credit: p.Credit, Folded: p.Folded})
	}

	s.feed.Publish(Status{
		Phase:   phase,
		Seats:   s.cfg.Seats,
		Seated:  len(s.game.Players()),
		Pot:     s.game.Pot(),
		HandID:  s.handID,
		Players: players,
	})
}
