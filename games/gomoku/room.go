/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package gomoku

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MaxPlayers is the number of seats in a room.
const MaxPlayers = 2

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPaired   Status = "paired"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Player is a seat in a room. Symbol is fixed when the player joins.
type Player struct {
	UID         string
	DisplayName string
	Ready       bool
	Score       int
	Symbol      Symbol
}

func (p *Player) view() PlayerView {
	return PlayerView{
		UID:         p.UID,
		DisplayName: p.DisplayName,
		Ready:       p.Ready,
		Symbol:      p.Symbol,
		Score:       p.Score,
	}
}

// Room holds one match. Every mutation runs under mu, including the turn
// timeout, so a move and a firing timer never interleave.
type Room struct {
	id int

	mu            sync.Mutex
	players       []*Player
	board         Board
	status        Status
	currentTurn   string
	turnStartedAt time.Time
	timer         turnTimer
	closed        bool
	lastActive    time.Time

	broadcaster *Broadcaster
	turnTimeout time.Duration
	now         func() time.Time
	log         zerolog.Logger
}

func newRoom(id int, turnTimeout time.Duration, now func() time.Time, log zerolog.Logger) *Room {
	return &Room{
		id:          id,
		status:      StatusWaiting,
		lastActive:  now(),
		broadcaster: newBroadcaster(),
		turnTimeout: turnTimeout,
		now:         now,
		log:         log.With().Int("roomID", id).Logger(),
	}
}

func (r *Room) ID() int {
	return r.id
}

// RoomState is a point-in-time copy of a room.
type RoomState struct {
	RoomID        int
	Players       []PlayerView
	Board         Board
	Status        Status
	CurrentTurn   string
	TurnStartedAt time.Time
	TimerPending  bool
	Closed        bool
	LastActive    time.Time
}

// State returns a copy of the room's current state.
func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RoomState{
		RoomID:        r.id,
		Players:       r.playerViewsLocked(),
		Board:         r.board,
		Status:        r.status,
		CurrentTurn:   r.currentTurn,
		TurnStartedAt: r.turnStartedAt,
		TimerPending:  r.timer.pending(),
		Closed:        r.closed,
		LastActive:    r.lastActive,
	}
}

// Summary returns the listing view of the room.
func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.summaryLocked()
}

func (r *Room) summaryLocked() RoomSummary {
	players := make([]PlayerSummary, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, PlayerSummary{
			UID:         p.UID,
			DisplayName: p.DisplayName,
			Ready:       p.Ready,
		})
	}

	return RoomSummary{
		RoomID:  r.id,
		Players: players,
	}
}

func (r *Room) playerViewsLocked() []PlayerView {
	views := make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		views = append(views, p.view())
	}
	return views
}

func (r *Room) playerLocked(uid string) *Player {
	for _, p := range r.players {
		if p.UID == uid {
			return p
		}
	}
	return nil
}

func (r *Room) otherPlayerLocked(uid string) *Player {
	for _, p := range r.players {
		if p.UID != uid {
			return p
		}
	}
	return nil
}

func (r *Room) allReadyLocked() bool {
	if len(r.players) != MaxPlayers {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (r *Room) turnStateLocked() TurnState {
	return TurnState{
		UID:       r.currentTurn,
		StartedAt: unixMillis(r.turnStartedAt),
		TimeoutMs: r.turnTimeout.Milliseconds(),
	}
}

func (r *Room) playerListLocked() PlayerList {
	return PlayerList{Players: r.playerViewsLocked()}
}

func (r *Room) touchLocked() {
	r.lastActive = r.now()
}

func (r *Room) clearTurnLocked() {
	r.currentTurn = ""
	r.turnStartedAt = time.Time{}
}

func (r *Room) join(u User) (RoomSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return RoomSummary{}, ErrNotFound
	}

	if r.playerLocked(u.UID) != nil {
		return r.summaryLocked(), nil
	}

	if len(r.players) >= MaxPlayers {
		return RoomSummary{}, ErrFull
	}

	symbol := SymbolX
	if len(r.players) == 1 {
		symbol = r.players[0].Symbol.other()
	}

	r.players = append(r.players, &Player{
		UID:         u.UID,
		DisplayName: u.DisplayName,
		Symbol:      symbol,
	})
	r.touchLocked()

	if len(r.players) == MaxPlayers && r.status == StatusWaiting {
		r.status = StatusPaired
	}

	r.log.Info().Str("uid", u.UID).Str("symbol", string(symbol)).Msg("Player joined")

	r.broadcaster.Publish(r.playerListLocked())

	return r.summaryLocked(), nil
}

// leave removes uid and reports whether the room is now empty and closed.
func (r *Room) leave(uid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false, ErrNotFound
	}

	idx := -1
	for i, p := range r.players {
		if p.UID == uid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrNotFound
	}

	leaving := r.players[idx]
	wasActive := r.status == StatusActive

	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.timer.cancel()
	r.touchLocked()

	r.log.Info().Str("uid", uid).Int("remaining", len(r.players)).Msg("Player left")

	r.broadcaster.Publish(PlayerLeft{UID: leaving.UID, DisplayName: leaving.DisplayName})

	if len(r.players) == 0 {
		r.closeLocked()
		return true, nil
	}

	r.players[0].Ready = false
	r.clearTurnLocked()
	r.board = Board{}
	r.status = StatusWaiting

	if wasActive {
		r.broadcaster.Publish(LossDeclared{UID: uid, Reason: ReasonLeft})
	}
	r.broadcaster.Publish(r.playerListLocked(), BoardState{Board: r.board}, r.turnStateLocked())

	return false, nil
}

// reapIfIdle closes the room if nothing has touched it since cutoff, no
// connection is bound and no match is running. It reports whether the room
// was closed.
func (r *Room) reapIfIdle(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.status == StatusActive || r.broadcaster.Len() > 0 {
		return false
	}
	if !r.lastActive.Before(cutoff) {
		return false
	}

	r.log.Info().Time("lastActive", r.lastActive).Int("players", len(r.players)).Msg("Reaping idle room")
	r.closeLocked()

	return true
}

func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeLocked()
}

func (r *Room) closeLocked() {
	if r.closed {
		return
	}

	r.closed = true
	r.timer.cancel()
	r.clearTurnLocked()
	r.broadcaster.clear()

	r.log.Info().Msg("Room closed")
}

// bind subscribes sink and replays the room's state to it alone.
func (r *Room) bind(connID string, u User, sink Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrNotFound
	}

	r.broadcaster.Subscribe(connID, sink)
	r.touchLocked()
	r.broadcaster.Publish(PlayerJoined{User: u})
	r.broadcaster.Send(connID,
		r.playerListLocked(),
		BoardState{Board: r.board},
		r.turnStateLocked(),
	)

	return nil
}

func (r *Room) unbind(connID string) {
	r.broadcaster.Unsubscribe(connID)
}

// RequestPlayers broadcasts the player list.
func (r *Room) RequestPlayers() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.broadcaster.Publish(r.playerListLocked())
}

// SetReady marks uid ready. When both players are ready in a paired room
// the first player in join order gets the turn and the timer starts.
func (r *Room) SetReady(uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrNotFound
	}

	p := r.playerLocked(uid)
	if p == nil {
		return ErrNotFound
	}

	p.Ready = true
	r.touchLocked()
	r.broadcaster.Publish(ReadyAnnounced{DisplayName: p.DisplayName}, r.playerListLocked())

	if r.allReadyLocked() && r.currentTurn == "" && r.status == StatusPaired {
		r.status = StatusActive
		r.log.Info().Str("uid", r.players[0].UID).Msg("Match started")
		r.startTurnLocked(r.players[0].UID)
	}

	return nil
}

// SetUnready clears uid's ready flag. While a match is active it returns a
// state conflict and leaves the flag set on purpose: a live turn requires
// both players ready, so a player gets out of a running match by leaving.
func (r *Room) SetUnready(uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrNotFound
	}

	p := r.playerLocked(uid)
	if p == nil {
		return ErrNotFound
	}

	if r.status == StatusActive {
		return newError(CodeStateConflict, "match in progress")
	}

	p.Ready = false
	r.touchLocked()
	r.broadcaster.Publish(UnreadyAnnounced{DisplayName: p.DisplayName}, r.playerListLocked())

	return nil
}

// SubmitMove places a stone for the player on turn. A rejected move changes
// nothing and broadcasts nothing; the returned error only says why.
func (r *Room) SubmitMove(m Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrNotFound
	}

	if !inBounds(m.X, m.Y) {
		return newError(CodeValidation, "move out of bounds")
	}

	if r.status != StatusActive || !r.allReadyLocked() || m.UID == "" || m.UID != r.currentTurn {
		return newError(CodeStateConflict, "not this player's turn")
	}

	p := r.playerLocked(m.UID)
	if p == nil {
		return ErrStateConflict
	}

	if m.Symbol == Empty {
		m.Symbol = p.Symbol
	}
	if m.Symbol != p.Symbol {
		return newError(CodeValidation, "symbol does not belong to player")
	}

	if r.board[m.X][m.Y] != Empty {
		return newError(CodeStateConflict, "cell is occupied")
	}

	r.board[m.X][m.Y] = m.Symbol
	r.timer.cancel()
	r.touchLocked()

	r.broadcaster.Publish(MoveApplied{Move: m}, BoardState{Board: r.board})

	if IsWinningMove(&r.board, m.X, m.Y, m.Symbol) {
		r.status = StatusFinished
		r.clearTurnLocked()

		r.log.Info().Str("uid", m.UID).Int("x", m.X).Int("y", m.Y).Msg("Match won")

		r.broadcaster.Publish(r.turnStateLocked(), WinDeclared{
			UID:    m.UID,
			Symbol: m.Symbol,
			X:      m.X,
			Y:      m.Y,
		})
		return nil
	}

	next := r.otherPlayerLocked(m.UID)
	r.startTurnLocked(next.UID)

	return nil
}

// Reset clears the board and every ready flag. Players must ready again.
func (r *Room) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrNotFound
	}

	r.timer.cancel()
	r.board = Board{}
	for _, p := range r.players {
		p.Ready = false
	}
	r.clearTurnLocked()
	r.touchLocked()

	if len(r.players) == MaxPlayers {
		r.status = StatusPaired
	} else {
		r.status = StatusWaiting
	}

	r.log.Info().Msg("Room reset")

	r.broadcaster.Publish(
		BoardState{Board: r.board},
		r.playerListLocked(),
		r.turnStateLocked(),
		RoomReset{},
	)

	return nil
}

// startTurnLocked hands the turn to uid and arms the timeout.
func (r *Room) startTurnLocked(uid string) {
	r.currentTurn = uid
	r.turnStartedAt = r.now()
	r.timer.schedule(r.turnTimeout, func(gen uint64) {
		r.expireTurn(uid, gen)
	})

	r.broadcaster.Publish(r.turnStateLocked())
}

// expireTurn forfeits uid if the timer that fired is still the live one and
// uid still holds the turn. It reports whether a forfeit was declared.
func (r *Room) expireTurn(uid string, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || !r.timer.current(gen) {
		return false
	}
	if r.status != StatusActive || r.currentTurn != uid {
		return false
	}

	r.timer.cancel()
	r.status = StatusFinished
	r.clearTurnLocked()
	r.touchLocked()

	r.log.Info().Str("uid", uid).Msg("Turn timed out")

	r.broadcaster.Publish(r.turnStateLocked(), LossDeclared{UID: uid, Reason: ReasonTimeout})

	return true
}
