/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package gomoku

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MaxRooms is the number of room ids, 1 through MaxRooms.
const MaxRooms = 100

// PlayerSummary is a player as shown in room listings.
type PlayerSummary struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Ready       bool   `json:"ready"`
}

// RoomSummary is what callers outside a room may see of it. It never
// carries the board, the turn or the timer.
type RoomSummary struct {
	RoomID  int             `json:"roomId"`
	Players []PlayerSummary `json:"players"`
}

type Option func(*Registry)

func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// WithTurnTimeout overrides TurnTimeout.
func WithTurnTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.turnTimeout = d
		}
	}
}

// WithIdleTimeout reaps rooms that have sat untouched for d with no bound
// connection and no running match. Zero disables reaping.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idleTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// Registry owns the live rooms.
type Registry struct {
	mu    sync.RWMutex
	rooms map[int]*Room

	turnTimeout time.Duration
	idleTimeout time.Duration
	now         func() time.Time
	log         zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:       make(map[int]*Room),
		turnTimeout: TurnTimeout,
		now:         time.Now,
		log:         zerolog.Nop(),
		stop:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.idleTimeout > 0 {
		go r.reaperLoop()
	}

	return r
}

// Create opens a room on the lowest free id.
func (r *Registry) Create() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := 1; id <= MaxRooms; id++ {
		if _, ok := r.rooms[id]; ok {
			continue
		}

		r.rooms[id] = newRoom(id, r.turnTimeout, r.now, r.log)
		r.log.Info().Int("roomID", id).Msg("Room created")

		return id, nil
	}

	return 0, ErrCapacity
}

// Room returns the live room with the given id.
func (r *Registry) Room(id int) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, ErrNotFound)
	}

	return room, nil
}

// Join seats user in the room. Joining twice with the same uid returns the
// current summary.
func (r *Registry) Join(id int, u User) (RoomSummary, error) {
	u.UID = strings.TrimSpace(u.UID)
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	if u.UID == "" || u.DisplayName == "" {
		return RoomSummary{}, newError(CodeValidation, "uid and displayName are required")
	}

	room, err := r.Room(id)
	if err != nil {
		return RoomSummary{}, err
	}

	summary, err := room.join(u)
	if err != nil {
		return RoomSummary{}, fmt.Errorf("room %d: %w", id, err)
	}

	return summary, nil
}

// Leave removes uid from the room, destroying the room once it is empty.
func (r *Registry) Leave(id int, uid string) error {
	room, err := r.Room(id)
	if err != nil {
		return err
	}

	return r.leaveRoom(room, uid)
}

func (r *Registry) leaveRoom(room *Room, uid string) error {
	empty, err := room.leave(uid)
	if err != nil {
		return fmt.Errorf("room %d: %w", room.ID(), err)
	}

	if empty {
		r.remove(room)
	}

	return nil
}

func (r *Registry) remove(room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[room.ID()] == room {
		delete(r.rooms, room.ID())
	}
}

// List returns a summary of every live room, ordered by id.
func (r *Registry) List() []RoomSummary {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].ID() < rooms[j].ID()
	})

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, room.Summary())
	}

	return summaries
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

// reaperLoop removes idle rooms until Close is called.
func (r *Registry) reaperLoop() {
	ticker := time.NewTicker(r.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reapIdle(r.now().Add(-r.idleTimeout))
		case <-r.stop:
			return
		}
	}
}

// reapIdle closes and removes every room idle since before cutoff, and
// returns how many it removed.
func (r *Registry) reapIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	reaped := 0
	for id, room := range r.rooms {
		if room.reapIfIdle(cutoff) {
			delete(r.rooms, id)
			reaped++
		}
	}

	if reaped > 0 {
		r.log.Info().Int("reaped", reaped).Int("remaining", len(r.rooms)).Msg("Reaped idle rooms")
	}

	return reaped
}

// Close stops the reaper and every pending timer, and drops all rooms.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, room := range r.rooms {
		room.close()
		delete(r.rooms, id)
	}
}
