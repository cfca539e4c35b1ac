package gomoku

import (
	"encoding/json"
	"time"
)

// Event is a server-to-client notification scoped to one room.
type Event interface {
	EventType() string
}

// Loss reasons carried by LossDeclared.
const (
	ReasonTimeout = "timeout"
	ReasonLeft    = "left"
)

// User identifies a person as issued by the identity provider.
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
}

// Move is a stone placement request and, once applied, its announcement.
type Move struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	UID    string `json:"uid"`
	Symbol Symbol `json:"symbol"`
}

// PlayerView is the externally visible part of a Player.
type PlayerView struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Ready       bool   `json:"ready"`
	Symbol      Symbol `json:"symbol,omitempty"`
	Score       int    `json:"score"`
}

type PlayerJoined struct {
	User User `json:"user"`
}

type PlayerList struct {
	Players []PlayerView `json:"players"`
}

type ReadyAnnounced struct {
	DisplayName string `json:"displayName"`
}

type UnreadyAnnounced struct {
	DisplayName string `json:"displayName"`
}

type BoardState struct {
	Board Board `json:"board"`
}

// TurnState announces whose turn it is. StartedAt is unix milliseconds and,
// together with TimeoutMs, lets observers compute the time remaining.
// An empty UID means no turn is assigned.
type TurnState struct {
	UID       string `json:"uid"`
	StartedAt int64  `json:"startedAt"`
	TimeoutMs int64  `json:"timeoutMs"`
}

type MoveApplied struct {
	Move
}

type WinDeclared struct {
	UID    string `json:"uid"`
	Symbol Symbol `json:"symbol"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type LossDeclared struct {
	UID    string `json:"uid"`
	Reason string `json:"reason"`
}

type RoomReset struct{}

type PlayerLeft struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
}

func (PlayerJoined) EventType() string     { return "playerJoined" }
func (PlayerList) EventType() string       { return "playerList" }
func (ReadyAnnounced) EventType() string   { return "readyAnnounced" }
func (UnreadyAnnounced) EventType() string { return "unreadyAnnounced" }
func (BoardState) EventType() string       { return "boardState" }
func (TurnState) EventType() string        { return "turnState" }
func (MoveApplied) EventType() string      { return "moveApplied" }
func (WinDeclared) EventType() string      { return "winDeclared" }
func (LossDeclared) EventType() string     { return "lossDeclared" }
func (RoomReset) EventType() string        { return "roomReset" }
func (PlayerLeft) EventType() string       { return "playerLeft" }

// Envelope is the wire form of an Event.
type Envelope struct {
	Type string `json:"type"`
	Data Event  `json:"data"`
}

// MarshalEvent encodes ev as {"type": ..., "data": ...}.
func MarshalEvent(ev Event) ([]byte, error) {
	return json.Marshal(Envelope{Type: ev.EventType(), Data: ev})
}

func unixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
