package gomoku

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Client message types.
const (
	MsgBindRoom       = "bindRoom"
	MsgRequestPlayers = "requestPlayers"
	MsgSetReady       = "setReady"
	MsgSetUnready     = "setUnready"
	MsgSubmitMove     = "submitMove"
	MsgRequestReset   = "requestReset"
)

// RoomNumber is a room id that decodes from either a JSON number or a
// numeric string.
type RoomNumber int

func (n *RoomNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	s := strings.Trim(string(data), `"`)
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return newError(CodeValidation, "roomId must be an integer")
	}

	*n = RoomNumber(v)

	return nil
}

// ClientMessage is a frame received on the real-time channel.
type ClientMessage struct {
	Type   string     `json:"type"`
	RoomID RoomNumber `json:"roomId"`
	User   *User      `json:"user,omitempty"`
	UID    string     `json:"uid,omitempty"`
	Move   *Move      `json:"move,omitempty"`
}

// DecodeClientMessage parses a raw frame.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, newError(CodeValidation, "malformed message: "+err.Error())
	}
	return msg, nil
}

type session struct {
	room        *Room
	uid         string
	displayName string
}

// Sessions maps connection ids to the room and user they are bound to.
type Sessions struct {
	registry *Registry

	mu       sync.Mutex
	sessions map[string]*session

	log zerolog.Logger
}

func NewSessions(registry *Registry) *Sessions {
	return &Sessions{
		registry: registry,
		sessions: make(map[string]*session),
		log:      registry.log,
	}
}

// Bind attaches connID to a room for the rest of its life and replays the
// room's state to sink.
func (s *Sessions) Bind(connID string, roomID int, u User, sink Sink) error {
	u.UID = strings.TrimSpace(u.UID)
	if connID == "" || u.UID == "" || sink == nil {
		return newError(CodeValidation, "connection id, uid and sink are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[connID]; ok {
		return newError(CodeStateConflict, "connection is already bound")
	}

	room, err := s.registry.Room(roomID)
	if err != nil {
		return err
	}

	if err := room.bind(connID, u, sink); err != nil {
		return err
	}

	s.sessions[connID] = &session{
		room:        room,
		uid:         u.UID,
		displayName: u.DisplayName,
	}

	s.log.Debug().Str("conn", connID).Int("roomID", roomID).Str("uid", u.UID).Msg("Connection bound")

	return nil
}

// Unbind releases connID. The bound user leaves the room, as if they had
// asked to.
func (s *Sessions) Unbind(connID string) {
	s.mu.Lock()
	sess, ok := s.sessions[connID]
	delete(s.sessions, connID)
	s.mu.Unlock()

	if !ok {
		return
	}

	sess.room.unbind(connID)

	if err := s.registry.leaveRoom(sess.room, sess.uid); err != nil {
		s.log.Debug().Err(err).Str("conn", connID).Str("uid", sess.uid).Msg("Disconnect without seat")
		return
	}

	s.log.Debug().Str("conn", connID).Int("roomID", sess.room.ID()).Str("uid", sess.uid).Msg("Connection unbound")
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *Sessions) lookup(connID string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[connID]
	return sess, ok
}

// Handle applies one client message from connID. A bindRoom message binds
// the connection to sink; anything else goes to the bound room. The error
// explains a dropped message and is not meant for the sender.
func (s *Sessions) Handle(connID string, sink Sink, msg ClientMessage) error {
	if msg.Type == MsgBindRoom {
		if msg.User == nil {
			return newError(CodeValidation, "bindRoom requires a user")
		}
		return s.Bind(connID, int(msg.RoomID), *msg.User, sink)
	}

	sess, ok := s.lookup(connID)
	if !ok {
		return newError(CodeStateConflict, "connection is not bound")
	}

	if int(msg.RoomID) != sess.room.ID() {
		return newError(CodeValidation, "message is for another room")
	}

	room := sess.room

	switch msg.Type {
	case MsgRequestPlayers:
		room.RequestPlayers()
		return nil
	case MsgSetReady:
		uid, err := sess.actor(msg.UID)
		if err != nil {
			return err
		}
		return room.SetReady(uid)
	case MsgSetUnready:
		uid, err := sess.actor(msg.UID)
		if err != nil {
			return err
		}
		return room.SetUnready(uid)
	case MsgSubmitMove:
		if msg.Move == nil {
			return newError(CodeValidation, "submitMove requires a move")
		}
		uid, err := sess.actor(msg.Move.UID)
		if err != nil {
			return err
		}
		m := *msg.Move
		m.UID = uid
		return room.SubmitMove(m)
	case MsgRequestReset:
		return room.Reset()
	default:
		return newError(CodeValidation, "unknown message type "+strconv.Quote(msg.Type))
	}
}

// actor resolves the uid a message acts for. It must be the bound uid.
func (sess *session) actor(uid string) (string, error) {
	if uid == "" {
		return sess.uid, nil
	}
	if uid != sess.uid {
		return "", newError(CodeValidation, "uid does not match connection")
	}
	return uid, nil
}
