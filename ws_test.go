package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/gomoku/games/gomoku"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *gomoku.Registry) {
	t.Helper()

	reg := gomoku.NewRegistry()
	t.Cleanup(reg.Close)

	srv := httptest.NewServer(newRouter(testConfig(), reg, gomoku.NewSessions(reg)))
	t.Cleanup(srv.Close)

	return srv, reg
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func next(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var ev wireEvent
	require.NoError(t, conn.ReadJSON(&ev))

	return ev
}

// readUntil discards events until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) wireEvent {
	t.Helper()

	for {
		if ev := next(t, conn); ev.Type == typ {
			return ev
		}
	}
}

func bindMsg(uid, name string) string {
	return `{"type":"bindRoom","roomId":"1","user":{"uid":"` + uid + `","displayName":"` + name + `"}}`
}

func TestWebSocketBindReplaysState(t *testing.T) {
	srv, reg := newTestServer(t)

	_, err := reg.Create()
	require.NoError(t, err)
	_, err = reg.Join(1, gomoku.User{UID: "a", DisplayName: "Alice"})
	require.NoError(t, err)

	conn := dial(t, srv)
	send(t, conn, bindMsg("a", "Alice"))

	var types []string
	for i := 0; i < 4; i++ {
		types = append(types, next(t, conn).Type)
	}
	assert.Equal(t, []string{"playerJoined", "playerList", "boardState", "turnState"}, types)
}

func TestWebSocketIgnoresBadFrames(t *testing.T) {
	srv, reg := newTestServer(t)

	_, err := reg.Create()
	require.NoError(t, err)

	conn := dial(t, srv)
	send(t, conn, "not json")
	send(t, conn, `{"type":"setReady","roomId":1}`)
	send(t, conn, bindMsg("a", "Alice"))

	assert.Equal(t, "playerJoined", next(t, conn).Type)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	srv, _ := newTestServer(t)

	header := http.Header{}
	header.Set("Origin", "http://evil.example")

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocketMatch(t *testing.T) {
	srv, reg := newTestServer(t)

	_, err := reg.Create()
	require.NoError(t, err)
	for _, u := range []gomoku.User{{UID: "a", DisplayName: "Alice"}, {UID: "b", DisplayName: "Bob"}} {
		_, err := reg.Join(1, u)
		require.NoError(t, err)
	}

	alice := dial(t, srv)
	send(t, alice, bindMsg("a", "Alice"))
	readUntil(t, alice, "turnState")

	bob := dial(t, srv)
	send(t, bob, bindMsg("b", "Bob"))
	readUntil(t, bob, "turnState")
	assert.Equal(t, "playerJoined", next(t, alice).Type)

	send(t, alice, `{"type":"setReady","roomId":1}`)
	send(t, bob, `{"type":"setReady","roomId":1,"uid":"b"}`)

	var turn gomoku.TurnState
	for turn.UID == "" {
		require.NoError(t, json.Unmarshal(readUntil(t, bob, "turnState").Data, &turn))
	}
	assert.Equal(t, "a", turn.UID)
	assert.Equal(t, gomoku.TurnTimeout.Milliseconds(), turn.TimeoutMs)

	send(t, alice, `{"type":"submitMove","roomId":1,"move":{"x":3,"y":4}}`)

	var move gomoku.Move
	require.NoError(t, json.Unmarshal(readUntil(t, bob, "moveApplied").Data, &move))
	assert.Equal(t, gomoku.Move{X: 3, Y: 4, UID: "a", Symbol: gomoku.SymbolX}, move)

	require.NoError(t, alice.Close())

	var loss gomoku.LossDeclared
	require.NoError(t, json.Unmarshal(readUntil(t, bob, "lossDeclared").Data, &loss))
	assert.Equal(t, gomoku.LossDeclared{UID: "a", Reason: gomoku.ReasonLeft}, loss)

	require.NoError(t, bob.Close())

	assert.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
