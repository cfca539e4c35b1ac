package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Seednode/gomoku/games/gomoku"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 4 << 10

type roomRequest struct {
	RoomID gomoku.RoomNumber `json:"roomId"`
	User   gomoku.User       `json:"user"`
}

func decodeRoomRequest(w http.ResponseWriter, r *http.Request) (roomRequest, error) {
	var req roomRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, &gomoku.Error{Code: gomoku.CodeValidation, Message: "invalid request body"}
	}

	return req, nil
}

func serveListRooms(cfg *Config, reg *gomoku.Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(cfg, w, http.StatusOK, struct {
			Rooms []gomoku.RoomSummary `json:"rooms"`
		}{
			Rooms: reg.List(),
		})
	}
}

func serveCreateRoom(cfg *Config, reg *gomoku.Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		id, err := reg.Create()
		if err != nil {
			writeError(cfg, w, err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, struct {
			RoomID int `json:"roomId"`
		}{
			RoomID: id,
		})

		log.Debug().
			Int("roomID", id).
			Str("remote", realIP(r)).
			Dur("took", time.Since(startTime)).
			Msg("SERVE: Created room")
	}
}

func serveJoinRoom(cfg *Config, reg *gomoku.Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		req, err := decodeRoomRequest(w, r)
		if err != nil {
			writeError(cfg, w, err)
			return
		}

		summary, err := reg.Join(int(req.RoomID), req.User)
		if err != nil {
			writeError(cfg, w, err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, struct {
			Room gomoku.RoomSummary `json:"room"`
		}{
			Room: summary,
		})

		log.Debug().
			Int("roomID", int(req.RoomID)).
			Str("uid", req.User.UID).
			Str("remote", realIP(r)).
			Msg("SERVE: Joined room")
	}
}

func serveLeaveRoom(cfg *Config, reg *gomoku.Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		req, err := decodeRoomRequest(w, r)
		if err != nil {
			writeError(cfg, w, err)
			return
		}

		if err := reg.Leave(int(req.RoomID), req.User.UID); err != nil {
			writeError(cfg, w, err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, struct {
			Success bool `json:"success"`
		}{
			Success: true,
		})

		log.Debug().
			Int("roomID", int(req.RoomID)).
			Str("uid", req.User.UID).
			Str("remote", realIP(r)).
			Msg("SERVE: Left room")
	}
}

func registerAPI(cfg *Config, reg *gomoku.Registry, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/api/rooms", serveListRooms(cfg, reg))
	mux.POST(cfg.prefix+"/api/create-room", serveCreateRoom(cfg, reg))
	mux.POST(cfg.prefix+"/api/join-room", serveJoinRoom(cfg, reg))
	mux.POST(cfg.prefix+"/api/leave-room", serveLeaveRoom(cfg, reg))
}
