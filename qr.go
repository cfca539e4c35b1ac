package main

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Seednode/gomoku/games/gomoku"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

func requestScheme(cfg *Config, r *http.Request) string {
	scheme := cfg.scheme()
	if r.TLS != nil {
		scheme = "https"
	}

	switch proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto {
	case "http", "https":
		scheme = proto
	}

	return scheme
}

// roomURL is the web client link for a room. Without a configured client
// it falls back to this server's root.
func roomURL(cfg *Config, r *http.Request, id int) (string, error) {
	base := cfg.clientBase()
	if base == "" {
		base = requestScheme(cfg, r) + "://" + r.Host + cfg.prefix + "/"
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("room", strconv.Itoa(id))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// serveRoomQR renders a PNG QR code of the room's client link so a second
// player can join from a phone.
func serveRoomQR(cfg *Config, reg *gomoku.Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, err := strconv.Atoi(ps.ByName("roomid"))
		if err != nil {
			writeError(cfg, w, &gomoku.Error{Code: gomoku.CodeValidation, Message: "room id must be an integer"})
			return
		}

		if _, err := reg.Room(id); err != nil {
			writeError(cfg, w, err)
			return
		}

		link, err := roomURL(cfg, r, id)
		if err != nil {
			writeError(cfg, w, err)
			return
		}

		png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
		if err != nil {
			writeError(cfg, w, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}
