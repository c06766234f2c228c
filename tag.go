/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// The tag relay.
//
// Every browser holds one websocket to /ws. The relay hands it a client ID,
// lets it create, list and join rooms, and fans out what each member reports
// about itself to the rest of its room. The only rule it enforces is who is
// "ebe": the first player in a room, then whoever was last caught, and when
// the ebe leaves, the longest-standing remaining player.
//
// Routes:
//   - $prefix/ws                → websocket
//   - $prefix/rooms             → JSON list of rooms
//   - $prefix/rooms/:roomid/qr  → PNG QR code linking to the room

package main

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, rooms *RoomStore, registry *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := newClient(conn, cfg.sendBuffer)
		id := registry.Register(client)

		logf(cfg, "CONN: %s connected from %s", id, realIP(r))

		go client.writePump(cfg)
		client.readPump(cfg, newSession(cfg, rooms, registry, id))
	}
}

func serveRoomList(cfg *Config, rooms *RoomStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		data, err := json.Marshal(rooms.ListRooms())
		if err != nil {
			errs <- err

			http.Error(w, "unable to list rooms", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Room list (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// roomURL is the address a scanned QR code should open.
func roomURL(cfg *Config, r *http.Request, roomID string) string {
	// Respect TLS and X-Forwarded-Proto if present.
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/?room=" + url.QueryEscape(roomID)
}

func serveRoomQR(cfg *Config, rooms *RoomStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID := ps.ByName("roomid")

		if _, err := rooms.Room(roomID); err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(roomURL(cfg, r, roomID), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, err = w.Write(png)
		if err != nil {
			errs <- err

			return
		}
	}
}

func registerTagGame(cfg *Config, mux *httprouter.Router, errs chan<- error) {
	registry := newRegistry(cfg)
	rooms := newRoomStore(cfg, registry)

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, rooms, registry))
	mux.GET(cfg.prefix+"/rooms", serveRoomList(cfg, rooms, errs))
	mux.GET(cfg.prefix+"/rooms/:roomid/qr", serveRoomQR(cfg, rooms, errs))
}
