/*
Copyright © 2026 KmFahimHossain
*/

package main

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
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

// nsPrefix is the short event-name prefix of a game namespace.
func nsPrefix(kind GameKind) string {
	switch kind {
	case GameTicTacToe:
		return "ttt"
	case GameNim:
		return "nim"
	default:
		return "hotpotato"
	}
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan any
}

// connTable maps connection ids to live clients and implements Sender
// for the room service. Delivery is best-effort: a client whose writer
// is backed up drops the message and self-heals on the next snapshot.
type connTable struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

func newConnTable() *connTable {
	return &connTable{
		clients: make(map[string]*wsClient),
	}
}

func (t *connTable) add(c *wsClient) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.clients[c.id] = c
}

// remove drops the client from the table and closes its send channel.
// Send holds the read lock across the channel send, so after remove
// returns no further message can reach the closed channel.
func (t *connTable) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.clients[id]; ok {
		delete(t.clients, id)
		close(c.send)
	}
}

func (t *connTable) Send(connID string, msg any) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.clients[connID]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
	}
}

// serveGameSocket upgrades the connection and runs the read loop for
// one game namespace.
func serveGameSocket(cfg *Config, svc *RoomService, table *connTable, kind GameKind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "SERVE: Websocket upgrade failed for %s: %v", realIP(r), err)
			return
		}

		client := &wsClient{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan any, 8),
		}
		table.add(client)

		logf(cfg, "SERVE: Connection %s opened on %s from %s", client.id, nsPrefix(kind), realIP(r))

		go client.writePump()
		client.readPump(cfg, svc, table, kind)
	}
}

func (c *wsClient) readPump(cfg *Config, svc *RoomService, table *connTable, kind GameKind) {
	defer func() {
		table.remove(c.id)
		svc.Disconnect(c.id)
		_ = c.conn.Close()

		logf(cfg, "SERVE: Connection %s closed", c.id)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		req, seq, err := decodeRequest(kind, data)
		if err != nil {
			table.Send(c.id, ackMessage{
				Type:  nsPrefix(kind) + ":ack",
				Seq:   seq,
				Error: err.Error(),
			})
			continue
		}

		table.Send(c.id, dispatch(svc, kind, c.id, seq, req))
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// dispatch routes one decoded request to the room service and builds
// the correlated acknowledgement.
func dispatch(svc *RoomService, kind GameKind, connID string, seq int, req request) ackMessage {
	ack := ackMessage{
		Type: nsPrefix(kind) + ":ack",
		Seq:  seq,
	}

	fail := func(err error) ackMessage {
		ack.Error = err.Error()
		return ack
	}

	switch r := req.(type) {
	case createRoomRequest:
		switch kind {
		case GameTicTacToe:
			ack.RoomID = svc.CreateTicTacToeRoom(r.Rounds)
		case GameNim:
			ack.RoomID = svc.CreateNimRoom(r.Piles)
		case GameHotPotato:
			ack.RoomID = svc.CreateHotPotatoRoom(r.ShowTimer)
		}
		ack.OK = true

	case joinRoomRequest:
		index, err := svc.JoinRoom(kind, r.RoomID, connID)
		if err != nil {
			return fail(err)
		}
		ack.OK = true
		ack.RoomID = r.RoomID
		ack.Index = &index
		if kind != GameHotPotato {
			ack.Symbol = symbolFor(index)
		}
		ack.Room, _ = svc.Projection(kind, r.RoomID)

	case leaveRoomRequest:
		if err := svc.LeaveRoom(kind, r.RoomID, connID); err != nil {
			return fail(err)
		}
		ack.OK = true

	case tttMoveRequest:
		if err := svc.TicTacToeMove(r.RoomID, connID, r.Index); err != nil {
			return fail(err)
		}
		ack.OK = true

	case tttResetRequest:
		if err := svc.TicTacToeReset(r.RoomID); err != nil {
			return fail(err)
		}
		ack.OK = true

	case tttResetMatchRequest:
		if err := svc.TicTacToeResetMatch(r.RoomID); err != nil {
			return fail(err)
		}
		ack.OK = true

	case nimMoveRequest:
		if err := svc.NimMove(r.RoomID, connID, r.PileIndex, r.Count); err != nil {
			return fail(err)
		}
		ack.OK = true

	case nimRematchRequest:
		if err := svc.NimRematch(r.RoomID); err != nil {
			return fail(err)
		}
		ack.OK = true
		ack.Room, _ = svc.Projection(kind, r.RoomID)

	case potatoPassRequest:
		if err := svc.PotatoPass(r.RoomID, connID); err != nil {
			return fail(err)
		}
		ack.OK = true

	case potatoRestartRequest:
		if err := svc.PotatoRestart(r.RoomID); err != nil {
			return fail(err)
		}
		ack.OK = true
		ack.Room, _ = svc.Projection(kind, r.RoomID)

	default:
		ack.Error = "unhandled request"
	}

	return ack
}

// qrHandler renders a PNG QR code for the shareable room URL, so a
// second player can join from a phone.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomid")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerGames wires up each game namespace:
//   - /ws$path          → WebSocket channel for the namespace
//   - $path/:roomid/qr  → PNG QR code for the room URL
func registerGames(cfg *Config, svc *RoomService, table *connTable, mux *httprouter.Router) {
	for path, kind := range map[string]GameKind{
		"/ttt":       GameTicTacToe,
		"/nim":       GameNim,
		"/hotpotato": GameHotPotato,
	} {
		mux.GET(cfg.prefix+"/ws"+path, serveGameSocket(cfg, svc, table, kind))
		mux.GET(cfg.prefix+path+"/:roomid/qr", qrHandler)
	}
}
