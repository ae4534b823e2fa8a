package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamDelay paces event playback so clients can render the battle as it
// unfolds instead of receiving one burst.
const streamDelay = 50 * time.Millisecond

// handleBattleStream replays a stored battle's event log over a websocket,
// one JSON event per message, then closes.
func (s *server) handleBattleStream(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "battle not found")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	for _, ev := range rec.Report.Events {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
		time.Sleep(streamDelay)
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "battle complete"),
		time.Now().Add(time.Second))
}
