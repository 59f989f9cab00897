package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kjannette/trahn-ledger/internal/report"
)

const streamWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type streamMessage struct {
	AccountID string              `json:"accountId"`
	Snapshot  report.SnapshotView `json:"snapshot"`
	Timestamp time.Time           `json:"timestamp"`
}

// handleStream pushes the account's snapshot on connect and then every
// stream interval until the client goes away or the server shuts down.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.portfolio.Valuation(r.Context(), id); s.readFailed(w, id, "portfolio", err) {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("account", id).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(s.streamCtx)
	defer cancel()

	// Reads only detect the close; clients have nothing to send.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.log.Debug().Str("account", id).Msg("Stream client connected")

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		v, err := s.portfolio.Valuation(ctx, id)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error().Err(err).Str("account", id).Msg("Stream valuation failed")
			}
			return
		}
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(streamMessage{
			AccountID: id,
			Snapshot:  report.NewSnapshotView(v),
			Timestamp: time.Now().UTC(),
		}); err != nil {
			s.log.Debug().Err(err).Str("account", id).Msg("Stream write failed")
			return
		}

		select {
		case <-ctx.Done():
			s.log.Debug().Str("account", id).Msg("Stream closed")
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
			return
		case <-ticker.C:
		}
	}
}
