package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
)

const (
	decksWSReadLimit    = 64 << 10
	decksWSReadDeadline = 10 * time.Minute
	decksWSHeartbeat    = 3 * time.Second
)

var decksWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// decksWSInMessage is the JSON shape sent from the client.
type decksWSInMessage struct {
	Type     string `json:"type"`
	Topic    string `json:"topic"`
	Audience string `json:"audience"`
	Model    string `json:"model"`
	Theme    string `json:"theme"`
}

// decksWSOutMessage is the JSON shape sent to the client.
type decksWSOutMessage struct {
	Type  string       `json:"type"`
	Stage string       `json:"stage,omitempty"`
	Deck  *models.Deck `json:"deck,omitempty"`
	Error string       `json:"error,omitempty"`
}

// DecksWS handles GET /v1/decks/ws — WebSocket endpoint for generation with
// progress events. One generation runs at a time per connection.
func (h *Handler) DecksWS(w http.ResponseWriter, r *http.Request) {
	conn, err := decksWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("decks ws upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(decksWSReadLimit)
	conn.SetReadDeadline(time.Now().Add(decksWSReadDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(decksWSReadDeadline))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			log.Debug().Err(err).Msg("decks ws read")
			return
		}
		conn.SetReadDeadline(time.Now().Add(decksWSReadDeadline))

		var in decksWSInMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			_ = writeWSJSON(conn, decksWSOutMessage{Type: "error", Error: "invalid JSON: " + err.Error()})
			continue
		}
		if in.Type != "generate" {
			_ = writeWSJSON(conn, decksWSOutMessage{Type: "error", Error: "expected type: generate"})
			continue
		}
		if strings.TrimSpace(in.Topic) == "" {
			_ = writeWSJSON(conn, decksWSOutMessage{Type: "error", Error: "topic required"})
			continue
		}

		h.generateOverWS(r.Context(), conn, &in)
	}
}

// generateOverWS runs one generation, emitting progress heartbeats while the
// pipeline works and a final deck or error message when it finishes.
func (h *Handler) generateOverWS(ctx context.Context, conn *websocket.Conn, in *decksWSInMessage) {
	_ = writeWSJSON(conn, decksWSOutMessage{Type: "progress", Stage: "started"})

	type result struct {
		deck *models.Deck
		err  error
	}
	done := make(chan result, 1)
	go func() {
		d, err := h.decks.GenerateDeck(ctx, &models.GenerateDeckRequest{
			Topic:    in.Topic,
			Audience: in.Audience,
			Model:    in.Model,
			Theme:    in.Theme,
		})
		done <- result{deck: d, err: err}
	}()

	ticker := time.NewTicker(decksWSHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case res := <-done:
			if res.err != nil {
				_ = writeWSJSON(conn, decksWSOutMessage{Type: "error", Error: res.err.Error()})
				return
			}
			_ = writeWSJSON(conn, decksWSOutMessage{Type: "deck", Deck: res.deck})
			return
		case <-ticker.C:
			if err := writeWSJSON(conn, decksWSOutMessage{Type: "progress", Stage: "working"}); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeWSJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v)
}
