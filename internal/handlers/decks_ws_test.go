package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialDecksWS(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(h.DecksWS))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWSMessage(t *testing.T, conn *websocket.Conn) decksWSOutMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var out decksWSOutMessage
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read: %v", err)
	}
	return out
}

func TestDecksWS_GenerateStreamsProgressThenDeck(t *testing.T) {
	conn := dialDecksWS(t, NewHandler(&fakeDeckService{deck: sampleDeck()}))

	if err := conn.WriteJSON(decksWSInMessage{Type: "generate", Topic: "fusion power"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	first := readWSMessage(t, conn)
	if first.Type != "progress" || first.Stage != "started" {
		t.Fatalf("first message = %+v, want started progress", first)
	}

	for i := 0; i < 5; i++ {
		msg := readWSMessage(t, conn)
		switch msg.Type {
		case "progress":
			continue
		case "deck":
			if msg.Deck == nil || msg.Deck.Title != "Sample Deck" {
				t.Fatalf("deck message = %+v", msg)
			}
			return
		default:
			t.Fatalf("unexpected message %+v", msg)
		}
	}
	t.Fatal("never received deck message")
}

func TestDecksWS_RejectsUnknownType(t *testing.T) {
	conn := dialDecksWS(t, NewHandler(&fakeDeckService{deck: sampleDeck()}))

	if err := conn.WriteJSON(decksWSInMessage{Type: "subscribe"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readWSMessage(t, conn)
	if msg.Type != "error" || !strings.Contains(msg.Error, "generate") {
		t.Fatalf("message = %+v, want error naming generate", msg)
	}
}

func TestDecksWS_RequiresTopic(t *testing.T) {
	conn := dialDecksWS(t, NewHandler(&fakeDeckService{deck: sampleDeck()}))

	if err := conn.WriteJSON(decksWSInMessage{Type: "generate"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readWSMessage(t, conn)
	if msg.Type != "error" || !strings.Contains(msg.Error, "topic") {
		t.Fatalf("message = %+v, want topic error", msg)
	}
}
