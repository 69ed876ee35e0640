package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PattyWambere/Your-Commissioner/models"

	"github.com/gorilla/websocket"
)

type socketEvent struct {
	Type           string          `json:"type"`
	ID             string          `json:"id"`
	OK             bool            `json:"ok"`
	ConversationID uint            `json:"conversation_id"`
	Error          string          `json:"error"`
	Message        *models.Message `json:"message"`
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	header := http.Header{}
	if token != "" {
		header.Set("Cookie", "token="+token)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) socketEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var ev socketEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("unmarshal frame %s: %v", payload, err)
	}
	return ev
}

func writeEvent(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func TestSocketAnonymousSendRejected(t *testing.T) {
	app := buildTestApp(t)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	conn := dialWS(t, srv, "")
	writeEvent(t, conn, map[string]any{
		"type": "send_message", "id": "1", "conversation_id": 1, "body": "hi",
	})

	ev := readEvent(t, conn)
	if ev.Type != "ack" || ev.Error != "Unauthorized" {
		t.Fatalf("expected Unauthorized ack, got %+v", ev)
	}

	var count int64
	if err := app.db.Model(&models.Message{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no message persisted, got %d", count)
	}
}

func TestSocketJoinRejectedForNonParty(t *testing.T) {
	app := buildTestApp(t)
	app.seedUser(t, 81, "A", "a81@example.com", models.RoleUser)
	app.seedUser(t, 91, "B", "b91@example.com", models.RoleCommissioner)
	app.seedUser(t, 99, "C", "c99@example.com", models.RoleUser)
	conv, err := app.store.UpsertConversation(t.Context(), 81, 91)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	conn := dialWS(t, srv, mintToken(t, 99, "c99@example.com", models.RoleUser))
	writeEvent(t, conn, map[string]any{
		"type": "join_conversation", "id": "1", "conversation_id": conv.ID,
	})

	ev := readEvent(t, conn)
	if ev.Type != "ack" || ev.Error != "Forbidden" {
		t.Fatalf("expected Forbidden ack, got %+v", ev)
	}
	if app.gateway.RoomSize(conv.ID) != 0 {
		t.Fatalf("expected the room to stay empty")
	}
}

func TestSocketJoinThenHTTPSendReachesAllTabs(t *testing.T) {
	app := buildTestApp(t)
	app.seedUser(t, 82, "Uwase", "a82@example.com", models.RoleUser)
	app.seedUser(t, 92, "Keza", "b92@example.com", models.RoleCommissioner)
	conv, err := app.store.UpsertConversation(t.Context(), 82, 92)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	userToken := mintToken(t, 82, "a82@example.com", models.RoleUser)
	tabA := dialWS(t, srv, userToken)
	tabB := dialWS(t, srv, userToken)
	for _, conn := range []*websocket.Conn{tabA, tabB} {
		writeEvent(t, conn, map[string]any{
			"type": "join_conversation", "id": "j", "conversation_id": conv.ID,
		})
		if ev := readEvent(t, conn); !ev.OK {
			t.Fatalf("expected join ack, got %+v", ev)
		}
	}

	w := doJSON(t, app, http.MethodPost, "/api/chat/messages",
		mintToken(t, 92, "b92@example.com", models.RoleCommissioner),
		map[string]any{"conversationId": conv.ID, "body": "viewing at 3pm"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	for _, conn := range []*websocket.Conn{tabA, tabB} {
		ev := readEvent(t, conn)
		if ev.Type != "new_message" || ev.Message == nil || ev.Message.Body != "viewing at 3pm" {
			t.Fatalf("expected new_message on every tab, got %+v", ev)
		}
	}
}

func TestSocketSendEchoesToSender(t *testing.T) {
	app := buildTestApp(t)
	app.seedUser(t, 83, "Uwase", "a83@example.com", models.RoleUser)
	app.seedUser(t, 93, "Keza", "b93@example.com", models.RoleCommissioner)
	conv, err := app.store.UpsertConversation(t.Context(), 83, 93)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	conn := dialWS(t, srv, mintToken(t, 83, "a83@example.com", models.RoleUser))
	writeEvent(t, conn, map[string]any{
		"type": "join_conversation", "id": "j", "conversation_id": conv.ID,
	})
	if ev := readEvent(t, conn); !ev.OK {
		t.Fatalf("expected join ack, got %+v", ev)
	}

	writeEvent(t, conn, map[string]any{
		"type": "send_message", "id": "s1", "conversation_id": conv.ID, "body": "hello",
	})

	// one ack and one echoed new_message, in either order
	var gotAck, gotEcho bool
	for i := 0; i < 2; i++ {
		ev := readEvent(t, conn)
		switch ev.Type {
		case "ack":
			if ev.Error != "" || !ev.OK || ev.ConversationID != conv.ID {
				t.Fatalf("unexpected ack %+v", ev)
			}
			gotAck = true
		case "new_message":
			if ev.Message == nil || ev.Message.Body != "hello" {
				t.Fatalf("unexpected echo %+v", ev)
			}
			gotEcho = true
		default:
			t.Fatalf("unexpected event %+v", ev)
		}
	}
	if !gotAck || !gotEcho {
		t.Fatalf("expected both ack and echo, got ack=%v echo=%v", gotAck, gotEcho)
	}
}
