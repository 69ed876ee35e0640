package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/PattyWambere/Your-Commissioner/models"
)

func doJSON(t *testing.T, app *testApp, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func TestSendMessageRequiresAuth(t *testing.T) {
	app := buildTestApp(t)
	w := doJSON(t, app, http.MethodPost, "/api/chat/messages", "", map[string]any{"body": "hi"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSendMessageFirstContact(t *testing.T) {
	app := buildTestApp(t)
	app.seedUser(t, 51, "Uwase", "uwase@example.com", models.RoleUser)
	app.seedUser(t, 61, "Keza", "keza@example.com", models.RoleCommissioner)
	app.seedProperty(t, 501, 61, "Villa Kiyovu")

	token := mintToken(t, 51, "uwase@example.com", models.RoleUser)
	w := doJSON(t, app, http.MethodPost, "/api/chat/messages", token, map[string]any{
		"propertyId": 501,
		"body":       "Is this available?",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message        models.Message `json:"message"`
		ConversationID uint           `json:"conversationId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID == 0 {
		t.Fatalf("expected a conversation id in the response")
	}
	if resp.Message.PropertyName != "Villa Kiyovu" || resp.Message.PropertyImage != "/img/lead.jpg" || resp.Message.PropertyLink != "/properties/501" {
		t.Fatalf("expected the property snapshot denormalized, got %+v", resp.Message)
	}

	var conv models.Conversation
	if err := app.db.First(&conv, resp.ConversationID).Error; err != nil {
		t.Fatalf("load conversation: %v", err)
	}
	if conv.UserID != 51 || conv.CommissionerID != 61 {
		t.Fatalf("unexpected pairing %d/%d", conv.UserID, conv.CommissionerID)
	}
	if conv.UnreadForCommissioner != 1 || conv.UnreadForUser != 0 {
		t.Fatalf("expected commissioner unread = 1, got user=%d commissioner=%d", conv.UnreadForUser, conv.UnreadForCommissioner)
	}
}

func TestSendMessageForbiddenForNonParty(t *testing.T) {
	app := buildTestApp(t)
	app.seedUser(t, 52, "A", "a52@example.com", models.RoleUser)
	app.seedUser(t, 62, "B", "b62@example.com", models.RoleCommissioner)
	app.seedUser(t, 72, "C", "c72@example.com", models.RoleUser)
	conv, err := app.store.UpsertConversation(t.Context(), 52, 62)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	token := mintToken(t, 72, "c72@example.com", models.RoleUser)
	w := doJSON(t, app, http.MethodPost, "/api/chat/messages", token, map[string]any{
		"conversationId": conv.ID,
		"body":           "let me in",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestListMessagesOldestFirst(t *testing.T) {
	app := buildTestApp(t)
	app.seedUser(t, 53, "A", "a53@example.com", models.RoleUser)
	app.seedUser(t, 63, "B", "b63@example.com", models.RoleCommissioner)
	conv, err := app.store.UpsertConversation(t.Context(), 53, 63)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	token := mintToken(t, 53, "a53@example.com", models.RoleUser)
	for _, body := range []string{"one", "two"} {
		w := doJSON(t, app, http.MethodPost, "/api/chat/messages", token, map[string]any{
			"conversationId": conv.ID,
			"body":           body,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("send %q: got %d", body, w.Code)
		}
	}

	w := doJSON(t, app, http.MethodGet, "/api/chat/messages?conversationId="+strconv.FormatUint(uint64(conv.ID), 10), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 2 || resp.Messages[0].Body != "one" || resp.Messages[1].Body != "two" {
		t.Fatalf("expected oldest-first history, got %+v", resp.Messages)
	}
}

func TestConversationEndpoints(t *testing.T) {
	app := buildTestApp(t)
	app.seedUser(t, 54, "Uwase", "a54@example.com", models.RoleUser)
	app.seedUser(t, 64, "Keza", "b64@example.com", models.RoleCommissioner)
	app.seedProperty(t, 504, 64, "Bungalow Nyamirambo")

	token := mintToken(t, 54, "a54@example.com", models.RoleUser)

	w := doJSON(t, app, http.MethodPost, "/api/chat/conversations", token, map[string]any{"propertyId": 504})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first open, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, app, http.MethodPost, "/api/chat/conversations", token, map[string]any{"propertyId": 504})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on reopen, got %d", w.Code)
	}

	w = doJSON(t, app, http.MethodGet, "/api/chat/conversations", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 listing, got %d", w.Code)
	}
	var resp struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Conversations) != 1 {
		t.Fatalf("expected one conversation, got %d", len(resp.Conversations))
	}
	if resp.Conversations[0].Commissioner == nil || resp.Conversations[0].Commissioner.Name != "Keza" {
		t.Fatalf("expected the commissioner profile embedded, got %+v", resp.Conversations[0].Commissioner)
	}
}
