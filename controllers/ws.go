package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/PattyWambere/Your-Commissioner/middleware"
	"github.com/PattyWambere/Your-Commissioner/pkg/metrics"
	"github.com/PattyWambere/Your-Commissioner/pkg/realtime"
	svc "github.com/PattyWambere/Your-Commissioner/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

// clientFrame is any inbound socket event.
//
//	-> {type: "join_conversation", id?: string, conversation_id: number}
//	-> {type: "send_message", id?: string, conversation_id?: number, body: string, phone?: string}
//	<- {type: "ack", id: string, ok: true, conversation_id?: number} | {type: "ack", id: string, error: string}
//	<- {type: "new_message", message: {...}}
type clientFrame struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	ConversationID uint   `json:"conversation_id"`
	Body           string `json:"body"`
	Phone          string `json:"phone"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ID             string `json:"id,omitempty"`
	OK             bool   `json:"ok,omitempty"`
	ConversationID uint   `json:"conversation_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ChatWS upgrades the connection, authenticates it once from the handshake,
// and then serves join and send events until the peer goes away. A missing
// or bad credential leaves the connection anonymous rather than rejecting
// it; anonymous sends and joins fail per event.
func ChatWS(gw *realtime.Gateway, m *svc.Messenger, auth *middleware.Authenticator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := handshakePrincipal(c, auth)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("ws upgrade failed")
			return
		}

		client := realtime.NewClient(conn, principal)
		gw.Register(client)
		go client.WritePump()
		defer gw.Unregister(client)

		for {
			payload, err := client.ReadFrame()
			if err != nil {
				return
			}
			var frame clientFrame
			if err := json.Unmarshal(payload, &frame); err != nil {
				ack(client, ackFrame{Type: "ack", Error: "Invalid payload"})
				continue
			}
			switch strings.ToLower(strings.TrimSpace(frame.Type)) {
			case "join_conversation":
				handleJoin(c, gw, m, client, frame, logger)
			case "send_message":
				handleSend(c, m, client, frame)
			default:
				ack(client, ackFrame{Type: "ack", ID: frame.ID, Error: "Invalid payload"})
			}
		}
	}
}

// handleJoin admits the connection to the conversation's room after checking
// the caller is actually a party to it.
func handleJoin(c *gin.Context, gw *realtime.Gateway, m *svc.Messenger, client *realtime.Client, frame clientFrame, logger zerolog.Logger) {
	p := client.Principal()
	if p == nil || frame.ConversationID == 0 {
		metrics.JoinsRejected.Inc()
		ack(client, ackFrame{Type: "ack", ID: frame.ID, Error: "Unauthorized"})
		return
	}
	if _, err := m.AuthorizeParticipant(c.Request.Context(), p.UserID, frame.ConversationID); err != nil {
		metrics.JoinsRejected.Inc()
		logger.Debug().Uint("user_id", p.UserID).Uint("conversation_id", frame.ConversationID).Msg("room join denied")
		ack(client, ackFrame{Type: "ack", ID: frame.ID, Error: ackError(err)})
		return
	}
	gw.Join(client, frame.ConversationID)
	if frame.ID != "" {
		ack(client, ackFrame{Type: "ack", ID: frame.ID, OK: true, ConversationID: frame.ConversationID})
	}
}

// handleSend runs the same pathway as the HTTP endpoint; the ack mirrors the
// callback-style response of the wire protocol and never closes the
// connection on failure.
func handleSend(c *gin.Context, m *svc.Messenger, client *realtime.Client, frame clientFrame) {
	p := client.Principal()
	if p == nil {
		ack(client, ackFrame{Type: "ack", ID: frame.ID, Error: "Unauthorized"})
		return
	}
	var conversationID *uint
	if frame.ConversationID != 0 {
		conversationID = &frame.ConversationID
	}
	_, resolved, err := m.SendMessage(c.Request.Context(), p.UserID, svc.SendInput{
		ConversationID: conversationID,
		Body:           frame.Body,
		Phone:          frame.Phone,
		Source:         "socket",
	})
	if err != nil {
		ack(client, ackFrame{Type: "ack", ID: frame.ID, Error: ackError(err)})
		return
	}
	ack(client, ackFrame{Type: "ack", ID: frame.ID, OK: true, ConversationID: resolved})
}

func ack(client *realtime.Client, frame ackFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	client.Enqueue(payload)
}

func ackError(err error) string {
	switch {
	case errors.Is(err, svc.ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, svc.ErrForbidden):
		return "Forbidden"
	case errors.Is(err, svc.ErrNotFound):
		return "Conversation not found"
	case errors.Is(err, svc.ErrInvalidPayload):
		return "Invalid payload"
	default:
		return "Failed to send message"
	}
}

// handshakePrincipal verifies the credential carried on the upgrade request:
// the token cookie, the bearer header, or a token query parameter. Failure
// means an anonymous connection.
func handshakePrincipal(c *gin.Context, auth *middleware.Authenticator) *realtime.Principal {
	tokenStr := middleware.TokenFromRequest(c)
	if tokenStr == "" {
		tokenStr = strings.TrimSpace(c.Query("token"))
	}
	if tokenStr == "" {
		return nil
	}
	p, _, err := auth.VerifyCredential(tokenStr)
	if err != nil {
		return nil
	}
	return &realtime.Principal{UserID: p.UserID, Email: p.Email, Role: p.Role}
}
