package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/PattyWambere/Your-Commissioner/models"
	"github.com/PattyWambere/Your-Commissioner/pkg/cache"
	"github.com/PattyWambere/Your-Commissioner/pkg/config"
	"github.com/PattyWambere/Your-Commissioner/pkg/metrics"
	"github.com/PattyWambere/Your-Commissioner/pkg/realtime"
	"github.com/PattyWambere/Your-Commissioner/pkg/store"

	"github.com/rs/zerolog"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidPayload = errors.New("invalid payload")
)

// SendInput is one message submission. ConversationID targets an existing
// thread; without it, PropertyID resolves the commissioner for a
// first-contact upsert. The property display fields are optional overrides
// for the denormalized snapshot.
type SendInput struct {
	ConversationID *uint
	PropertyID     *uint
	PropertyName   string
	PropertyImage  string
	PropertyLink   string
	Body           string
	Phone          string
	Source         string // "http" (default) or "socket", for metrics only
}

// Messenger is the single send pathway. The HTTP endpoint and the socket
// send event both come through here, so validation, persistence, counters
// and the broadcast key cannot drift apart.
type Messenger struct {
	store    *store.Store
	registry *realtime.Registry
	cache    *cache.Cache
	log      zerolog.Logger
}

func NewMessenger(st *store.Store, registry *realtime.Registry, logger zerolog.Logger) *Messenger {
	c := cache.Default()
	c.SetMaxItems(config.SnapshotCacheMaxItems)
	return &Messenger{store: st, registry: registry, cache: c, log: logger}
}

// SendMessage validates, persists and broadcasts one message. It returns the
// persisted message and the resolved conversation id, which first-contact
// clients need in order to join the room.
func (m *Messenger) SendMessage(ctx context.Context, senderID uint, in SendInput) (*models.Message, uint, error) {
	if senderID == 0 {
		return nil, 0, ErrUnauthorized
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, 0, ErrInvalidPayload
	}

	sender, err := m.store.FindUser(ctx, senderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, ErrUnauthorized
		}
		return nil, 0, err
	}

	var conv *models.Conversation
	if in.ConversationID != nil && *in.ConversationID != 0 {
		conv, err = m.AuthorizeParticipant(ctx, senderID, *in.ConversationID)
		if err != nil {
			return nil, 0, err
		}
	} else {
		if in.PropertyID == nil || *in.PropertyID == 0 {
			return nil, 0, ErrInvalidPayload
		}
		snap, err := m.propertySnapshot(ctx, *in.PropertyID)
		if err != nil {
			return nil, 0, err
		}
		conv, err = m.store.UpsertConversation(ctx, senderID, snap.CommissionerID)
		if err != nil {
			return nil, 0, err
		}
		if in.PropertyName == "" {
			in.PropertyName = snap.Title
		}
		if in.PropertyImage == "" {
			in.PropertyImage = snap.Image
		}
		if in.PropertyLink == "" {
			in.PropertyLink = snap.Link
		}
	}

	phone := in.Phone
	if phone == "" {
		phone = sender.Phone
	}
	senderRef := sender.ID
	msg := &models.Message{
		ConversationID: conv.ID,
		PropertyID:     in.PropertyID,
		PropertyName:   in.PropertyName,
		PropertyImage:  in.PropertyImage,
		PropertyLink:   in.PropertyLink,
		UserID:         &senderRef,
		SenderName:     sender.DisplayName(),
		SenderEmail:    sender.Email,
		SenderPhone:    phone,
		Body:           body,
	}
	if err := m.store.CreateMessage(ctx, msg); err != nil {
		return nil, 0, err
	}

	// The insert and the counter update are not atomic, but both must land
	// before the send reports success.
	recipient := store.ForCommissioner
	if conv.CommissionerID == sender.ID {
		recipient = store.ForUser
	}
	if err := m.store.IncrementUnread(ctx, conv.ID, recipient); err != nil {
		return nil, 0, err
	}
	at := msg.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	if err := m.store.UpdateLastMessageAt(ctx, conv.ID, at); err != nil {
		return nil, 0, err
	}

	source := "http"
	if in.Source == "socket" {
		source = "socket"
	}
	metrics.MessagesSent.WithLabelValues(source).Inc()

	m.broadcast(conv.ID, msg)
	return msg, conv.ID, nil
}

// AuthorizeParticipant loads a conversation and checks that userID is one of
// its two parties. The socket join path and the history endpoint use the
// same check.
func (m *Messenger) AuthorizeParticipant(ctx context.Context, userID, conversationID uint) (*models.Conversation, error) {
	conv, err := m.store.FindConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !conv.IsParty(userID) {
		return nil, ErrForbidden
	}
	return conv, nil
}

// History returns the conversation's messages oldest-first, capped at the
// store's history limit.
func (m *Messenger) History(ctx context.Context, userID, conversationID uint) ([]models.Message, error) {
	if _, err := m.AuthorizeParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return m.store.ListMessages(ctx, conversationID, store.HistoryLimit)
}

// broadcast is best-effort: no gateway means no live clients in this
// process, and a panic inside the emit must never fail the send.
func (m *Messenger) broadcast(conversationID uint, msg *models.Message) {
	gw := m.registry.Live()
	if gw == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn().Interface("panic", r).Uint("conversation_id", conversationID).Msg("broadcast failed")
		}
	}()
	gw.Broadcast(conversationID, msg)
}

type propertySnapshot struct {
	CommissionerID uint
	Title          string
	Image          string
	Link           string
}

func (m *Messenger) propertySnapshot(ctx context.Context, propertyID uint) (*propertySnapshot, error) {
	key := cache.KeyFromStrings("property-snapshot", strconv.FormatUint(uint64(propertyID), 10))
	if v, ok := m.cache.Get(key); ok {
		if snap, ok2 := v.(*propertySnapshot); ok2 {
			return snap, nil
		}
	}
	prop, err := m.store.FindProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	snap := &propertySnapshot{
		CommissionerID: prop.CommissionerID,
		Title:          prop.Title,
		Image:          prop.FirstMediaURL(),
		Link:           prop.CanonicalLink(),
	}
	m.cache.Set(key, snap, time.Duration(config.SnapshotCacheTTLSeconds)*time.Second)
	return snap, nil
}
