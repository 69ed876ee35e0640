package store

import (
	"context"
	"errors"
	"time"

	"github.com/PattyWambere/Your-Commissioner/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("record not found")

// HistoryLimit caps a single history fetch.
const HistoryLimit = 500

// Party names the side of a conversation whose unread counter changes.
type Party string

const (
	ForUser         Party = "user"
	ForCommissioner Party = "commissioner"
)

// Store is the persistence layer for conversations, messages and the
// read-only property/user lookups the relay needs.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (s *Store) FindConversationByParticipants(ctx context.Context, userID, commissionerID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND commissioner_id = ?", userID, commissionerID).
		First(&conv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

// UpsertConversation returns the conversation for the pair, creating it if
// absent. Conflicting concurrent creates collapse onto the unique
// (user_id, commissioner_id) index, so every caller sees the same row.
func (s *Store) UpsertConversation(ctx context.Context, userID, commissionerID uint) (*models.Conversation, error) {
	conv := models.Conversation{UserID: userID, CommissionerID: commissionerID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "commissioner_id"}},
			DoNothing: true,
		}).
		Create(&conv).Error
	if err != nil {
		return nil, err
	}
	// On conflict the insert is skipped and conv.ID stays zero; fetch the
	// winner either way so the returned row carries its real counters.
	return s.FindConversationByParticipants(ctx, userID, commissionerID)
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	return s.db.WithContext(ctx).Create(m).Error
}

// IncrementUnread bumps the recipient's counter with a single SQL update so
// concurrent senders never lose increments.
func (s *Store) IncrementUnread(ctx context.Context, conversationID uint, party Party) error {
	column := "unread_for_user"
	if party == ForCommissioner {
		column = "unread_for_commissioner"
	}
	return s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}

func (s *Store) UpdateLastMessageAt(ctx context.Context, conversationID uint, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		UpdateColumn("last_message_at", at).Error
}

// ListMessages returns a conversation's history oldest-first. limit<=0 or
// limit>HistoryLimit falls back to HistoryLimit.
func (s *Store) ListMessages(ctx context.Context, conversationID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (s *Store) LatestMessage(ctx context.Context, conversationID uint) (*models.Message, error) {
	var msg models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (s *Store) ListConversationsForUser(ctx context.Context, userID uint, take int) ([]models.Conversation, error) {
	return s.listConversations(ctx, "user_id", userID, take)
}

func (s *Store) ListConversationsForCommissioner(ctx context.Context, commissionerID uint, take int) ([]models.Conversation, error) {
	return s.listConversations(ctx, "commissioner_id", commissionerID, take)
}

func (s *Store) listConversations(ctx context.Context, column string, id uint, take int) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where(column+" = ?", id).
		Order("last_message_at DESC NULLS LAST").
		Limit(take).
		Find(&convs).Error
	return convs, err
}

func (s *Store) FindProperty(ctx context.Context, id uint) (*models.Property, error) {
	var prop models.Property
	err := s.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&prop, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &prop, nil
}

func (s *Store) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
