package repository

import (
	"context"

	"tradinganalysis/src/database"
	"tradinganalysis/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ChatMessageRepository handles persistence for chat conversations.
type ChatMessageRepository struct {
	db *gorm.DB
}

// NewChatMessageRepository creates a new repository using the main database.
func NewChatMessageRepository() *ChatMessageRepository {
	logger.WithField("component", "ChatMessageRepository").
		Info("Creating new ChatMessageRepository with MainDB")

	return &ChatMessageRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or custom sessions/transactions.
func (r *ChatMessageRepository) WithDB(db *gorm.DB) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

// Create inserts a new chat message.
func (r *ChatMessageRepository) Create(ctx context.Context, message *model.ChatMessage) error {
	err := r.db.WithContext(ctx).Create(message).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "ChatMessageRepository",
			"op":       "Create",
			"symbolID": message.SymbolID,
			"owner":    message.Owner,
		}).WithError(err).Error("Failed to create chat message")

		return err
	}

	return nil
}

// FindRecentBySymbol returns the last limit messages of a symbol's
// conversation in chronological (oldest first) order.
func (r *ChatMessageRepository) FindRecentBySymbol(ctx context.Context, symbolID uint, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}

	var messages []model.ChatMessage

	err := r.db.WithContext(ctx).
		Where("symbol_id = ?", symbolID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "ChatMessageRepository",
			"op":       "FindRecentBySymbol",
			"symbolID": symbolID,
			"limit":    limit,
		}).WithError(err).Error("Failed to fetch chat history")

		return nil, err
	}

	// reverse to ascending chronological order for prompt building
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
