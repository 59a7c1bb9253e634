package repository

import (
	"context"
	"time"

	"neuron_backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	// Append stores the message and refreshes the conversation's updated_at.
	Append(ctx context.Context, message *models.WhatsappMessage) error
	FindByConversationID(ctx context.Context, conversationID uuid.UUID) ([]models.WhatsappMessage, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(ctx context.Context, message *models.WhatsappMessage) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.WhatsappConversation{}).
			Where("id = ?", message.ConversationID).
			UpdateColumn("updated_at", time.Now()).Error
	}))
}

func (r *messageRepository) FindByConversationID(ctx context.Context, conversationID uuid.UUID) ([]models.WhatsappMessage, error) {
	messages := []models.WhatsappMessage{}
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, translateError(err)
}
