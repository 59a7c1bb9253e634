package repository

import (
	"context"
	"fmt"
	"time"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	FindAll(ctx context.Context, q PaginationQuery, status *models.ConversationStatus) (*Page[models.WhatsappConversation], error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.WhatsappConversation, error)
	FindByIDWithMessages(ctx context.Context, id uuid.UUID) (*models.WhatsappConversation, error)
	FindActiveByContactID(ctx context.Context, contactID uuid.UUID) (*models.WhatsappConversation, error)
	FindActiveByPhone(ctx context.Context, phone string) (*models.WhatsappConversation, error)
	Create(ctx context.Context, conversation *models.WhatsappConversation) error
	// Expire moves an ACTIVE conversation to EXPIRED; terminal rows are left untouched.
	Expire(ctx context.Context, id uuid.UUID) error
	// Complete moves an ACTIVE conversation to COMPLETED and stores its brief.
	Complete(ctx context.Context, id uuid.UUID, summary string, sentAt time.Time) error
	// ExpireIdle expires every ACTIVE conversation last updated before the cutoff.
	ExpireIdle(ctx context.Context, cutoff time.Time) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

var conversationSortColumns = map[string]string{
	"status":      "status",
	"phoneNumber": "phone_number",
}

func (r *conversationRepository) FindAll(ctx context.Context, q PaginationQuery, status *models.ConversationStatus) (*Page[models.WhatsappConversation], error) {
	scoped := r.db
	if status != nil {
		scoped = scoped.Where("status = ?", *status)
	}
	return paginate[models.WhatsappConversation](ctx, scoped, q, conversationSortColumns, "Contact")
}

func (r *conversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.WhatsappConversation, error) {
	var conversation models.WhatsappConversation
	if err := r.db.WithContext(ctx).Preload("Contact").First(&conversation, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &conversation, nil
}

func (r *conversationRepository) FindByIDWithMessages(ctx context.Context, id uuid.UUID) (*models.WhatsappConversation, error) {
	var conversation models.WhatsappConversation
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&conversation, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &conversation, nil
}

func (r *conversationRepository) FindActiveByContactID(ctx context.Context, contactID uuid.UUID) (*models.WhatsappConversation, error) {
	return r.findActive(ctx, "contact_id = ?", contactID)
}

// FindActiveByPhone returns the most recently updated ACTIVE conversation for the phone.
func (r *conversationRepository) FindActiveByPhone(ctx context.Context, phone string) (*models.WhatsappConversation, error) {
	return r.findActive(ctx, "phone_number = ?", phone)
}

func (r *conversationRepository) findActive(ctx context.Context, cond string, arg interface{}) (*models.WhatsappConversation, error) {
	var conversation models.WhatsappConversation
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Where(cond, arg).
		Where("status = ?", models.ConversationActive).
		Order("updated_at DESC").
		First(&conversation).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &conversation, nil
}

func (r *conversationRepository) Create(ctx context.Context, conversation *models.WhatsappConversation) error {
	return translateError(r.db.WithContext(ctx).Omit("Contact", "Messages").Create(conversation).Error)
}

func (r *conversationRepository) Expire(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, map[string]interface{}{
		"status":     models.ConversationExpired,
		"updated_at": time.Now(),
	})
}

func (r *conversationRepository) Complete(ctx context.Context, id uuid.UUID, summary string, sentAt time.Time) error {
	return r.transition(ctx, id, map[string]interface{}{
		"status":          models.ConversationCompleted,
		"summary":         summary,
		"summary_sent_at": sentAt,
		"updated_at":      time.Now(),
	})
}

func (r *conversationRepository) transition(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.WhatsappConversation{}).
		Where("id = ? AND status = ?", id, models.ConversationActive).
		Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("active conversation %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *conversationRepository) ExpireIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WhatsappConversation{}).
		Where("status = ? AND updated_at < ?", models.ConversationActive, cutoff).
		Updates(map[string]interface{}{
			"status":     models.ConversationExpired,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, translateError(result.Error)
}
