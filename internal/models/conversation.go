package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "ACTIVE"
	ConversationCompleted ConversationStatus = "COMPLETED"
	ConversationExpired   ConversationStatus = "EXPIRED"
)

func (s ConversationStatus) Terminal() bool {
	return s == ConversationCompleted || s == ConversationExpired
}

type MessageSender string

const (
	SenderBot     MessageSender = "BOT"
	SenderContact MessageSender = "CONTACT"
)

type WhatsappConversation struct {
	Base
	ContactID     uuid.UUID          `json:"contactId" gorm:"type:uuid;not null;index"`
	Contact       *Contact           `json:"contact,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	PhoneNumber   string             `json:"phoneNumber" gorm:"size:30;not null;index"`
	Status        ConversationStatus `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Summary       *string            `json:"summary,omitempty" gorm:"type:text"`
	SummarySentAt *time.Time         `json:"summarySentAt,omitempty"`
	Messages      []WhatsappMessage  `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
}

type WhatsappMessage struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID     `json:"conversationId" gorm:"type:uuid;not null;index"`
	Sender         MessageSender `json:"sender" gorm:"type:varchar(10);not null"`
	Content        string        `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time     `json:"createdAt" gorm:"index"`
}

func (m *WhatsappMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
