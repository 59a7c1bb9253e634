package models

import "github.com/google/uuid"

type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

type Ticket struct {
	Base
	Title       string         `json:"title" gorm:"size:200;not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Priority    TicketPriority `json:"priority" gorm:"type:varchar(20);not null;default:'MEDIUM'"`
	Status      TicketStatus   `json:"status" gorm:"type:varchar(20);not null;default:'OPEN'"`
	Links       []string       `json:"links" gorm:"serializer:json;type:jsonb"`
	UserID      uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index"`
	User        *User          `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
