package models

import "github.com/google/uuid"

type User struct {
	Base
	Name     string    `json:"name" gorm:"size:100;not null"`
	Email    string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password string    `json:"-" gorm:"not null"`
	IsActive bool      `json:"isActive" gorm:"not null"`
	RoleID   uuid.UUID `json:"roleId" gorm:"type:uuid;not null;index"`
	Role     *Role     `json:"role,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
}
