package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleOwner  = "OWNER"
	RoleSitter = "SITTER"
	RoleAdmin  = "ADMIN"
)

type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name   string `gorm:"size:100;not null" json:"name"`
	Email  string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Role   string `gorm:"size:20;default:'OWNER'" json:"role"`
	Active bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
