package model

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string    `gorm:"type:text;not null" json:"name"`
	Email  string    `gorm:"type:text" json:"email,omitempty"`
	Phone  string    `gorm:"type:text" json:"phone,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Contact <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Contact) TableName() string { return "contacts" }

// ContactSnapshot is the denormalized contact shape frozen into a
// scheduled notification at schedule time.
type ContactSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}
