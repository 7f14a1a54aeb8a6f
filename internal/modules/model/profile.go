package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile is a persona of a deceased loved one: who they were, how they
// spoke, and the shared memories the chat persona can draw on.
type Profile struct {
	ID           uuid.UUID                     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID                     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string                        `gorm:"type:text;not null" json:"name"`
	Relationship string                        `gorm:"type:text;not null" json:"relationship"`
	Traits       string                        `gorm:"type:text;not null" json:"traits"`
	Sayings      string                        `gorm:"type:text;not null" json:"sayings"`
	Memories     datatypes.JSONSlice[string]   `gorm:"type:jsonb;not null" swaggertype:"array,string" json:"memories"`
	AvatarURL    string                        `gorm:"type:text" json:"avatar_url"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Profile <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Profile) TableName() string { return "profiles" }
