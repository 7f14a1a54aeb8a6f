package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthSubject string    `gorm:"type:text;not null;uniqueIndex" json:"-"`
	Email       string    `gorm:"type:text;not null" json:"email"`
	Name        string    `gorm:"type:text" json:"name"`
	AvatarURL   string    `gorm:"type:text" json:"avatar_url"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// User <-> Profile
	Profiles []Profile `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// User <-> Contact
	Contacts []Contact `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// User <-> Capsule
	Capsules []Capsule `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// User <-> Memory
	Memories []Memory `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }
