package model

import (
	"time"

	"github.com/google/uuid"
)

type Memory struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ProfileID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"profile_id"`
	Title       string     `gorm:"type:text" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Tags        string     `gorm:"type:text" json:"tags,omitempty"`
	ActualDate  *time.Time `gorm:"type:date" json:"actual_date,omitempty"`
	Address     string     `gorm:"type:text" json:"address,omitempty"`
	// Location is a WKT point, e.g. "POINT(-122.4194 37.7749)".
	Location string `gorm:"type:text" json:"location,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Memory <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Memory <-> Profile
	Profile *Profile `gorm:"foreignKey:ProfileID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Memory <-> MediaAsset
	Media []MediaAsset `gorm:"many2many:memory_media;joinForeignKey:MemoryID;joinReferences:MediaID" json:"media,omitempty"`
}

func (Memory) TableName() string { return "memories" }
