package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// MediaAsset is a catalogued reference to an uploaded file. The public
// URL is the natural key: the same URL never gets a second row, no
// matter how many entities link to it.
type MediaAsset struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	ProfileID *uuid.UUID        `gorm:"type:uuid;index" json:"profile_id,omitempty"`
	URL       string            `gorm:"type:text;not null;uniqueIndex" json:"url"`
	Name      string            `gorm:"type:text" json:"name"`
	MediaType MediaType         `gorm:"type:text;not null" json:"media_type"`
	Meta      datatypes.JSONMap `gorm:"type:jsonb" swaggertype:"object" json:"meta,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// MediaAsset <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (MediaAsset) TableName() string { return "media_bank" }

// CapsuleMedia joins capsules to media_bank rows. Composite primary key
// keeps the pair unique even under racing reconciles.
type CapsuleMedia struct {
	CapsuleID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"capsule_id"`
	MediaID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"media_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// CapsuleMedia <-> Capsule
	Capsule Capsule `gorm:"foreignKey:CapsuleID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// CapsuleMedia <-> MediaAsset
	Media MediaAsset `gorm:"foreignKey:MediaID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (CapsuleMedia) TableName() string { return "capsule_media" }

// MemoryMedia joins memories to media_bank rows.
type MemoryMedia struct {
	MemoryID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"memory_id"`
	MediaID  uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"media_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// MemoryMedia <-> Memory
	Memory Memory `gorm:"foreignKey:MemoryID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// MemoryMedia <-> MediaAsset
	Media MediaAsset `gorm:"foreignKey:MediaID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (MemoryMedia) TableName() string { return "memory_media" }
