package model

import (
	"time"

	"github.com/google/uuid"
)

type Capsule struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProfileID    uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	ReleaseDate  time.Time `gorm:"not null;index" json:"release_date"`
	Timezone     string    `gorm:"type:text;not null" json:"timezone"`
	PrivacyLevel string    `gorm:"type:text;not null" json:"privacy_level"`
	Address      string    `gorm:"type:text" json:"address,omitempty"`
	// Location is a WKT point, e.g. "POINT(-122.4194 37.7749)".
	Location string `gorm:"type:text" json:"location,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Capsule <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Capsule <-> Profile
	Profile *Profile `gorm:"foreignKey:ProfileID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Capsule <-> MediaAsset
	Media []MediaAsset `gorm:"many2many:capsule_media;joinForeignKey:CapsuleID;joinReferences:MediaID" json:"media,omitempty"`
}

func (Capsule) TableName() string { return "capsules" }

// ReleaseDateLocal renders the stored UTC release date in the capsule's
// own timezone. Bad zone names fall back to UTC.
func (c *Capsule) ReleaseDateLocal() time.Time {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return c.ReleaseDate.In(loc)
}
