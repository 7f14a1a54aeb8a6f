package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationEmail NotificationType = "email"
	NotificationText  NotificationType = "text"
	NotificationBoth  NotificationType = "both"
)

// CapsulePayload is the renderable snapshot of a capsule frozen at
// schedule time. What was promised to be sent is what gets sent, even
// if the capsule is edited afterwards.
type CapsulePayload struct {
	CapsuleID      uuid.UUID `json:"capsule_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"image_url,omitempty"`
	VideoURL       string    `json:"video_url,omitempty"`
	DetailsPageURL string    `json:"details_page_url"`
}

// ScheduledNotification is a persisted notification intent. Rows are
// never deleted; `sent` flips false -> true exactly once and is never
// reverted.
type ScheduledNotification struct {
	ID               uuid.UUID                                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CapsuleID        uuid.UUID                                 `gorm:"type:uuid;not null;index" json:"capsule_id"`
	Contacts         datatypes.JSONType[[]ContactSnapshot]     `gorm:"type:jsonb;not null" swaggertype:"array,object" json:"contacts"`
	NotificationType NotificationType                          `gorm:"type:text;not null" json:"notification_type"`
	Payload          datatypes.JSONType[CapsulePayload]        `gorm:"type:jsonb;not null" swaggertype:"object" json:"payload"`
	Sent             bool                                      `gorm:"not null;default:false;index" json:"sent"`
	SentAt           *time.Time                                `json:"sent_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// ScheduledNotification <-> Capsule. No delete cascade: rows are an
	// audit trail and only reference the capsule by id.
	Capsule *Capsule `gorm:"foreignKey:CapsuleID;references:ID;constraint:OnDelete:NO ACTION;" json:"-"`
}

func (ScheduledNotification) TableName() string { return "scheduled_notifications" }
