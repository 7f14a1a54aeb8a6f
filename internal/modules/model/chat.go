package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one exchange with a persona: the user's message and
// the generated reply, stored together.
type ChatMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	UserMessage string    `gorm:"type:text;not null" json:"user_message"`
	AIResponse  string    `gorm:"type:text;not null" json:"ai_response"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// ChatMessage <-> Profile
	Profile *Profile `gorm:"foreignKey:ProfileID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (ChatMessage) TableName() string { return "chat_history" }
