package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction — не более одной на пару (user, message); повторная реакция
// того же пользователя заменяет предыдущую.
type Reaction struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	ReactionType string    `gorm:"size:32;not null" json:"reaction_type"`
	UserID       string    `gorm:"type:char(36);not null;uniqueIndex:uidx_reaction_user_msg,priority:1" json:"user_id"`
	MessageID    string    `gorm:"type:char(36);not null;uniqueIndex:uidx_reaction_user_msg,priority:2" json:"message_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
