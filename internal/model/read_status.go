package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadStatus существует ровно один на пару (user, chat) с момента создания
// чата и до выхода пользователя из него. Счётчик непрочитанных никогда не
// уходит в минус.
type ReadStatus struct {
	ID                string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID            string    `gorm:"type:char(36);not null;uniqueIndex:uidx_read_status_user_chat,priority:1" json:"user_id"`
	ChatID            string    `gorm:"type:char(36);not null;uniqueIndex:uidx_read_status_user_chat,priority:2" json:"chat_id"`
	LastReadMessageID *string   `gorm:"type:char(36)" json:"last_read_message_id,omitempty"`
	CountUnreadMsg    int       `gorm:"not null;default:0" json:"count_unread_msg"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (rs *ReadStatus) BeforeCreate(tx *gorm.DB) error {
	if rs.ID == "" {
		rs.ID = uuid.NewString()
	}
	return nil
}
