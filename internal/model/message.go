package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeFile MessageType = "file"
)

// Максимальная длина среза контента, попадающего в chat.last_message_content.
const LastMessagePreviewLen = 100

type Message struct {
	ID                 string      `gorm:"type:char(36);primaryKey" json:"id"`
	MessageType        MessageType `gorm:"type:varchar(16);not null" json:"message_type"`
	Content            *string     `gorm:"type:text" json:"content,omitempty"`
	FileName           *string     `gorm:"size:255" json:"file_name,omitempty"`
	FilePath           *string     `gorm:"size:512" json:"file_path,omitempty"`
	UserID             string      `gorm:"type:char(36);not null;index" json:"user_id"`
	ChatID             string      `gorm:"type:char(36);not null;index:idx_messages_chat_created,priority:1" json:"chat_id"`
	ParentMessageID    *string     `gorm:"type:char(36);index" json:"parent_message_id,omitempty"`
	ForwardedMessageID *string     `gorm:"type:char(36)" json:"forwarded_message_id,omitempty"`
	IsDeleted          bool        `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt          time.Time   `gorm:"index:idx_messages_chat_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`

	Reactions []Reaction `gorm:"foreignKey:MessageID" json:"reactions,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Preview возвращает срез контента для chat.last_message_content.
// Пустая строка означает, что сообщению нечего отдавать в превью.
func (m *Message) Preview() string {
	if m.MessageType != MessageTypeText || m.Content == nil {
		return ""
	}
	runes := []rune(*m.Content)
	if len(runes) > LastMessagePreviewLen {
		runes = runes[:LastMessagePreviewLen]
	}
	return string(runes)
}

// DeletedMessage — личная «корзина» пользователя: запись создаётся при
// мягком удалении и уничтожается при восстановлении или жёстком удалении.
type DeletedMessage struct {
	ID                string    `gorm:"type:char(36);primaryKey" json:"id"`
	OriginalMessageID string    `gorm:"type:char(36);uniqueIndex;not null" json:"original_message_id"`
	UserID            string    `gorm:"type:char(36);not null;index" json:"user_id"`
	ChatID            string    `gorm:"type:char(36);not null;index" json:"chat_id"`
	Content           *string   `gorm:"type:text" json:"content,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func (d *DeletedMessage) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// DraftMessage — неотправленный черновик, один на пару (chat, user).
// Никогда не виден другим участникам и не попадает в шину событий.
type DraftMessage struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	ChatID    string    `gorm:"type:char(36);not null;uniqueIndex:uidx_draft_chat_user,priority:1" json:"chat_id"`
	UserID    string    `gorm:"type:char(36);not null;uniqueIndex:uidx_draft_chat_user,priority:2" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *DraftMessage) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
