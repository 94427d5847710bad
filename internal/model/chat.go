package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatType string

const (
	ChatTypeDirect ChatType = "direct"
	ChatTypeGroup  ChatType = "group"
)

// Chat — беседа. Для direct состав участников фиксируется при создании,
// для group он может меняться. LastMessageContent хранит префикс (до 100
// символов) последнего живого текстового сообщения.
type Chat struct {
	ID                 string    `gorm:"type:char(36);primaryKey" json:"id"`
	ChatType           ChatType  `gorm:"type:varchar(16);not null;index" json:"chat_type"`
	NameGroup          *string   `gorm:"size:128" json:"name_group,omitempty"`
	ImageGroup         *string   `gorm:"size:512" json:"image_group,omitempty"`
	LastMessageContent *string   `gorm:"size:100" json:"last_message_content,omitempty"`
	IsDeleted          bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `gorm:"index" json:"updated_at"`

	Users []User `gorm:"many2many:chat_participants;" json:"users,omitempty"`

	// Заполняется только для запрашивающего пользователя, в базе не хранится.
	DraftMessage *string `gorm:"-" json:"draft_message,omitempty"`
	CountUnread  *int    `gorm:"-" json:"count_unread_msg,omitempty"`

	// Время самого свежего надгробия запрашивающего в этом чате; читается
	// из подзапроса списка «недавно удалённых», колонки в таблице нет.
	LastDeletedAt *time.Time `gorm:"->;-:migration" json:"last_deleted_at,omitempty"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// HasUser проверяет членство по уже загруженному списку участников.
func (c *Chat) HasUser(userID string) bool {
	for i := range c.Users {
		if c.Users[i].ID == userID {
			return true
		}
	}
	return false
}

// SanitizeUsers стирает хэши паролей у загруженных участников перед отдачей
// наружу.
func (c *Chat) SanitizeUsers() {
	for i := range c.Users {
		c.Users[i].SanitizePassword()
	}
}

// OtherUser возвращает второго участника личного чата.
func (c *Chat) OtherUser(userID string) *User {
	if c.ChatType != ChatTypeDirect {
		return nil
	}
	for i := range c.Users {
		if c.Users[i].ID != userID {
			return &c.Users[i]
		}
	}
	return nil
}
