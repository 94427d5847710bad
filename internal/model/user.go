package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	Username    string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"size:255;not null" json:"-"`
	DisplayName string     `gorm:"size:64" json:"display_name"`
	AvatarURL   *string    `gorm:"size:512" json:"avatar_url,omitempty"`
	LastOnline  *time.Time `json:"last_online,omitempty"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	IsDeleted   bool       `gorm:"not null;default:false" json:"is_deleted"`
	IsBanned    bool       `gorm:"not null;default:false" json:"is_banned"`
	BanReason   *string    `gorm:"size:512" json:"ban_reason,omitempty"`
	IsWarning   bool       `gorm:"not null;default:false" json:"is_warning"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Chats []Chat `gorm:"many2many:chat_participants;" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) SanitizePassword() {
	u.Password = ""
}

func (u *User) EnsureDisplayName() {
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
}
