package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlackList — запись «owner заблокировал blocked», пара уникальна.
// Проверка при действиях в личных чатах симметричная: смотрим обе стороны.
type BlackList struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID   string    `gorm:"type:char(36);not null;uniqueIndex:uidx_blacklist_pair,priority:1" json:"owner_id"`
	BlockedID string    `gorm:"type:char(36);not null;uniqueIndex:uidx_blacklist_pair,priority:2" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *BlackList) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
