package model

import "gorm.io/gorm"

// AutoMigrate прогоняет миграции всех моделей ядра.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Chat{},
		&Message{},
		&DeletedMessage{},
		&DraftMessage{},
		&Reaction{},
		&ReadStatus{},
		&BlackList{},
	)
}
