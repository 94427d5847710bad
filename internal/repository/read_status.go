package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
)

type ReadStatusRepository interface {
	Create(ctx context.Context, rs *model.ReadStatus) error
	Find(ctx context.Context, userID, chatID string) (*model.ReadStatus, error)
	// IncrementUnread прибавляет единицу каждому участнику, кроме автора.
	// Отсутствие ожидаемой строки — ошибка: статус заводится при создании чата.
	IncrementUnread(ctx context.Context, chatID string, memberIDs []string, exceptUserID string) error
	// Set заменяет маркер последнего прочитанного и счётчик целиком.
	Set(ctx context.Context, userID, chatID string, lastReadMessageID *string, countUnread int) (*model.ReadStatus, error)
	ResetForAuthor(ctx context.Context, userID, chatID string) error
}

type readStatusRepository struct {
	db *gorm.DB
}

func NewReadStatusRepository(db *gorm.DB) ReadStatusRepository {
	return &readStatusRepository{db: db}
}

func (r *readStatusRepository) Create(ctx context.Context, rs *model.ReadStatus) error {
	return r.db.WithContext(ctx).Create(rs).Error
}

func (r *readStatusRepository) Find(ctx context.Context, userID, chatID string) (*model.ReadStatus, error) {
	var rs model.ReadStatus
	err := r.db.WithContext(ctx).
		First(&rs, "user_id = ? AND chat_id = ?", userID, chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.ReasonReadStatus, "read status not found")
		}
		return nil, err
	}
	return &rs, nil
}

func (r *readStatusRepository) IncrementUnread(ctx context.Context, chatID string, memberIDs []string, exceptUserID string) error {
	recipients := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != exceptUserID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&model.ReadStatus{}).
		Where("chat_id = ? AND user_id IN ?", chatID, recipients).
		Updates(map[string]any{
			"count_unread_msg": gorm.Expr("count_unread_msg + 1"),
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(recipients)) {
		return apperr.NotFound(apperr.ReasonReadStatus, "read status missing for a chat member")
	}
	return nil
}

func (r *readStatusRepository) Set(ctx context.Context, userID, chatID string, lastReadMessageID *string, countUnread int) (*model.ReadStatus, error) {
	rs, err := r.Find(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if countUnread < 0 {
		countUnread = 0
	}
	rs.LastReadMessageID = lastReadMessageID
	rs.CountUnreadMsg = countUnread
	rs.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(rs).Error; err != nil {
		return nil, err
	}
	return rs, nil
}

// ResetForAuthor обнуляет счётчик автора после отправки им сообщения.
func (r *readStatusRepository) ResetForAuthor(ctx context.Context, userID, chatID string) error {
	return r.db.WithContext(ctx).Model(&model.ReadStatus{}).
		Where("user_id = ? AND chat_id = ?", userID, chatID).
		Updates(map[string]any{"count_unread_msg": 0, "updated_at": time.Now()}).Error
}
