package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	// FindByID возвращает сообщение, включая мягко удалённые.
	FindByID(ctx context.Context, chatID, messageID string) (*model.Message, error)
	// FindLive — только живое сообщение (для родителя реплая и редактирования).
	FindLive(ctx context.Context, chatID, messageID string) (*model.Message, error)
	Update(ctx context.Context, msg *model.Message) error
	SetDeleted(ctx context.Context, messageID string, deleted bool) error
	HardDelete(ctx context.Context, messageID string) error
	List(ctx context.Context, chatID string, cursor *Cursor, limit int) ([]model.Message, error)
	Range(ctx context.Context, chatID, fromID, toID string) ([]model.Message, error)
	// NewestLiveText — самое свежее живое сообщение с непустым текстом;
	// nil, когда такого нет. Питает пересчёт chat.last_message_content.
	NewestLiveText(ctx context.Context, chatID string) (*model.Message, error)

	CreateTombstone(ctx context.Context, t *model.DeletedMessage) error
	FindTombstone(ctx context.Context, messageID string) (*model.DeletedMessage, error)
	DeleteTombstone(ctx context.Context, messageID string) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) FindByID(ctx context.Context, chatID, messageID string) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		First(&msg, "id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.ReasonMessage, "message not found")
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) FindLive(ctx context.Context, chatID, messageID string) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND is_deleted = ?", chatID, false).
		First(&msg, "id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.ReasonMessage, "message not found")
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Update(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Save(msg).Error
}

func (r *messageRepository) SetDeleted(ctx context.Context, messageID string, deleted bool) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", messageID).
		Update("is_deleted", deleted).Error
}

func (r *messageRepository) HardDelete(ctx context.Context, messageID string) error {
	if err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Delete(&model.Reaction{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&model.Message{}, "id = ?", messageID).Error
}

func (r *messageRepository) List(ctx context.Context, chatID string, cursor *Cursor, limit int) ([]model.Message, error) {
	q := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("chat_id = ? AND is_deleted = ?", chatID, false).
		Preload("Reactions")

	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.T, cursor.T, cursor.ID)
	}

	var msgs []model.Message
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// Range выдаёт живые сообщения между двумя известными клиенту точками,
// в хронологическом порядке.
func (r *messageRepository) Range(ctx context.Context, chatID, fromID, toID string) ([]model.Message, error) {
	from, err := r.FindByID(ctx, chatID, fromID)
	if err != nil {
		return nil, err
	}
	to, err := r.FindByID(ctx, chatID, toID)
	if err != nil {
		return nil, err
	}

	var msgs []model.Message
	err = r.db.WithContext(ctx).Model(&model.Message{}).
		Where("chat_id = ? AND is_deleted = ?", chatID, false).
		Where("created_at >= ? AND created_at <= ?", from.CreatedAt, to.CreatedAt).
		Preload("Reactions").
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepository) NewestLiveText(ctx context.Context, chatID string) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND is_deleted = ? AND message_type = ? AND content IS NOT NULL",
			chatID, false, model.MessageTypeText).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) CreateTombstone(ctx context.Context, t *model.DeletedMessage) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *messageRepository) FindTombstone(ctx context.Context, messageID string) (*model.DeletedMessage, error) {
	var t model.DeletedMessage
	err := r.db.WithContext(ctx).
		First(&t, "original_message_id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *messageRepository) DeleteTombstone(ctx context.Context, messageID string) error {
	return r.db.WithContext(ctx).
		Where("original_message_id = ?", messageID).
		Delete(&model.DeletedMessage{}).Error
}
