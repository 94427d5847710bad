package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) error
	// GetWithUsers загружает чат вместе с участниками: конвейеру рассылки
	// нужен полный список получателей.
	GetWithUsers(ctx context.Context, chatID string) (*model.Chat, error)
	FindDirectBetween(ctx context.Context, userID1, userID2 string) (*model.Chat, error)
	ListForUser(ctx context.Context, userID string, cursor *Cursor, limit int, withUserID string) ([]model.Chat, error)
	ListDeletedForUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]model.Chat, error)
	UpdateGroupName(ctx context.Context, chatID, name string) error
	UpdateGroupImage(ctx context.Context, chatID, imageURL string) error
	SetLastMessageContent(ctx context.Context, chatID string, content *string) error
	Touch(ctx context.Context, chatID string) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	// gorm сам вставит строки chat_participants по ассоциации Users.
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *chatRepository) GetWithUsers(ctx context.Context, chatID string) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).
		Preload("Users").
		Where("is_deleted = ?", false).
		First(&chat, "id = ?", chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.ReasonChat, "chat not found")
		}
		return nil, err
	}
	return &chat, nil
}

// FindDirectBetween возвращает личный чат двух пользователей или nil.
func (r *chatRepository) FindDirectBetween(ctx context.Context, userID1, userID2 string) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants cp1 ON cp1.chat_id = chats.id AND cp1.user_id = ?", userID1).
		Joins("JOIN chat_participants cp2 ON cp2.chat_id = chats.id AND cp2.user_id = ?", userID2).
		Where("chats.chat_type = ?", model.ChatTypeDirect).
		Where("chats.is_deleted = ?", false).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID string, cursor *Cursor, limit int, withUserID string) ([]model.Chat, error) {
	q := r.db.WithContext(ctx).Model(&model.Chat{}).
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id AND cp.user_id = ?", userID).
		Where("chats.is_deleted = ?", false).
		Preload("Users")

	if withUserID != "" {
		q = q.Joins("JOIN chat_participants cpw ON cpw.chat_id = chats.id AND cpw.user_id = ?", withUserID)
	}

	if cursor != nil {
		q = q.Where("(chats.updated_at < ?) OR (chats.updated_at = ? AND chats.id < ?)",
			cursor.T, cursor.T, cursor.ID)
	}

	var chats []model.Chat
	err := q.Order("chats.updated_at DESC, chats.id DESC").
		Limit(limit).
		Find(&chats).Error
	return chats, err
}

// ListDeletedForUser — чаты, где у пользователя есть хотя бы одна запись в
// «недавно удалённых», по убыванию времени самого свежего надгробия.
// Ключ курсора — (last_deleted_at, chat_id) последней выданной строки.
func (r *chatRepository) ListDeletedForUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]model.Chat, error) {
	q := r.db.WithContext(ctx).Model(&model.Chat{}).
		Select("chats.*, dm.last_deleted_at").
		Joins("JOIN (SELECT chat_id, MAX(created_at) AS last_deleted_at FROM deleted_messages WHERE user_id = ? GROUP BY chat_id) dm ON dm.chat_id = chats.id", userID).
		Preload("Users")

	if cursor != nil {
		q = q.Where("(dm.last_deleted_at < ?) OR (dm.last_deleted_at = ? AND chats.id < ?)",
			cursor.T, cursor.T, cursor.ID)
	}

	var chats []model.Chat
	err := q.Order("dm.last_deleted_at DESC, chats.id DESC").
		Limit(limit).
		Find(&chats).Error
	return chats, err
}

func (r *chatRepository) UpdateGroupName(ctx context.Context, chatID, name string) error {
	return r.db.WithContext(ctx).Model(&model.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]any{"name_group": name, "updated_at": time.Now()}).Error
}

func (r *chatRepository) UpdateGroupImage(ctx context.Context, chatID, imageURL string) error {
	return r.db.WithContext(ctx).Model(&model.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]any{"image_group": imageURL, "updated_at": time.Now()}).Error
}

func (r *chatRepository) SetLastMessageContent(ctx context.Context, chatID string, content *string) error {
	return r.db.WithContext(ctx).Model(&model.Chat{}).
		Where("id = ?", chatID).
		Update("last_message_content", content).Error
}

func (r *chatRepository) Touch(ctx context.Context, chatID string) error {
	return r.db.WithContext(ctx).Model(&model.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", time.Now()).Error
}
