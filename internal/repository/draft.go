package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
)

type DraftRepository interface {
	// Upsert создаёт или заменяет черновик пары (chat, user).
	Upsert(ctx context.Context, draft *model.DraftMessage) error
	Find(ctx context.Context, chatID, userID string) (*model.DraftMessage, error)
	UpdateContent(ctx context.Context, chatID, userID, content string) error
	Delete(ctx context.Context, chatID, userID string) error
}

type draftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Upsert(ctx context.Context, draft *model.DraftMessage) error {
	existing, err := r.Find(ctx, draft.ChatID, draft.UserID)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	if existing != nil {
		existing.Content = draft.Content
		existing.UpdatedAt = time.Now()
		*draft = *existing
		return r.db.WithContext(ctx).Save(existing).Error
	}
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *draftRepository) Find(ctx context.Context, chatID, userID string) (*model.DraftMessage, error) {
	var draft model.DraftMessage
	err := r.db.WithContext(ctx).
		First(&draft, "chat_id = ? AND user_id = ?", chatID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.ReasonDraft, "draft not found")
		}
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepository) UpdateContent(ctx context.Context, chatID, userID, content string) error {
	res := r.db.WithContext(ctx).Model(&model.DraftMessage{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Updates(map[string]any{"content": content, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(apperr.ReasonDraft, "draft not found")
	}
	return nil
}

func (r *draftRepository) Delete(ctx context.Context, chatID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&model.DraftMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(apperr.ReasonDraft, "draft not found")
	}
	return nil
}
