package repository

import (
	"context"

	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
)

type ReactionRepository interface {
	// Replace удаляет прежнюю реакцию пользователя на сообщение и вставляет
	// новую: не больше одной на пару (user, message).
	Replace(ctx context.Context, reaction *model.Reaction) error
	Delete(ctx context.Context, userID, messageID string) (*model.Reaction, error)
	ListForMessage(ctx context.Context, messageID string) ([]model.Reaction, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Replace(ctx context.Context, reaction *model.Reaction) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", reaction.UserID, reaction.MessageID).
		Delete(&model.Reaction{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *reactionRepository) Delete(ctx context.Context, userID, messageID string) (*model.Reaction, error) {
	var reaction model.Reaction
	err := r.db.WithContext(ctx).
		First(&reaction, "user_id = ? AND message_id = ?", userID, messageID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound(apperr.ReasonReaction, "reaction not found")
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&reaction).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *reactionRepository) ListForMessage(ctx context.Context, messageID string) ([]model.Reaction, error) {
	var reactions []model.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	return reactions, err
}
