package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/bus"
	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/repository"
)

type reactionService struct {
	db  *gorm.DB
	fan *fanOut
	log *zap.Logger
}

func NewReactionService(db *gorm.DB, publisher *bus.Publisher, log *zap.Logger) ReactionService {
	return &reactionService{db: db, fan: newFanOut(publisher, log), log: log}
}

// Set ставит реакцию, вытесняя прежнюю реакцию того же пользователя на это
// сообщение.
func (s *reactionService) Set(ctx context.Context, userID, chatID, messageID, reactionType string) (*model.Reaction, error) {
	if strings.TrimSpace(reactionType) == "" {
		return nil, apperr.Unprocessable("reaction type is required")
	}

	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := repository.NewMessageRepository(s.db).FindLive(ctx, chatID, messageID); err != nil {
		return nil, err
	}

	reaction := &model.Reaction{
		ReactionType: reactionType,
		UserID:       userID,
		MessageID:    messageID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewReactionRepository(tx).Replace(ctx, reaction)
	})
	if err != nil {
		return nil, err
	}

	s.fan.toAll(ctx, chat, bus.EventNewReaction, map[string]any{
		"chat_id":  chatID,
		"reaction": reaction,
	})
	return reaction, nil
}

func (s *reactionService) Remove(ctx context.Context, userID, chatID, messageID string) error {
	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return err
	}
	if _, err := repository.NewMessageRepository(s.db).FindLive(ctx, chatID, messageID); err != nil {
		return err
	}

	if _, err := repository.NewReactionRepository(s.db).Delete(ctx, userID, messageID); err != nil {
		return err
	}

	s.fan.toAll(ctx, chat, bus.EventDeleteReaction, map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"user_id":    userID,
	})
	return nil
}
