package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/repository"
)

// Черновики — личное состояние пользователя: событий в шину не публикуют
// и другим участникам не видны.
type draftService struct {
	db *gorm.DB
}

func NewDraftService(db *gorm.DB) DraftService {
	return &draftService{db: db}
}

func (s *draftService) Put(ctx context.Context, userID, chatID, content string) (*model.DraftMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Unprocessable("draft content is required")
	}
	if _, err := resolveChatMember(ctx, s.db, chatID, userID); err != nil {
		return nil, err
	}

	draft := &model.DraftMessage{ChatID: chatID, UserID: userID, Content: content}
	if err := repository.NewDraftRepository(s.db).Upsert(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *draftService) Update(ctx context.Context, userID, chatID, content string) (*model.DraftMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Unprocessable("draft content is required")
	}
	if _, err := resolveChatMember(ctx, s.db, chatID, userID); err != nil {
		return nil, err
	}

	drafts := repository.NewDraftRepository(s.db)
	if err := drafts.UpdateContent(ctx, chatID, userID, content); err != nil {
		return nil, err
	}
	return drafts.Find(ctx, chatID, userID)
}

func (s *draftService) Delete(ctx context.Context, userID, chatID string) error {
	if _, err := resolveChatMember(ctx, s.db, chatID, userID); err != nil {
		return err
	}
	return repository.NewDraftRepository(s.db).Delete(ctx, chatID, userID)
}
