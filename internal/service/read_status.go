package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lastochka/messenger/internal/bus"
	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/repository"
)

type readStatusService struct {
	db  *gorm.DB
	fan *fanOut
	log *zap.Logger
}

func NewReadStatusService(db *gorm.DB, publisher *bus.Publisher, log *zap.Logger) ReadStatusService {
	return &readStatusService{db: db, fan: newFanOut(publisher, log), log: log}
}

// Update заменяет маркер прочтения и счётчик целиком; отрицательный счётчик
// прижимается к нулю ещё в репозитории.
func (s *readStatusService) Update(ctx context.Context, userID, chatID string, lastReadMessageID *string, countUnread int) (*model.ReadStatus, error) {
	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return nil, err
	}

	if lastReadMessageID != nil {
		if _, err := repository.NewMessageRepository(s.db).FindByID(ctx, chatID, *lastReadMessageID); err != nil {
			return nil, err
		}
	}

	rs, err := repository.NewReadStatusRepository(s.db).Set(ctx, userID, chatID, lastReadMessageID, countUnread)
	if err != nil {
		return nil, err
	}

	s.fan.toAll(ctx, chat, bus.EventUpdateReadStatus, rs)
	return rs, nil
}
