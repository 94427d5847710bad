package service

import (
	"context"

	"go.uber.org/zap"

	"lastochka/messenger/internal/bus"
	"lastochka/messenger/internal/model"
)

// fanOut публикует событие по разу в канал каждого получателя. Вызывается
// только после коммита транзакции; сбой публикации логируется и глотается —
// источник истины в БД, клиент дочитает следующей страницей.
type fanOut struct {
	publisher *bus.Publisher
	log       *zap.Logger
}

func newFanOut(publisher *bus.Publisher, log *zap.Logger) *fanOut {
	return &fanOut{publisher: publisher, log: log}
}

func (f *fanOut) toChatMembers(ctx context.Context, chat *model.Chat, event string, payload any, exceptUserID string) {
	for i := range chat.Users {
		userID := chat.Users[i].ID
		if userID == exceptUserID {
			continue
		}
		channel := bus.ChatChannel(chat.ID, userID)
		if err := f.publisher.Publish(ctx, channel, event, payload); err != nil {
			f.log.Warn("failed to publish event",
				zap.String("channel", channel),
				zap.String("event", event),
				zap.Error(err))
		}
	}
}

// toAll — рассылка всем участникам, включая автора: так сходятся его
// остальные устройства.
func (f *fanOut) toAll(ctx context.Context, chat *model.Chat, event string, payload any) {
	f.toChatMembers(ctx, chat, event, payload, "")
}

func (f *fanOut) toSummarize(ctx context.Context, chatID, userID, event string, payload any) {
	channel := bus.SummarizeChannel(chatID, userID)
	if err := f.publisher.Publish(ctx, channel, event, payload); err != nil {
		f.log.Warn("failed to publish summarize event",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(err))
	}
}
