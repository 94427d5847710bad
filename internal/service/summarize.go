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

// Сколько последних сообщений попадает в сводку.
const summarizeWindow = 100

// Summarizer — способность построить текстовую сводку по пачке сообщений.
// Ядро зовёт её только когда она включена; при выключенной способности
// семантика ядра не меняется.
type Summarizer interface {
	Summarize(ctx context.Context, msgs []model.Message) (string, error)
}

type summarizeService struct {
	db         *gorm.DB
	fan        *fanOut
	log        *zap.Logger
	summarizer Summarizer
}

func NewSummarizeService(db *gorm.DB, publisher *bus.Publisher, log *zap.Logger, summarizer Summarizer) SummarizeService {
	return &summarizeService{db: db, fan: newFanOut(publisher, log), log: log, summarizer: summarizer}
}

// Start принимает задачу и возвращается сразу; сама сводка строится в фоне
// на отвязанном контексте — отмена исходного запроса её не прерывает.
func (s *summarizeService) Start(ctx context.Context, userID, chatID string) error {
	if s.summarizer == nil {
		return apperr.Unavailable("summarization is disabled")
	}
	if _, err := resolveChatMember(ctx, s.db, chatID, userID); err != nil {
		return err
	}

	go s.run(context.Background(), userID, chatID)
	return nil
}

func (s *summarizeService) run(ctx context.Context, userID, chatID string) {
	msgs, err := repository.NewMessageRepository(s.db).List(ctx, chatID, nil, summarizeWindow)
	if err != nil {
		s.log.Warn("summarization failed to load messages",
			zap.String("chat_id", chatID), zap.Error(err))
		s.finish(ctx, userID, chatID, "", err)
		return
	}

	// List отдаёт от новых к старым; сводке нужен хронологический порядок.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	s.fan.toSummarize(ctx, chatID, userID, bus.EventProgressSummarization, map[string]any{
		"chat_id":  chatID,
		"progress": 0,
	})

	summary, err := s.summarizer.Summarize(ctx, msgs)

	s.fan.toSummarize(ctx, chatID, userID, bus.EventProgressSummarization, map[string]any{
		"chat_id":  chatID,
		"progress": 100,
	})
	s.finish(ctx, userID, chatID, summary, err)
}

func (s *summarizeService) finish(ctx context.Context, userID, chatID, summary string, err error) {
	payload := map[string]any{
		"chat_id": chatID,
		"summary": summary,
		"success": err == nil,
	}
	s.fan.toSummarize(ctx, chatID, userID, bus.EventFinishSummarization, payload)
}

// digestSummarizer — простейшая встроенная сводка: по строке на автора с
// началом его последней реплики. Держит место для внешней модели.
type digestSummarizer struct{}

func NewDigestSummarizer() Summarizer {
	return digestSummarizer{}
}

func (digestSummarizer) Summarize(ctx context.Context, msgs []model.Message) (string, error) {
	latestByUser := make(map[string]string)
	order := make([]string, 0)

	for i := range msgs {
		msg := &msgs[i]
		if msg.MessageType != model.MessageTypeText || msg.Content == nil {
			continue
		}
		if _, ok := latestByUser[msg.UserID]; !ok {
			order = append(order, msg.UserID)
		}
		latestByUser[msg.UserID] = clip(*msg.Content, 80)
	}

	if len(order) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, userID := range order {
		b.WriteString(userID)
		b.WriteString(": ")
		b.WriteString(latestByUser[userID])
		b.WriteString("\n")
	}
	return b.String(), nil
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
