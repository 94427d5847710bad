package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Очередь подписчика: по одному redis-списку на пару (chat, user).
// Подписчик шины кладёт события в голову (LPUSH), эмиттер забирает из
// хвоста (RPOP) — порядок публикации сохраняется для каждого ключа.
//
// Ограничение очереди мягкое: при переполнении выбрасываем самое старое
// событие и подкладываем синтетический resync, чтобы клиент перечитал
// страницу. Простаивающие ключи истекают через сутки.
const (
	maxQueueLen = 512
	queueTTL    = 24 * time.Hour
)

type StreamRepository interface {
	Push(ctx context.Context, key string, payload []byte) error
	// Pop возвращает (nil, nil), когда очередь пуста.
	Pop(ctx context.Context, key string) ([]byte, error)
	Len(ctx context.Context, key string) (int64, error)
}

// QueueKey — ключ очереди обычного стрима чата.
func QueueKey(chatID, userID string) string {
	return fmt.Sprintf("sse:%s_%s", chatID, userID)
}

// SummarizeQueueKey — ключ очереди стрима суммаризации.
func SummarizeQueueKey(chatID, userID string) string {
	return fmt.Sprintf("sse:%s_%s_summarize", chatID, userID)
}

type streamRepository struct {
	rdb *redis.Client
}

func NewStreamRepository(rdb *redis.Client) StreamRepository {
	return &streamRepository{rdb: rdb}
}

func (r *streamRepository) Push(ctx context.Context, key string, payload []byte) error {
	n, err := r.rdb.LLen(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if n >= maxQueueLen {
		// Срезаем хвост (самые старые) и ставим resync следующим на выдачу.
		if err := r.rdb.LTrim(ctx, key, 0, maxQueueLen-2).Err(); err != nil {
			return err
		}
		resync := []byte(`{"event":"resync","data":{}}`)
		if err := r.rdb.RPush(ctx, key, resync).Err(); err != nil {
			return err
		}
	}

	if err := r.rdb.LPush(ctx, key, payload).Err(); err != nil {
		return err
	}
	return r.rdb.Expire(ctx, key, queueTTL).Err()
}

func (r *streamRepository) Pop(ctx context.Context, key string) ([]byte, error) {
	payload, err := r.rdb.RPop(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return payload, nil
}

func (r *streamRepository) Len(ctx context.Context, key string) (int64, error) {
	return r.rdb.LLen(ctx, key).Result()
}
