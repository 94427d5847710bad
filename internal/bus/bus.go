// Package bus — pub/sub поверх redis с иерархическими именами каналов.
// Публикация fire-and-forget: подтверждений и персистентности нет,
// источником истины остаётся БД.
package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Типы событий, которые ядро кладёт в канал чата.
const (
	EventNewMessage       = "new_message"
	EventUpdateMessage    = "update_message"
	EventDeleteMessage    = "delete_message"
	EventRecoverMessage   = "recover_message"
	EventForwardMessage   = "forward_message"
	EventNewReaction      = "new_reaction"
	EventDeleteReaction   = "delete_reaction"
	EventUpdateReadStatus = "update_read_status"
	EventUserTyping       = "user_typing"
	EventUpdateGroupName  = "update_group_name"
	EventUpdateImageGroup = "update_image_group"

	EventProgressSummarization = "progress_summarization"
	EventFinishSummarization   = "finish_summarization"
)

// Envelope — конверт события в канале: имя события и JSON-полезная нагрузка.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ChatChannel — канал одного получателя одного чата. Рассылка по чату — это
// публикация по разу в канал каждого участника: издатель не знает ничего
// про сессии и устройства.
func ChatChannel(chatID, userID string) string {
	return fmt.Sprintf("chat:%s:%s", chatID, userID)
}

// SummarizeChannel — канал фоновой задачи суммаризации.
func SummarizeChannel(chatID, userID string) string {
	return fmt.Sprintf("summarize:%s:%s", chatID, userID)
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish заворачивает payload в конверт и публикует в канал. Ошибку
// возвращает вызывающему: после коммита её логируют и глотают.
func (p *Publisher) Publish(ctx context.Context, channel, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return p.rdb.Publish(ctx, channel, envelope).Err()
}
