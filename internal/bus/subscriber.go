package bus

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lastochka/messenger/internal/repository"
)

// Subscriber — единственный на процесс обработчик шины: он получает все
// конверты всех каналов участников и раскладывает их по очередям
// подписчиков. Конверты одного канала всегда попадают к одному воркеру,
// поэтому порядок публикации на ключ не теряется.
type Subscriber struct {
	rdb     *redis.Client
	queue   repository.StreamRepository
	log     *zap.Logger
	workers int
}

func NewSubscriber(rdb *redis.Client, queue repository.StreamRepository, log *zap.Logger, workers int) *Subscriber {
	if workers < 1 {
		workers = 1
	}
	return &Subscriber{rdb: rdb, queue: queue, log: log, workers: workers}
}

// Run блокируется до отмены контекста.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.rdb.PSubscribe(ctx, "chat:*", "summarize:*")
	defer pubsub.Close()

	lanes := make([]chan *redis.Message, s.workers)
	for i := range lanes {
		lanes[i] = make(chan *redis.Message, 64)
		go s.worker(ctx, lanes[i])
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			for _, lane := range lanes {
				close(lane)
			}
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				for _, lane := range lanes {
					close(lane)
				}
				return nil
			}
			lanes[s.laneFor(msg.Channel)] <- msg
		}
	}
}

// laneFor берёт остаток в uint32: на 32-битных платформах int(Sum32())
// уходит в минус.
func (s *Subscriber) laneFor(channel string) int {
	h := fnv.New32a()
	h.Write([]byte(channel))
	return int(h.Sum32() % uint32(s.workers))
}

func (s *Subscriber) worker(ctx context.Context, lane <-chan *redis.Message) {
	for msg := range lane {
		key, ok := queueKeyForChannel(msg.Channel)
		if !ok {
			s.log.Warn("unexpected bus channel", zap.String("channel", msg.Channel))
			continue
		}
		if err := s.queue.Push(ctx, key, []byte(msg.Payload)); err != nil {
			// Очередь — best effort: клиент дочитает из БД.
			s.log.Warn("failed to enqueue event",
				zap.String("key", key), zap.Error(err))
		}
	}
}

// queueKeyForChannel переводит имя канала в ключ очереди подписчика:
// chat:<c>:<u> -> sse:<c>_<u>, summarize:<c>:<u> -> sse:<c>_<u>_summarize.
func queueKeyForChannel(channel string) (string, bool) {
	parts := strings.Split(channel, ":")
	if len(parts) != 3 {
		return "", false
	}
	switch parts[0] {
	case "chat":
		return repository.QueueKey(parts[1], parts[2]), true
	case "summarize":
		return repository.SummarizeQueueKey(parts[1], parts[2]), true
	default:
		return "", false
	}
}
