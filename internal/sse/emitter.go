// Package sse — долгоживущий эмиттер событийного стрима. На каждый
// подключённый клиент работает один цикл: выбрать событие из очереди
// подписчика, записать кадр, при пустой очереди — подождать. Все точки
// ожидания кооперативные, отмена контекста наблюдаема в каждой из них.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/bus"
	"lastochka/messenger/internal/repository"
)

const (
	idleSleep         = 100 * time.Millisecond
	keepaliveInterval = 60 * time.Second
)

type Emitter struct {
	queue repository.StreamRepository
	log   *zap.Logger
}

func NewEmitter(queue repository.StreamRepository, log *zap.Logger) *Emitter {
	return &Emitter{queue: queue, log: log}
}

// Stream качает очередь key в w до отмены контекста. Недочитанные события
// остаются в очереди и достанутся следующей сессии.
func (e *Emitter) Stream(ctx context.Context, w http.ResponseWriter, key string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return apperr.Internalf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		payload, err := e.queue.Pop(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			e.log.Warn("failed to pop subscriber queue",
				zap.String("key", key), zap.Error(err))
			payload = nil
		}

		if payload == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-keepalive.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return nil
				}
				flusher.Flush()
			case <-time.After(idleSleep):
			}
			continue
		}

		if err := writeFrame(w, payload); err != nil {
			// Клиент отвалился; событие уже снято с очереди, это допустимая
			// потеря — доставка per-session не строже at-most-once.
			return nil
		}
		flusher.Flush()
	}
}

func writeFrame(w http.ResponseWriter, payload []byte) error {
	var envelope bus.Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		// Битый конверт пропускаем, стрим не роняем.
		return nil
	}

	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", envelope.Event, envelope.Data)
	return err
}
