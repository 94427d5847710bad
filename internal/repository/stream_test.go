package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) StreamRepository {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStreamRepository(client)
}

func TestStreamPushPopOrder(t *testing.T) {
	queue := newTestQueue(t)
	ctx := context.Background()
	key := QueueKey("chat-1", "user-1")

	for i := 0; i < 5; i++ {
		require.NoError(t, queue.Push(ctx, key, []byte(fmt.Sprintf(`{"event":"e%d"}`, i))))
	}

	for i := 0; i < 5; i++ {
		payload, err := queue.Pop(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf(`{"event":"e%d"}`, i), string(payload))
	}
}

func TestStreamPopEmpty(t *testing.T) {
	queue := newTestQueue(t)

	payload, err := queue.Pop(context.Background(), QueueKey("chat-1", "user-1"))
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestStreamOverflowSynthesizesResync(t *testing.T) {
	queue := newTestQueue(t)
	ctx := context.Background()
	key := QueueKey("chat-1", "user-1")

	for i := 0; i <= maxQueueLen; i++ {
		require.NoError(t, queue.Push(ctx, key, []byte(fmt.Sprintf(`{"event":"e%d"}`, i))))
	}

	n, err := queue.Len(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(maxQueueLen+1), n)

	// resync встаёт следующим на выдачу, самое старое событие вытеснено.
	payload, err := queue.Pop(ctx, key)
	require.NoError(t, err)

	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.Equal(t, "resync", envelope.Event)

	payload, err = queue.Pop(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"event":"e1"}`, string(payload))
}

func TestQueueKeys(t *testing.T) {
	assert.Equal(t, "sse:c_u", QueueKey("c", "u"))
	assert.Equal(t, "sse:c_u_summarize", SummarizeQueueKey("c", "u"))
}
