package repository

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"lastochka/messenger/internal/apperr"
)

// Курсоры пагинации: непрозрачные, самоописывающиеся, только вперёд.
// Внутри — ключ (timestamp, id) последней выданной записи и имя коллекции,
// чтобы курсор от сообщений нельзя было скормить списку чатов.

const (
	CursorKindMessages     = "messages"
	CursorKindChats        = "chats"
	CursorKindDeletedChats = "deleted-chats"
	CursorKindUsers        = "users"
)

const DefaultPageSize = 50

type Cursor struct {
	Kind string    `json:"k"`
	T    time.Time `json:"t"`
	ID   string    `json:"id"`
}

func EncodeCursor(kind string, t time.Time, id string) string {
	raw, _ := json.Marshal(Cursor{Kind: kind, T: t, ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func DecodeCursor(s, kind string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, apperr.Unprocessable("malformed cursor")
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.Kind != kind {
		return nil, apperr.Unprocessable("malformed cursor")
	}

	return &c, nil
}

// Page — страница cursor-пагинации. NextCursor пуст, когда дальше ничего нет.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > 100 {
		return 100
	}
	return limit
}
