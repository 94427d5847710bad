package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastochka/messenger/internal/apperr"
)

func TestCursorRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	encoded := EncodeCursor(CursorKindMessages, now, "msg-1")
	cursor, err := DecodeCursor(encoded, CursorKindMessages)
	require.NoError(t, err)
	require.NotNil(t, cursor)

	assert.Equal(t, CursorKindMessages, cursor.Kind)
	assert.True(t, now.Equal(cursor.T))
	assert.Equal(t, "msg-1", cursor.ID)
}

func TestDecodeCursorEmpty(t *testing.T) {
	cursor, err := DecodeCursor("", CursorKindChats)
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursorWrongKind(t *testing.T) {
	encoded := EncodeCursor(CursorKindMessages, time.Now(), "msg-1")

	_, err := DecodeCursor(encoded, CursorKindChats)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnprocessable, apperr.KindOf(err))
}

func TestDecodeCursorGarbage(t *testing.T) {
	_, err := DecodeCursor("???not-base64???", CursorKindMessages)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnprocessable, apperr.KindOf(err))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampLimit(0))
	assert.Equal(t, DefaultPageSize, ClampLimit(-5))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, 100, ClampLimit(1000))
}
