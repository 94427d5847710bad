package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStatusUpdate(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	carol := createUser(t, env.db, "carol")
	chat := createGroupChat(t, env, alice, bob, carol)

	m1 := postText(t, env, alice, chat.ID, "first")
	m2 := postText(t, env, bob, chat.ID, "second")

	// После двух сообщений: автор второго — 0, остальные — по числу чужих.
	assert.Equal(t, 1, unreadCount(t, env.db, alice.ID, chat.ID))
	assert.Equal(t, 0, unreadCount(t, env.db, bob.ID, chat.ID))
	assert.Equal(t, 2, unreadCount(t, env.db, carol.ID, chat.ID))

	rs, err := env.readStatuses().Update(t.Context(), carol.ID, chat.ID, &m2.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, rs.LastReadMessageID)
	assert.Equal(t, m2.ID, *rs.LastReadMessageID)
	assert.Zero(t, rs.CountUnreadMsg)
	assert.Equal(t, 0, unreadCount(t, env.db, carol.ID, chat.ID))

	// Отрицательный счётчик прижимается к нулю.
	rs, err = env.readStatuses().Update(t.Context(), alice.ID, chat.ID, &m1.ID, -5)
	require.NoError(t, err)
	assert.Zero(t, rs.CountUnreadMsg)
}
