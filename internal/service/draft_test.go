package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastochka/messenger/internal/apperr"
)

func TestDraftLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)

	draft, err := env.drafts().Put(t.Context(), alice.ID, chat.ID, "first version")
	require.NoError(t, err)
	assert.Equal(t, "first version", draft.Content)

	view, err := env.chats().Get(t.Context(), alice.ID, chat.ID)
	require.NoError(t, err)
	require.NotNil(t, view.DraftMessage)
	assert.Equal(t, "first version", *view.DraftMessage)

	// Повторный POST заменяет, а не плодит второй черновик.
	replaced, err := env.drafts().Put(t.Context(), alice.ID, chat.ID, "second version")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, replaced.ID)
	assert.Equal(t, "second version", replaced.Content)

	updated, err := env.drafts().Update(t.Context(), alice.ID, chat.ID, "third version")
	require.NoError(t, err)
	assert.Equal(t, "third version", updated.Content)

	require.NoError(t, env.drafts().Delete(t.Context(), alice.ID, chat.ID))

	view, err = env.chats().Get(t.Context(), alice.ID, chat.ID)
	require.NoError(t, err)
	assert.Nil(t, view.DraftMessage)

	// Второе удаление — NotFound.
	err = env.drafts().Delete(t.Context(), alice.ID, chat.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDraftUpdateWithoutDraft(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)

	_, err := env.drafts().Update(t.Context(), alice.ID, chat.ID, "text")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.ReasonDraft, apperr.ReasonOf(err))
}

func TestDraftIsPrivatePerUser(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)

	_, err := env.drafts().Put(t.Context(), alice.ID, chat.ID, "secret")
	require.NoError(t, err)

	view, err := env.chats().Get(t.Context(), bob.ID, chat.ID)
	require.NoError(t, err)
	assert.Nil(t, view.DraftMessage)
}
