package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
)

func TestPostTextMessage(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)

	msg := postText(t, env, alice, chat.ID, "hi")

	assert.Equal(t, alice.ID, msg.UserID)
	assert.Equal(t, chat.ID, msg.ChatID)
	require.NotNil(t, msg.Content)
	assert.Equal(t, "hi", *msg.Content)

	// Счётчик получателя растёт, счётчик автора обнулён.
	assert.Equal(t, 1, unreadCount(t, env.db, bob.ID, chat.ID))
	assert.Equal(t, 0, unreadCount(t, env.db, alice.ID, chat.ID))

	last := lastMessageContent(t, env.db, chat.ID)
	require.NotNil(t, last)
	assert.Equal(t, "hi", *last)
}

func TestPostValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)

	_, err := env.messages().Post(t.Context(), alice.ID, chat.ID, PostMessageInput{
		MessageType: model.MessageTypeText,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonMissingContent, apperr.ReasonOf(err))

	name := "doc.pdf"
	_, err = env.messages().Post(t.Context(), alice.ID, chat.ID, PostMessageInput{
		MessageType: model.MessageTypeFile,
		FileName:    &name,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonMissingFile, apperr.ReasonOf(err))
}

func TestPostAsNonMember(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	mallory := createUser(t, env.db, "mallory")
	chat := createDirectChat(t, env, alice, bob)

	content := "hi"
	_, err := env.messages().Post(t.Context(), mallory.ID, chat.ID, PostMessageInput{
		MessageType: model.MessageTypeText,
		Content:     &content,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonNotMember, apperr.ReasonOf(err))
}

func TestPostBlockedDirectChat(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)

	require.NoError(t, env.blacklist().Block(t.Context(), alice.ID, bob.ID))

	content := "hi"
	_, err := env.messages().Post(t.Context(), alice.ID, chat.ID, PostMessageInput{
		MessageType: model.MessageTypeText,
		Content:     &content,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonBlockedRecipient, apperr.ReasonOf(err))

	_, err = env.messages().Post(t.Context(), bob.ID, chat.ID, PostMessageInput{
		MessageType: model.MessageTypeText,
		Content:     &content,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonBlockedByRecipient, apperr.ReasonOf(err))
}

func TestReplyParentMustBeLiveInSameChat(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	carol := createUser(t, env.db, "carol")
	chat := createDirectChat(t, env, alice, bob)
	other := createDirectChat(t, env, alice, carol)

	parent := postText(t, env, alice, other.ID, "elsewhere")

	content := "reply"
	_, err := env.messages().Post(t.Context(), alice.ID, chat.ID, PostMessageInput{
		MessageType:     model.MessageTypeText,
		Content:         &content,
		ParentMessageID: &parent.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Реплай на живое сообщение своего чата проходит.
	local := postText(t, env, bob, chat.ID, "root")
	reply, err := env.messages().Post(t.Context(), alice.ID, chat.ID, PostMessageInput{
		MessageType:     model.MessageTypeText,
		Content:         &content,
		ParentMessageID: &local.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentMessageID)
	assert.Equal(t, local.ID, *reply.ParentMessageID)
}

func TestEditMessage(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)
	msg := postText(t, env, alice, chat.ID, "hi")

	edited, err := env.messages().Edit(t.Context(), alice.ID, chat.ID, msg.ID, "hello")
	require.NoError(t, err)
	require.NotNil(t, edited.Content)
	assert.Equal(t, "hello", *edited.Content)

	last := lastMessageContent(t, env.db, chat.ID)
	require.NotNil(t, last)
	assert.Equal(t, "hello", *last)
}

func TestEditForbiddenForNonAuthor(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)
	msg := postText(t, env, alice, chat.ID, "hi")

	_, err := env.messages().Edit(t.Context(), bob.ID, chat.ID, msg.ID, "hacked")
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonNotOwner, apperr.ReasonOf(err))
}

func TestEditFileMessageRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)

	name, path := "doc.pdf", "https://files/doc.pdf"
	msg, err := env.messages().Post(t.Context(), alice.ID, chat.ID, PostMessageInput{
		MessageType: model.MessageTypeFile,
		FileName:    &name,
		FilePath:    &path,
	})
	require.NoError(t, err)

	_, err = env.messages().Edit(t.Context(), alice.ID, chat.ID, msg.ID, "text")
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonEditFile, apperr.ReasonOf(err))
}

func TestSoftDeleteThenHardDelete(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)
	msg := postText(t, env, alice, chat.ID, "hi")

	hard, err := env.messages().Delete(t.Context(), alice.ID, chat.ID, msg.ID, false)
	require.NoError(t, err)
	assert.False(t, hard)

	var stored model.Message
	require.NoError(t, env.db.First(&stored, "id = ?", msg.ID).Error)
	assert.True(t, stored.IsDeleted)

	var tombstones int64
	require.NoError(t, env.db.Model(&model.DeletedMessage{}).
		Where("original_message_id = ?", msg.ID).Count(&tombstones).Error)
	assert.Equal(t, int64(1), tombstones)

	// Единственное текстовое сообщение удалено, снапшот обнуляется.
	assert.Nil(t, lastMessageContent(t, env.db, chat.ID))

	// Повторное удаление — жёсткое: исчезают и строка, и надгробие.
	hard, err = env.messages().Delete(t.Context(), alice.ID, chat.ID, msg.ID, false)
	require.NoError(t, err)
	assert.True(t, hard)

	var rows int64
	require.NoError(t, env.db.Model(&model.Message{}).Where("id = ?", msg.ID).Count(&rows).Error)
	assert.Zero(t, rows)
	require.NoError(t, env.db.Model(&model.DeletedMessage{}).
		Where("original_message_id = ?", msg.ID).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestRecoverMessage(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)
	msg := postText(t, env, alice, chat.ID, "hi")

	_, err := env.messages().Delete(t.Context(), alice.ID, chat.ID, msg.ID, false)
	require.NoError(t, err)

	recovered, err := env.messages().Recover(t.Context(), alice.ID, chat.ID, msg.ID)
	require.NoError(t, err)
	assert.False(t, recovered.IsDeleted)
	require.NotNil(t, recovered.Content)
	assert.Equal(t, "hi", *recovered.Content)

	var tombstones int64
	require.NoError(t, env.db.Model(&model.DeletedMessage{}).
		Where("original_message_id = ?", msg.ID).Count(&tombstones).Error)
	assert.Zero(t, tombstones)

	last := lastMessageContent(t, env.db, chat.ID)
	require.NotNil(t, last)
	assert.Equal(t, "hi", *last)
}

func TestRecoverLiveMessageRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)
	msg := postText(t, env, alice, chat.ID, "hi")

	_, err := env.messages().Recover(t.Context(), alice.ID, chat.ID, msg.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonNotDeletedRecovery, apperr.ReasonOf(err))
}

func TestForwardMessages(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	carol := createUser(t, env.db, "carol")
	source := createDirectChat(t, env, alice, bob)
	target := createGroupChat(t, env, alice, bob, carol)

	m1 := postText(t, env, alice, source.ID, "first")
	m2 := postText(t, env, bob, source.ID, "second")

	forwarded, err := env.messages().Forward(t.Context(), alice.ID, source.ID, target.ID, []string{m1.ID, m2.ID})
	require.NoError(t, err)
	require.Len(t, forwarded, 2)

	for i, src := range []*model.Message{m1, m2} {
		assert.Equal(t, alice.ID, forwarded[i].UserID)
		assert.Equal(t, target.ID, forwarded[i].ChatID)
		require.NotNil(t, forwarded[i].ForwardedMessageID)
		assert.Equal(t, src.ID, *forwarded[i].ForwardedMessageID)
		assert.Equal(t, src.Content, forwarded[i].Content)
	}

	// Пересылка — обычная запись в целевой чат: счётчики растут у всех,
	// кроме пересылающего.
	assert.Equal(t, 1, unreadCount(t, env.db, bob.ID, target.ID))
	assert.Equal(t, 1, unreadCount(t, env.db, carol.ID, target.ID))
	assert.Equal(t, 0, unreadCount(t, env.db, alice.ID, target.ID))
}

func TestForwardIntoBlockedDirectChat(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	carol := createUser(t, env.db, "carol")
	source := createGroupChat(t, env, alice, carol)
	target := createDirectChat(t, env, alice, bob)

	msg := postText(t, env, alice, source.ID, "hi")

	// Блок действует на целевой чат, а не на исходный.
	require.NoError(t, env.blacklist().Block(t.Context(), bob.ID, alice.ID))

	_, err := env.messages().Forward(t.Context(), alice.ID, source.ID, target.ID, []string{msg.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonBlockedByRecipient, apperr.ReasonOf(err))

	require.NoError(t, env.blacklist().Unblock(t.Context(), bob.ID, alice.ID))
	require.NoError(t, env.blacklist().Block(t.Context(), alice.ID, bob.ID))

	_, err = env.messages().Forward(t.Context(), alice.ID, source.ID, target.ID, []string{msg.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonBlockedRecipient, apperr.ReasonOf(err))

	// После снятия блока пересылка проходит.
	require.NoError(t, env.blacklist().Unblock(t.Context(), alice.ID, bob.ID))

	forwarded, err := env.messages().Forward(t.Context(), alice.ID, source.ID, target.ID, []string{msg.ID})
	require.NoError(t, err)
	require.Len(t, forwarded, 1)
}

func TestForwardRequiresMembershipOfBothChats(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	carol := createUser(t, env.db, "carol")
	dave := createUser(t, env.db, "dave")
	source := createDirectChat(t, env, alice, bob)
	foreign := createDirectChat(t, env, carol, dave)

	msg := postText(t, env, alice, source.ID, "hi")

	_, err := env.messages().Forward(t.Context(), alice.ID, source.ID, foreign.ID, []string{msg.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonNotMember, apperr.ReasonOf(err))
}

func TestListMessagesPagination(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)

	for _, content := range []string{"one", "two", "three"} {
		postText(t, env, alice, chat.ID, content)
	}

	page, err := env.messages().List(t.Context(), bob.ID, chat.ID, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotNil(t, page.NextCursor)

	rest, err := env.messages().List(t.Context(), bob.ID, chat.ID, *page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Nil(t, rest.NextCursor)

	// Страницы не пересекаются и покрывают все сообщения.
	seen := map[string]bool{}
	for _, m := range append(page.Items, rest.Items...) {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestLastMessagePreviewTruncated(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	chat := createDirectChat(t, env, alice, bob)

	long := make([]rune, 0, 150)
	for i := 0; i < 150; i++ {
		long = append(long, 'щ')
	}
	postText(t, env, alice, chat.ID, string(long))

	last := lastMessageContent(t, env.db, chat.ID)
	require.NotNil(t, last)
	assert.Equal(t, model.LastMessagePreviewLen, len([]rune(*last)))
}
