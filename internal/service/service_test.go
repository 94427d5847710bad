package service

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lastochka/messenger/internal/bus"
	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/pkg/auth"
)

// Тестовое окружение: in-memory sqlite вместо postgres и miniredis вместо
// настоящего redis. Семантика запросов ядра на обоих одинаковая.
type testEnv struct {
	db        *gorm.DB
	rdb       *redis.Client
	publisher *bus.Publisher
	log       *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Одно соединение: у каждого нового коннекта sqlite была бы своя память.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, model.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return &testEnv{
		db:        db,
		rdb:       rdb,
		publisher: bus.NewPublisher(rdb),
		log:       zap.NewNop(),
	}
}

func (e *testEnv) users() UserService {
	return NewUserService(e.db, e.log)
}

func (e *testEnv) chats() ChatService {
	return NewChatService(e.db, e.publisher, e.log)
}

func (e *testEnv) messages() MessageService {
	return NewMessageService(e.db, e.publisher, e.log)
}

func (e *testEnv) drafts() DraftService {
	return NewDraftService(e.db)
}

func (e *testEnv) reactions() ReactionService {
	return NewReactionService(e.db, e.publisher, e.log)
}

func (e *testEnv) readStatuses() ReadStatusService {
	return NewReadStatusService(e.db, e.publisher, e.log)
}

func (e *testEnv) blacklist() BlackListService {
	return NewBlackListService(e.db)
}

func createUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	hash, err := auth.HashPassword("s3cure-pass!")
	require.NoError(t, err)

	user := &model.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    hash,
		DisplayName: username,
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createDirectChat(t *testing.T, env *testEnv, a, b *model.User) *model.Chat {
	t.Helper()

	chat, err := env.chats().CreateDirect(t.Context(), a.ID, b.ID)
	require.NoError(t, err)
	return chat
}

func createGroupChat(t *testing.T, env *testEnv, creator *model.User, members ...*model.User) *model.Chat {
	t.Helper()

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	chat, err := env.chats().CreateGroup(t.Context(), creator.ID, ids, "test group", nil)
	require.NoError(t, err)
	return chat
}

func postText(t *testing.T, env *testEnv, author *model.User, chatID, content string) *model.Message {
	t.Helper()

	msg, err := env.messages().Post(t.Context(), author.ID, chatID, PostMessageInput{
		MessageType: model.MessageTypeText,
		Content:     &content,
	})
	require.NoError(t, err)
	return msg
}

func unreadCount(t *testing.T, db *gorm.DB, userID, chatID string) int {
	t.Helper()

	var rs model.ReadStatus
	require.NoError(t, db.First(&rs, "user_id = ? AND chat_id = ?", userID, chatID).Error)
	return rs.CountUnreadMsg
}

func lastMessageContent(t *testing.T, db *gorm.DB, chatID string) *string {
	t.Helper()

	var chat model.Chat
	require.NoError(t, db.First(&chat, "id = ?", chatID).Error)
	return chat.LastMessageContent
}
