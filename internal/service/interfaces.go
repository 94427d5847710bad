package service

import (
	"context"

	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/repository"
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PostMessageInput struct {
	MessageType     model.MessageType `json:"message_type"`
	Content         *string           `json:"content,omitempty"`
	FileName        *string           `json:"file_name,omitempty"`
	FilePath        *string           `json:"file_path,omitempty"`
	ParentMessageID *string           `json:"parent_message_id,omitempty"`
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	// ResolvePrincipal — шлюз доступа: найден, не удалён, не забанен.
	ResolvePrincipal(ctx context.Context, userID string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	SoftDelete(ctx context.Context, userID string) error
	Recover(ctx context.Context, userID string) error
	TouchPresence(ctx context.Context, user *model.User) error
}

type ChatService interface {
	CreateDirect(ctx context.Context, userID, recipientUserID string) (*model.Chat, error)
	CreateGroup(ctx context.Context, userID string, recipientUserIDs []string, name string, image *string) (*model.Chat, error)
	Get(ctx context.Context, userID, chatID string) (*model.Chat, error)
	List(ctx context.Context, userID, cursor string, limit int, withUserID string) (*repository.Page[model.Chat], error)
	ListDeleted(ctx context.Context, userID, cursor string, limit int) (*repository.Page[model.Chat], error)
	UpdateGroupName(ctx context.Context, userID, chatID, name string) error
	SetGroupImage(ctx context.Context, userID, chatID, imageURL string) error
	Typing(ctx context.Context, userID, chatID string, isTyping bool) error
}

type MessageService interface {
	Post(ctx context.Context, userID, chatID string, input PostMessageInput) (*model.Message, error)
	Edit(ctx context.Context, userID, chatID, messageID string, content string) (*model.Message, error)
	// Delete: первый вызов — мягкое удаление (hard=false), повторный или
	// isForever — жёсткое (hard=true).
	Delete(ctx context.Context, userID, chatID, messageID string, isForever bool) (hard bool, err error)
	Recover(ctx context.Context, userID, chatID, messageID string) (*model.Message, error)
	Forward(ctx context.Context, userID, fromChatID, toChatID string, messageIDs []string) ([]model.Message, error)
	List(ctx context.Context, userID, chatID, cursor string, limit int) (*repository.Page[model.Message], error)
	Range(ctx context.Context, userID, chatID, fromID, toID string) ([]model.Message, error)
}

type DraftService interface {
	Put(ctx context.Context, userID, chatID, content string) (*model.DraftMessage, error)
	Update(ctx context.Context, userID, chatID, content string) (*model.DraftMessage, error)
	Delete(ctx context.Context, userID, chatID string) error
}

type ReactionService interface {
	Set(ctx context.Context, userID, chatID, messageID, reactionType string) (*model.Reaction, error)
	Remove(ctx context.Context, userID, chatID, messageID string) error
}

type ReadStatusService interface {
	Update(ctx context.Context, userID, chatID string, lastReadMessageID *string, countUnread int) (*model.ReadStatus, error)
}

type SummarizeService interface {
	// Start запускает фоновую задачу суммаризации; события приходят в
	// отдельный summarize-стрим.
	Start(ctx context.Context, userID, chatID string) error
}

type BlackListService interface {
	Block(ctx context.Context, ownerID, userID string) error
	Unblock(ctx context.Context, ownerID, userID string) error
	List(ctx context.Context, ownerID, cursor string, limit int) (*repository.Page[model.User], error)
}
