package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/bus"
	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/repository"
)

type chatService struct {
	db  *gorm.DB
	fan *fanOut
	log *zap.Logger
}

func NewChatService(db *gorm.DB, publisher *bus.Publisher, log *zap.Logger) ChatService {
	return &chatService{db: db, fan: newFanOut(publisher, log), log: log}
}

func (s *chatService) CreateDirect(ctx context.Context, userID, recipientUserID string) (*model.Chat, error) {
	if recipientUserID == userID {
		return nil, apperr.BadRequest(apperr.ReasonUser, "cannot create a chat with yourself")
	}

	recipient, err := repository.NewUserRepository(s.db).FindByID(ctx, recipientUserID)
	if err != nil {
		return nil, err
	}
	if recipient.IsDeleted {
		return nil, apperr.Forbidden(apperr.ReasonDeleted, "recipient account is deleted")
	}
	if recipient.IsBanned {
		return nil, apperr.Forbidden(apperr.ReasonBanned, "recipient account is banned")
	}

	senderBlocks, recipientBlocks, err := repository.NewBlackListRepository(s.db).Blocks(ctx, userID, recipientUserID)
	if err != nil {
		return nil, err
	}
	if senderBlocks {
		return nil, apperr.Forbidden(apperr.ReasonBlockedRecipient, "you have blocked the recipient")
	}
	if recipientBlocks {
		return nil, apperr.Forbidden(apperr.ReasonBlockedByRecipient, "the recipient has blocked you")
	}

	existing, err := repository.NewChatRepository(s.db).FindDirectBetween(ctx, userID, recipientUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict(apperr.ReasonChatExists, "direct chat already exists")
	}

	sender, err := repository.NewUserRepository(s.db).FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	chat := &model.Chat{
		ChatType: model.ChatTypeDirect,
		Users:    []model.User{*sender, *recipient},
	}
	if err := s.createWithReadStatuses(ctx, chat); err != nil {
		return nil, err
	}
	chat.SanitizeUsers()
	return chat, nil
}

func (s *chatService) CreateGroup(ctx context.Context, userID string, recipientUserIDs []string, name string, image *string) (*model.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Unprocessable("group name is required")
	}
	if len(recipientUserIDs) == 0 {
		return nil, apperr.Unprocessable("at least one recipient is required")
	}

	users := repository.NewUserRepository(s.db)

	members := make([]model.User, 0, len(recipientUserIDs)+1)
	seen := map[string]bool{userID: true}

	creator, err := users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	members = append(members, *creator)

	for _, id := range recipientUserIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		member, err := users.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}

	if len(members) < 2 {
		return nil, apperr.Unprocessable("group chat needs at least two members")
	}

	chat := &model.Chat{
		ChatType:   model.ChatTypeGroup,
		NameGroup:  &name,
		ImageGroup: image,
		Users:      members,
	}
	if err := s.createWithReadStatuses(ctx, chat); err != nil {
		return nil, err
	}
	chat.SanitizeUsers()
	return chat, nil
}

// createWithReadStatuses создаёт чат и по строке ReadStatus на каждого
// участника в одной транзакции.
func (s *chatService) createWithReadStatuses(ctx context.Context, chat *model.Chat) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewChatRepository(tx).Create(ctx, chat); err != nil {
			return err
		}
		statuses := repository.NewReadStatusRepository(tx)
		for i := range chat.Users {
			rs := &model.ReadStatus{UserID: chat.Users[i].ID, ChatID: chat.ID}
			if err := statuses.Create(ctx, rs); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *chatService) Get(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.fillRequesterView(ctx, chat, userID); err != nil {
		return nil, err
	}
	chat.SanitizeUsers()
	return chat, nil
}

func (s *chatService) List(ctx context.Context, userID, cursor string, limit int, withUserID string) (*repository.Page[model.Chat], error) {
	c, err := repository.DecodeCursor(cursor, repository.CursorKindChats)
	if err != nil {
		return nil, err
	}
	limit = repository.ClampLimit(limit)

	chats, err := repository.NewChatRepository(s.db).ListForUser(ctx, userID, c, limit+1, withUserID)
	if err != nil {
		return nil, err
	}

	page := &repository.Page[model.Chat]{Items: chats}
	if len(chats) > limit {
		page.Items = chats[:limit]
		last := page.Items[limit-1]
		next := repository.EncodeCursor(repository.CursorKindChats, last.UpdatedAt, last.ID)
		page.NextCursor = &next
	}

	for i := range page.Items {
		if err := s.fillRequesterView(ctx, &page.Items[i], userID); err != nil {
			return nil, err
		}
		page.Items[i].SanitizeUsers()
	}
	return page, nil
}

func (s *chatService) ListDeleted(ctx context.Context, userID, cursor string, limit int) (*repository.Page[model.Chat], error) {
	c, err := repository.DecodeCursor(cursor, repository.CursorKindDeletedChats)
	if err != nil {
		return nil, err
	}
	limit = repository.ClampLimit(limit)

	chats, err := repository.NewChatRepository(s.db).ListDeletedForUser(ctx, userID, c, limit+1)
	if err != nil {
		return nil, err
	}

	page := &repository.Page[model.Chat]{Items: chats}
	if len(chats) > limit {
		page.Items = chats[:limit]
		last := page.Items[limit-1]
		next := repository.EncodeCursor(repository.CursorKindDeletedChats, *last.LastDeletedAt, last.ID)
		page.NextCursor = &next
	}

	for i := range page.Items {
		page.Items[i].SanitizeUsers()
	}
	return page, nil
}

// fillRequesterView дозаполняет персональные поля чата: черновик и счётчик
// непрочитанных существуют только в глазах запрашивающего.
func (s *chatService) fillRequesterView(ctx context.Context, chat *model.Chat, userID string) error {
	draft, err := repository.NewDraftRepository(s.db).Find(ctx, chat.ID, userID)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	if draft != nil {
		chat.DraftMessage = &draft.Content
	}

	rs, err := repository.NewReadStatusRepository(s.db).Find(ctx, userID, chat.ID)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	if rs != nil {
		chat.CountUnread = &rs.CountUnreadMsg
	}
	return nil
}

func (s *chatService) UpdateGroupName(ctx context.Context, userID, chatID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Unprocessable("group name is required")
	}

	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return err
	}
	if chat.ChatType != model.ChatTypeGroup {
		return apperr.BadRequest(apperr.ReasonChat, "direct chats have no name")
	}

	if err := repository.NewChatRepository(s.db).UpdateGroupName(ctx, chatID, name); err != nil {
		return err
	}

	s.fan.toAll(ctx, chat, bus.EventUpdateGroupName, map[string]any{
		"chat_id":    chatID,
		"name_group": name,
	})
	return nil
}

func (s *chatService) SetGroupImage(ctx context.Context, userID, chatID, imageURL string) error {
	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return err
	}
	if chat.ChatType != model.ChatTypeGroup {
		return apperr.BadRequest(apperr.ReasonChat, "direct chats have no image")
	}

	if err := repository.NewChatRepository(s.db).UpdateGroupImage(ctx, chatID, imageURL); err != nil {
		return err
	}

	s.fan.toAll(ctx, chat, bus.EventUpdateImageGroup, map[string]any{
		"chat_id":     chatID,
		"image_group": imageURL,
	})
	return nil
}

// Typing ничего не пишет в БД: набор текста — чистое событие.
func (s *chatService) Typing(ctx context.Context, userID, chatID string, isTyping bool) error {
	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return err
	}

	s.fan.toChatMembers(ctx, chat, bus.EventUserTyping, map[string]any{
		"chat_id":   chatID,
		"user_id":   userID,
		"is_typing": isTyping,
	}, userID)
	return nil
}
