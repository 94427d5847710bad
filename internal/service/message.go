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

type messageService struct {
	db  *gorm.DB
	fan *fanOut
	log *zap.Logger
}

func NewMessageService(db *gorm.DB, publisher *bus.Publisher, log *zap.Logger) MessageService {
	return &messageService{db: db, fan: newFanOut(publisher, log), log: log}
}

// validatePostInput — проверки формы до любых обращений к БД. Порядок
// фиксирован: сначала контент, затем файл.
func validatePostInput(input PostMessageInput) error {
	switch input.MessageType {
	case model.MessageTypeText:
		if input.Content == nil || strings.TrimSpace(*input.Content) == "" {
			return apperr.BadRequest(apperr.ReasonMissingContent, "text message requires content")
		}
	case model.MessageTypeFile:
		if input.FileName == nil || input.FilePath == nil {
			return apperr.BadRequest(apperr.ReasonMissingFile, "file message requires file_name and file_path")
		}
	default:
		return apperr.Unprocessable("unknown message type")
	}
	return nil
}

func (s *messageService) Post(ctx context.Context, userID, chatID string, input PostMessageInput) (*model.Message, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}

	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return nil, err
	}
	if err := directWriteGate(ctx, s.db, chat, userID); err != nil {
		return nil, err
	}

	if input.ParentMessageID != nil {
		// Родитель реплая обязан быть живым сообщением этого же чата.
		if _, err := repository.NewMessageRepository(s.db).FindLive(ctx, chatID, *input.ParentMessageID); err != nil {
			return nil, err
		}
	}

	msg := &model.Message{
		MessageType:     input.MessageType,
		Content:         input.Content,
		FileName:        input.FileName,
		FilePath:        input.FilePath,
		UserID:          userID,
		ChatID:          chatID,
		ParentMessageID: input.ParentMessageID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messages := repository.NewMessageRepository(tx)
		chats := repository.NewChatRepository(tx)
		statuses := repository.NewReadStatusRepository(tx)

		if err := messages.Create(ctx, msg); err != nil {
			return err
		}

		if preview := msg.Preview(); preview != "" {
			if err := chats.SetLastMessageContent(ctx, chatID, &preview); err != nil {
				return err
			}
		}
		if err := chats.Touch(ctx, chatID); err != nil {
			return err
		}

		if err := statuses.IncrementUnread(ctx, chatID, memberIDs(chat), userID); err != nil {
			return err
		}
		return statuses.ResetForAuthor(ctx, userID, chatID)
	})
	if err != nil {
		return nil, err
	}

	s.fan.toAll(ctx, chat, bus.EventNewMessage, msg)
	return msg, nil
}

func (s *messageService) Edit(ctx context.Context, userID, chatID, messageID string, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.BadRequest(apperr.ReasonMissingContent, "text message requires content")
	}

	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return nil, err
	}

	msg, err := repository.NewMessageRepository(s.db).FindLive(ctx, chatID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != userID {
		return nil, apperr.Forbidden(apperr.ReasonNotOwner, "only the author can edit a message")
	}
	if msg.MessageType != model.MessageTypeText {
		return nil, apperr.BadRequest(apperr.ReasonEditFile, "file messages cannot be edited")
	}

	msg.Content = &content

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messages := repository.NewMessageRepository(tx)
		if err := messages.Update(ctx, msg); err != nil {
			return err
		}
		return refreshLastMessage(ctx, tx, chatID)
	})
	if err != nil {
		return nil, err
	}

	s.fan.toAll(ctx, chat, bus.EventUpdateMessage, msg)
	return msg, nil
}

func (s *messageService) Delete(ctx context.Context, userID, chatID, messageID string, isForever bool) (bool, error) {
	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return false, err
	}

	msg, err := repository.NewMessageRepository(s.db).FindByID(ctx, chatID, messageID)
	if err != nil {
		return false, err
	}
	if msg.UserID != userID {
		return false, apperr.Forbidden(apperr.ReasonNotOwner, "only the author can delete a message")
	}

	// Повторное удаление эквивалентно is_forever.
	hard := isForever || msg.IsDeleted

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messages := repository.NewMessageRepository(tx)

		if hard {
			if err := messages.DeleteTombstone(ctx, messageID); err != nil {
				return err
			}
			if err := messages.HardDelete(ctx, messageID); err != nil {
				return err
			}
		} else {
			if err := messages.SetDeleted(ctx, messageID, true); err != nil {
				return err
			}
			tombstone := &model.DeletedMessage{
				OriginalMessageID: messageID,
				UserID:            userID,
				ChatID:            chatID,
				Content:           msg.Content,
			}
			if err := messages.CreateTombstone(ctx, tombstone); err != nil {
				return err
			}
		}
		return refreshLastMessage(ctx, tx, chatID)
	})
	if err != nil {
		return false, err
	}

	s.fan.toAll(ctx, chat, bus.EventDeleteMessage, map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"is_forever": hard,
	})
	return hard, nil
}

func (s *messageService) Recover(ctx context.Context, userID, chatID, messageID string) (*model.Message, error) {
	chat, err := resolveChatMember(ctx, s.db, chatID, userID)
	if err != nil {
		return nil, err
	}

	messages := repository.NewMessageRepository(s.db)

	msg, err := messages.FindByID(ctx, chatID, messageID)
	if err != nil {
		return nil, err
	}
	if !msg.IsDeleted {
		return nil, apperr.BadRequest(apperr.ReasonNotDeletedRecovery, "message is not deleted")
	}

	tombstone, err := messages.FindTombstone(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if tombstone == nil || tombstone.UserID != userID {
		return nil, apperr.Forbidden(apperr.ReasonNotOwner, "only the author can recover a message")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messages := repository.NewMessageRepository(tx)
		if err := messages.SetDeleted(ctx, messageID, false); err != nil {
			return err
		}
		if err := messages.DeleteTombstone(ctx, messageID); err != nil {
			return err
		}
		return refreshLastMessage(ctx, tx, chatID)
	})
	if err != nil {
		return nil, err
	}

	msg.IsDeleted = false
	s.fan.toAll(ctx, chat, bus.EventRecoverMessage, msg)
	return msg, nil
}

func (s *messageService) Forward(ctx context.Context, userID, fromChatID, toChatID string, messageIDs []string) ([]model.Message, error) {
	if len(messageIDs) == 0 {
		return nil, apperr.Unprocessable("no messages to forward")
	}

	if _, err := resolveChatMember(ctx, s.db, fromChatID, userID); err != nil {
		return nil, err
	}
	target, err := resolveChatMember(ctx, s.db, toChatID, userID)
	if err != nil {
		return nil, err
	}
	// Шлюз блокировок применяется к целевому чату: пересылка — это запись
	// именно туда.
	if err := directWriteGate(ctx, s.db, target, userID); err != nil {
		return nil, err
	}

	sources := make([]*model.Message, 0, len(messageIDs))
	messages := repository.NewMessageRepository(s.db)
	for _, id := range messageIDs {
		src, err := messages.FindLive(ctx, fromChatID, id)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	forwarded := make([]model.Message, 0, len(sources))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messages := repository.NewMessageRepository(tx)
		chats := repository.NewChatRepository(tx)
		statuses := repository.NewReadStatusRepository(tx)

		for _, src := range sources {
			srcID := src.ID
			dup := model.Message{
				MessageType:        src.MessageType,
				Content:            src.Content,
				FileName:           src.FileName,
				FilePath:           src.FilePath,
				UserID:             userID,
				ChatID:             toChatID,
				ForwardedMessageID: &srcID,
			}
			if err := messages.Create(ctx, &dup); err != nil {
				return err
			}
			forwarded = append(forwarded, dup)
		}

		if err := refreshLastMessage(ctx, tx, toChatID); err != nil {
			return err
		}
		if err := chats.Touch(ctx, toChatID); err != nil {
			return err
		}
		if err := statuses.IncrementUnread(ctx, toChatID, memberIDs(target), userID); err != nil {
			return err
		}
		return statuses.ResetForAuthor(ctx, userID, toChatID)
	})
	if err != nil {
		return nil, err
	}

	// Одно событие на всю пачку.
	s.fan.toAll(ctx, target, bus.EventForwardMessage, map[string]any{
		"chat_id":  toChatID,
		"messages": forwarded,
	})
	return forwarded, nil
}

func (s *messageService) List(ctx context.Context, userID, chatID, cursor string, limit int) (*repository.Page[model.Message], error) {
	if _, err := resolveChatMember(ctx, s.db, chatID, userID); err != nil {
		return nil, err
	}

	c, err := repository.DecodeCursor(cursor, repository.CursorKindMessages)
	if err != nil {
		return nil, err
	}
	limit = repository.ClampLimit(limit)

	msgs, err := repository.NewMessageRepository(s.db).List(ctx, chatID, c, limit+1)
	if err != nil {
		return nil, err
	}

	page := &repository.Page[model.Message]{Items: msgs}
	if len(msgs) > limit {
		page.Items = msgs[:limit]
		last := page.Items[limit-1]
		next := repository.EncodeCursor(repository.CursorKindMessages, last.CreatedAt, last.ID)
		page.NextCursor = &next
	}
	return page, nil
}

func (s *messageService) Range(ctx context.Context, userID, chatID, fromID, toID string) ([]model.Message, error) {
	if _, err := resolveChatMember(ctx, s.db, chatID, userID); err != nil {
		return nil, err
	}
	return repository.NewMessageRepository(s.db).Range(ctx, chatID, fromID, toID)
}

// refreshLastMessage пересчитывает chat.last_message_content из самого
// свежего живого текстового сообщения. Отсутствие такого — null.
func refreshLastMessage(ctx context.Context, tx *gorm.DB, chatID string) error {
	chats := repository.NewChatRepository(tx)

	newest, err := repository.NewMessageRepository(tx).NewestLiveText(ctx, chatID)
	if err != nil {
		return err
	}
	if newest == nil {
		return chats.SetLastMessageContent(ctx, chatID, nil)
	}
	preview := newest.Preview()
	return chats.SetLastMessageContent(ctx, chatID, &preview)
}

func memberIDs(chat *model.Chat) []string {
	ids := make([]string, 0, len(chat.Users))
	for i := range chat.Users {
		ids = append(ids, chat.Users[i].ID)
	}
	return ids
}
