package service

import (
	"context"

	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/repository"
)

// resolveChatMember загружает чат с участниками и проверяет членство.
// Это единственный путь, которым сервисы получают чат: дальше по нему же
// идёт рассылка.
func resolveChatMember(ctx context.Context, db *gorm.DB, chatID, userID string) (*model.Chat, error) {
	chat, err := repository.NewChatRepository(db).GetWithUsers(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasUser(userID) {
		return nil, apperr.Forbidden(apperr.ReasonNotMember, "you are not a member of this chat")
	}
	return chat, nil
}

// directWriteGate — проверки перед любой записью в личный чат: второй
// участник активен, и ни одна из сторон не в чёрном списке другой.
func directWriteGate(ctx context.Context, db *gorm.DB, chat *model.Chat, senderID string) error {
	if chat.ChatType != model.ChatTypeDirect {
		return nil
	}

	other := chat.OtherUser(senderID)
	if other == nil {
		return apperr.NotFound(apperr.ReasonUser, "chat recipient not found")
	}
	if other.IsDeleted {
		return apperr.Forbidden(apperr.ReasonDeleted, "recipient account is deleted")
	}
	if other.IsBanned {
		return apperr.Forbidden(apperr.ReasonBanned, "recipient account is banned")
	}

	senderBlocks, recipientBlocks, err := repository.NewBlackListRepository(db).Blocks(ctx, senderID, other.ID)
	if err != nil {
		return err
	}
	if senderBlocks {
		return apperr.Forbidden(apperr.ReasonBlockedRecipient, "you have blocked the recipient")
	}
	if recipientBlocks {
		return apperr.Forbidden(apperr.ReasonBlockedByRecipient, "the recipient has blocked you")
	}
	return nil
}
