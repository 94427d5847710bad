package service

import (
	"context"

	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/repository"
)

type blackListService struct {
	db *gorm.DB
}

func NewBlackListService(db *gorm.DB) BlackListService {
	return &blackListService{db: db}
}

func (s *blackListService) Block(ctx context.Context, ownerID, userID string) error {
	if ownerID == userID {
		return apperr.BadRequest(apperr.ReasonSelfBlock, "cannot block yourself")
	}
	if _, err := repository.NewUserRepository(s.db).FindByID(ctx, userID); err != nil {
		return err
	}

	blacklist := repository.NewBlackListRepository(s.db)

	exists, err := blacklist.Exists(ctx, ownerID, userID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.BadRequest(apperr.ReasonAlreadyBlocked, "user is already blocked")
	}
	return blacklist.Add(ctx, ownerID, userID)
}

func (s *blackListService) Unblock(ctx context.Context, ownerID, userID string) error {
	return repository.NewBlackListRepository(s.db).Remove(ctx, ownerID, userID)
}

func (s *blackListService) List(ctx context.Context, ownerID, cursor string, limit int) (*repository.Page[model.User], error) {
	c, err := repository.DecodeCursor(cursor, repository.CursorKindUsers)
	if err != nil {
		return nil, err
	}
	limit = repository.ClampLimit(limit)

	users, err := repository.NewBlackListRepository(s.db).ListBlocked(ctx, ownerID, c, limit+1)
	if err != nil {
		return nil, err
	}

	page := &repository.Page[model.User]{Items: users}
	if len(users) > limit {
		page.Items = users[:limit]
		last := page.Items[limit-1]
		next := repository.EncodeCursor(repository.CursorKindUsers, last.CreatedAt, last.ID)
		page.NextCursor = &next
	}

	for i := range page.Items {
		page.Items[i].SanitizePassword()
	}
	return page, nil
}
