package repository

import (
	"context"

	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
)

type BlackListRepository interface {
	Add(ctx context.Context, ownerID, blockedID string) error
	Remove(ctx context.Context, ownerID, blockedID string) error
	Exists(ctx context.Context, ownerID, blockedID string) (bool, error)
	// Blocks — симметричная проверка обоих чёрных списков за один запрос.
	Blocks(ctx context.Context, aID, bID string) (aBlocksB bool, bBlocksA bool, err error)
	ListBlocked(ctx context.Context, ownerID string, cursor *Cursor, limit int) ([]model.User, error)
}

type blackListRepository struct {
	db *gorm.DB
}

func NewBlackListRepository(db *gorm.DB) BlackListRepository {
	return &blackListRepository{db: db}
}

func (r *blackListRepository) Add(ctx context.Context, ownerID, blockedID string) error {
	return r.db.WithContext(ctx).Create(&model.BlackList{
		OwnerID:   ownerID,
		BlockedID: blockedID,
	}).Error
}

func (r *blackListRepository) Remove(ctx context.Context, ownerID, blockedID string) error {
	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND blocked_id = ?", ownerID, blockedID).
		Delete(&model.BlackList{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(apperr.ReasonUser, "user is not in black list")
	}
	return nil
}

func (r *blackListRepository) Exists(ctx context.Context, ownerID, blockedID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BlackList{}).
		Where("owner_id = ? AND blocked_id = ?", ownerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

func (r *blackListRepository) Blocks(ctx context.Context, aID, bID string) (bool, bool, error) {
	var rows []model.BlackList
	err := r.db.WithContext(ctx).
		Where("(owner_id = ? AND blocked_id = ?) OR (owner_id = ? AND blocked_id = ?)",
			aID, bID, bID, aID).
		Find(&rows).Error
	if err != nil {
		return false, false, err
	}

	var aBlocksB, bBlocksA bool
	for _, row := range rows {
		if row.OwnerID == aID {
			aBlocksB = true
		} else {
			bBlocksA = true
		}
	}
	return aBlocksB, bBlocksA, nil
}

func (r *blackListRepository) ListBlocked(ctx context.Context, ownerID string, cursor *Cursor, limit int) ([]model.User, error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN black_lists bl ON bl.blocked_id = users.id AND bl.owner_id = ?", ownerID)

	if cursor != nil {
		q = q.Where("(users.created_at < ?) OR (users.created_at = ? AND users.id < ?)",
			cursor.T, cursor.T, cursor.ID)
	}

	var users []model.User
	err := q.Order("users.created_at DESC, users.id DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
