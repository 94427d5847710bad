package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/pkg/auth"
	"lastochka/messenger/internal/repository"
)

// Порог обновления last_online: чаще раза в три минуты презенс не пишем.
const presenceThreshold = 180 * time.Second

type userService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) UserService {
	return &userService{db: db, log: log}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if username == "" || email == "" {
		return nil, apperr.Unprocessable("username and email are required")
	}

	if err := auth.ValidatePassword(input.Password, username, email); err != nil {
		return nil, err
	}

	users := repository.NewUserRepository(s.db)

	exists, err := users.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict(apperr.ReasonUser, "username is already taken")
	}

	exists, err = users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict(apperr.ReasonUser, "email is already registered")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hash,
		IsActive: true,
	}
	user.EnsureDisplayName()

	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := repository.NewUserRepository(s.db).FindByUsername(ctx, username)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Unauthenticated("invalid username or password")
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, apperr.Unauthenticated("invalid username or password")
	}

	if err := s.checkAccountState(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	users := repository.NewUserRepository(s.db)

	user, err := users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(oldPassword, user.Password) {
		return apperr.Unauthenticated("wrong current password")
	}
	if err := auth.ValidatePassword(newPassword, user.Username, user.Email); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	user.Password = hash
	return users.Update(ctx, user)
}

func (s *userService) ResolvePrincipal(ctx context.Context, userID string) (*model.User, error) {
	user, err := repository.NewUserRepository(s.db).FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccountState(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) checkAccountState(user *model.User) error {
	if user.IsDeleted {
		return apperr.Forbidden(apperr.ReasonDeleted, "account is deleted")
	}
	if user.IsBanned {
		msg := "account is banned"
		if user.BanReason != nil {
			msg = msg + ": " + *user.BanReason
		}
		return apperr.Forbidden(apperr.ReasonBanned, msg)
	}
	return nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := repository.NewUserRepository(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.SanitizePassword()
	return user, nil
}

func (s *userService) SoftDelete(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("is_deleted", true).Error
}

func (s *userService) Recover(ctx context.Context, userID string) error {
	user, err := repository.NewUserRepository(s.db).FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsDeleted {
		return apperr.BadRequest(apperr.ReasonNotDeletedRecovery, "account is not deleted")
	}
	user.IsDeleted = false
	return repository.NewUserRepository(s.db).Update(ctx, user)
}

// TouchPresence продвигает last_online раз в presenceThreshold. Сбой здесь
// никогда не роняет запрос.
func (s *userService) TouchPresence(ctx context.Context, user *model.User) error {
	if user.LastOnline != nil && time.Since(*user.LastOnline) < presenceThreshold {
		return nil
	}
	if err := repository.NewUserRepository(s.db).UpdateLastOnline(ctx, user.ID); err != nil {
		s.log.Warn("failed to update presence",
			zap.String("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}
