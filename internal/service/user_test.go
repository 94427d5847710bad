package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastochka/messenger/internal/apperr"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users().Register(t.Context(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cure-pass!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.DisplayName)

	logged, err := env.users().Login(t.Context(), "alice", "s3cure-pass!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	// Имя пользователя сравнивается без учёта регистра.
	_, err = env.users().Login(t.Context(), "ALICE", "s3cure-pass!")
	require.NoError(t, err)

	_, err = env.users().Login(t.Context(), "alice", "wrong-pass1!")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestRegisterDuplicateUsernameIgnoringCase(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users().Register(t.Context(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cure-pass!",
	})
	require.NoError(t, err)

	_, err = env.users().Register(t.Context(), RegisterInput{
		Username: "Alice", Email: "other@example.com", Password: "s3cure-pass!",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterWeakPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users().Register(t.Context(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "password",
	})
	require.Error(t, err)
	assert.Equal(t, "password-policy/no-digit", apperr.ReasonOf(err))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users().Register(t.Context(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cure-pass!",
	})
	require.NoError(t, err)

	err = env.users().ChangePassword(t.Context(), user.ID, "wrong-pass1!", "new-pass-42!")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	require.NoError(t, env.users().ChangePassword(t.Context(), user.ID, "s3cure-pass!", "new-pass-42!"))

	_, err = env.users().Login(t.Context(), "alice", "new-pass-42!")
	require.NoError(t, err)
}

func TestPrincipalGateRejectsDeletedAndBanned(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")

	_, err := env.users().ResolvePrincipal(t.Context(), alice.ID)
	require.NoError(t, err)

	require.NoError(t, env.users().SoftDelete(t.Context(), alice.ID))
	_, err = env.users().ResolvePrincipal(t.Context(), alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonDeleted, apperr.ReasonOf(err))

	require.NoError(t, env.users().Recover(t.Context(), alice.ID))
	_, err = env.users().ResolvePrincipal(t.Context(), alice.ID)
	require.NoError(t, err)

	// Повторное восстановление активного аккаунта отклоняется.
	err = env.users().Recover(t.Context(), alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonNotDeletedRecovery, apperr.ReasonOf(err))

	reason := "spam"
	require.NoError(t, env.db.Model(alice).
		Updates(map[string]any{"is_banned": true, "ban_reason": &reason}).Error)
	_, err = env.users().ResolvePrincipal(t.Context(), alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonBanned, apperr.ReasonOf(err))
}

func TestTouchPresenceThreshold(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice")

	// Первый запрос двигает last_online.
	require.NoError(t, env.users().TouchPresence(t.Context(), alice))

	var stored struct{ LastOnline *string }
	require.NoError(t, env.db.Table("users").
		Select("last_online").Where("id = ?", alice.ID).Scan(&stored).Error)
	assert.NotNil(t, stored.LastOnline)
}
