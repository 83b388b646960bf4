package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authkeeper-server/internal/model"
)

func createUser(t *testing.T, s *Store, email string) model.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), model.User{Email: email, PasswordHash: "h"})
	require.NoError(t, err)
	return u
}

func TestUserRepository_CreateConflict(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u := createUser(t, s, "a@x.com")
	assert.Equal(t, model.RoleUser, u.Role)
	assert.False(t, u.CreatedAt.IsZero())

	_, err := s.Users().Create(ctx, model.User{Email: "a@x.com"})
	require.ErrorIs(t, err, model.ErrConflict)

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_DeletedAccountsAreInvisible(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Users().Create(ctx, model.User{Email: "gone@x.com", IsDeleted: true})
	require.NoError(t, err)

	_, err = s.Users().GetByEmail(ctx, "gone@x.com")
	require.ErrorIs(t, err, model.ErrNotFound)

	// The email is free again once the holder is deleted.
	createUser(t, s, "gone@x.com")
}

func TestUserRepository_ConsumeVerificationToken(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := createUser(t, s, "a@x.com")
	now := time.Now()

	require.NoError(t, s.Users().SetVerificationToken(ctx, u.ID, "hash", now.Add(time.Hour)))

	got, err := s.Users().ConsumeVerificationToken(ctx, "hash", now)
	require.NoError(t, err)
	assert.True(t, got.IsMailVerified)
	assert.Nil(t, got.VerificationTokenHash)
	assert.Nil(t, got.VerificationTokenExpiresAt)

	_, err = s.Users().ConsumeVerificationToken(ctx, "hash", now)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_ConsumePasswordResetToken_Expired(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := createUser(t, s, "a@x.com")
	now := time.Now()

	require.NoError(t, s.Users().SetPasswordResetToken(ctx, u.ID, "hash", now.Add(-time.Second)))

	_, err := s.Users().ConsumePasswordResetToken(ctx, "hash", "new", now)
	require.ErrorIs(t, err, model.ErrNotFound)

	stored, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h", stored.PasswordHash)
}

func TestRefreshTokenRepository_Ledger(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := createUser(t, s, "a@x.com")
	other := createUser(t, s, "b@x.com")

	first := model.RefreshToken{ID: uuid.New(), UserID: u.ID}
	second := model.RefreshToken{ID: uuid.New(), UserID: u.ID}
	foreign := model.RefreshToken{ID: uuid.New(), UserID: other.ID}
	for _, rt := range []model.RefreshToken{first, second, foreign} {
		require.NoError(t, s.RefreshTokens().Create(ctx, rt))
	}
	require.NoError(t, s.RefreshTokens().SetTokenHash(ctx, first.ID, "first"))

	require.NoError(t, s.RefreshTokens().MarkReplaced(ctx, first.ID, second.ID))
	require.ErrorIs(t, s.RefreshTokens().MarkReplaced(ctx, first.ID, second.ID), model.ErrNotFound)

	row, err := s.RefreshTokens().GetByIDForUpdate(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, row.Revoked)
	assert.Equal(t, second.ID, *row.ReplacedBy)

	n, err := s.RefreshTokens().RevokeByTokenHash(ctx, "first")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.RefreshTokens().RevokeAllByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	row, err = s.RefreshTokens().GetByIDForUpdate(ctx, foreign.ID)
	require.NoError(t, err)
	assert.False(t, row.Revoked)
}

func TestRefreshTokenRepository_CreateUnknownUser(t *testing.T) {
	s := NewStore()
	err := s.RefreshTokens().Create(context.Background(), model.RefreshToken{UserID: uuid.New()})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_WithinTx_RollsBack(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx model.Store) error {
		if _, err := tx.Users().Create(ctx, model.User{Email: "a@x.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_WithinTx_Nested(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx model.Store) error {
		return tx.WithinTx(ctx, func(ctx context.Context, inner model.Store) error {
			_, err := inner.Users().Create(ctx, model.User{Email: "a@x.com"})
			return err
		})
	})
	require.NoError(t, err)

	_, err = s.Users().GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
}

func TestStore_WithinTx_Serializes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := createUser(t, s, "a@x.com")
	first := model.RefreshToken{ID: uuid.New(), UserID: u.ID}
	require.NoError(t, s.RefreshTokens().Create(ctx, first))

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(ctx, func(ctx context.Context, tx model.Store) error {
				row, err := tx.RefreshTokens().GetByIDForUpdate(ctx, first.ID)
				if err != nil || row.Revoked {
					return err
				}
				next := model.RefreshToken{ID: uuid.New(), UserID: u.ID}
				if err := tx.RefreshTokens().Create(ctx, next); err != nil {
					return err
				}
				if err := tx.RefreshTokens().MarkReplaced(ctx, first.ID, next.ID); err != nil {
					return err
				}
				mu.Lock()
				winners++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}
