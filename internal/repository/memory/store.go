// Package memory implements model.Store in process memory. Transactions are
// serialized with a single mutex and roll back to a snapshot on error.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper-server/internal/model"
)

var (
	_ model.Store             = (*Store)(nil)
	_ model.UserStore         = (*UserRepository)(nil)
	_ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)
)

type tables struct {
	users  map[uuid.UUID]model.User
	tokens map[uuid.UUID]model.RefreshToken
}

// Store is an in-memory model.Store.
type Store struct {
	mu   *sync.Mutex
	t    *tables
	inTx bool
}

func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		t: &tables{
			users:  make(map[uuid.UUID]model.User),
			tokens: make(map[uuid.UUID]model.RefreshToken),
		},
	}
}

func (s *Store) Users() model.UserStore {
	return &UserRepository{s: s}
}

func (s *Store) RefreshTokens() model.RefreshTokenStore {
	return &RefreshTokenRepository{s: s}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx model.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := maps.Clone(s.t.users)
	tokens := maps.Clone(s.t.tokens)

	if err := fn(ctx, &Store{mu: s.mu, t: s.t, inTx: true}); err != nil {
		s.t.users = users
		s.t.tokens = tokens
		return err
	}
	return nil
}

// Ping reports whether the store can serve requests.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// UserRepository is the account table of a Store.
type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	defer r.s.lock()()

	for _, u := range r.s.t.users {
		if u.Email == email && !u.IsDeleted {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	defer r.s.lock()()

	u, ok := r.s.t.users[id]
	if !ok || u.IsDeleted {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	defer r.s.lock()()

	users := make([]model.User, 0, len(r.s.t.users))
	for _, u := range r.s.t.users {
		if !u.IsDeleted {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	defer r.s.lock()()

	for _, u := range r.s.t.users {
		if u.Email == user.Email && !u.IsDeleted {
			return model.User{}, model.ErrConflict
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	r.s.t.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	defer r.s.lock()()

	u, ok := r.s.t.users[id]
	if !ok || u.IsDeleted {
		return model.ErrNotFound
	}
	u.VerificationTokenHash = &tokenHash
	u.VerificationTokenExpiresAt = &expiresAt
	u.UpdatedAt = time.Now()
	r.s.t.users[id] = u
	return nil
}

func (r *UserRepository) SetPasswordResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	defer r.s.lock()()

	u, ok := r.s.t.users[id]
	if !ok || u.IsDeleted {
		return model.ErrNotFound
	}
	u.PasswordResetTokenHash = &tokenHash
	u.PasswordResetTokenExpiresAt = &expiresAt
	u.UpdatedAt = time.Now()
	r.s.t.users[id] = u
	return nil
}

func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (model.User, error) {
	defer r.s.lock()()

	for id, u := range r.s.t.users {
		if u.IsDeleted || !tokenMatches(u.VerificationTokenHash, u.VerificationTokenExpiresAt, tokenHash, now) {
			continue
		}
		u.IsMailVerified = true
		u.VerificationTokenHash = nil
		u.VerificationTokenExpiresAt = nil
		u.UpdatedAt = time.Now()
		r.s.t.users[id] = u
		return u, nil
	}
	return model.User{}, model.ErrNotFound
}

func (r *UserRepository) ConsumePasswordResetToken(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (model.User, error) {
	defer r.s.lock()()

	for id, u := range r.s.t.users {
		if u.IsDeleted || !tokenMatches(u.PasswordResetTokenHash, u.PasswordResetTokenExpiresAt, tokenHash, now) {
			continue
		}
		u.PasswordHash = passwordHash
		u.PasswordResetTokenHash = nil
		u.PasswordResetTokenExpiresAt = nil
		u.UpdatedAt = time.Now()
		r.s.t.users[id] = u
		return u, nil
	}
	return model.User{}, model.ErrNotFound
}

func tokenMatches(stored *string, expiresAt *time.Time, presented string, now time.Time) bool {
	return stored != nil && expiresAt != nil && *stored == presented && expiresAt.After(now)
}

// RefreshTokenRepository is the session ledger of a Store.
type RefreshTokenRepository struct {
	s *Store
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	defer r.s.lock()()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if _, ok := r.s.t.users[token.UserID]; !ok {
		return model.ErrNotFound
	}
	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now
	r.s.t.tokens[token.ID] = token
	return nil
}

func (r *RefreshTokenRepository) SetTokenHash(ctx context.Context, id uuid.UUID, tokenHash string) error {
	defer r.s.lock()()

	rt, ok := r.s.t.tokens[id]
	if !ok {
		return model.ErrNotFound
	}
	rt.TokenHash = tokenHash
	rt.UpdatedAt = time.Now()
	r.s.t.tokens[id] = rt
	return nil
}

// GetByIDForUpdate needs no row lock here: every transaction holds the store mutex.
func (r *RefreshTokenRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (model.RefreshToken, error) {
	defer r.s.lock()()

	rt, ok := r.s.t.tokens[id]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	return rt, nil
}

func (r *RefreshTokenRepository) MarkReplaced(ctx context.Context, id uuid.UUID, replacedBy uuid.UUID) error {
	defer r.s.lock()()

	rt, ok := r.s.t.tokens[id]
	if !ok || rt.Revoked {
		return model.ErrNotFound
	}
	if _, ok := r.s.t.tokens[replacedBy]; !ok {
		return model.ErrNotFound
	}
	rt.Revoked = true
	rt.ReplacedBy = &replacedBy
	rt.UpdatedAt = time.Now()
	r.s.t.tokens[id] = rt
	return nil
}

func (r *RefreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) (int64, error) {
	defer r.s.lock()()

	return r.revokeWhere(func(rt model.RefreshToken) bool { return rt.TokenHash == tokenHash }), nil
}

func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	defer r.s.lock()()

	return r.revokeWhere(func(rt model.RefreshToken) bool { return rt.UserID == userID }), nil
}

func (r *RefreshTokenRepository) revokeWhere(match func(model.RefreshToken) bool) int64 {
	var n int64
	now := time.Now()
	for id, rt := range r.s.t.tokens {
		if rt.Revoked || !match(rt) {
			continue
		}
		rt.Revoked = true
		rt.UpdatedAt = now
		r.s.t.tokens[id] = rt
		n++
	}
	return n
}
