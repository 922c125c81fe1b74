package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/service/auth"
	"github.com/phrazzld/studytrack-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memUsers implements store.UserStore.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]domain.User{}}
}

func (s *memUsers) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.byID {
		if strings.EqualFold(other.Email, u.Email) {
			return store.ErrEmailExists
		}
	}
	s.nextID++
	u.ID = s.nextID
	s.byID[u.ID] = *u
	return nil
}

func (s *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUsers) WithTx(*sql.Tx) store.UserStore { return s }

func newUserEnv() (UserService, *memUsers) {
	users := newMemUsers()
	hasher := auth.NewBcrypt(bcrypt.MinCost)
	clock := newTestClock(time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC))
	return NewUserService(users, hasher, hasher, clock.Now, nil), users
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	svc, users := newUserEnv()
	ctx := context.Background()

	u, err := svc.Register(ctx, " Ana@Example.com ", "long-enough-password")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Empty(t, u.Password)

	stored := users.byID[u.ID]
	assert.NotEqual(t, "long-enough-password", stored.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("long-enough-password")))

	_, err = svc.Register(ctx, "ana@example.com", "another-long-password")
	assert.ErrorIs(t, err, store.ErrEmailExists)

	_, err = svc.Register(ctx, "bruno@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	_, err = svc.Register(ctx, "not-an-email", "long-enough-password")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()
	svc, _ := newUserEnv()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ana@example.com", "long-enough-password")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "ANA@example.com", "long-enough-password")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong-password-here")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "long-enough-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := svc.Get(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
