package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sebuszqo/FinanceTracker/internal/logging"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

const testSecret = "test-secret-with-enough-length"

// mockUserStore implements both user.Service and TwoFactorRepository over one map.
type mockUserStore struct {
	mu        sync.Mutex
	users     map[string]*user.User
	lookupErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*user.User)}
}

func (m *mockUserStore) add(t *testing.T, id, username, email, password string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &user.User{ID: id, Username: username, Email: email, PasswordHash: string(hash), CreatedAt: time.Now().UTC()}
	m.mu.Lock()
	m.users[id] = u
	m.mu.Unlock()
	return u
}

func (m *mockUserStore) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	panic("not used")
}

func (m *mockUserStore) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserStore) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == loginOrEmail || u.Email == strings.ToLower(loginOrEmail) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserStore) SaveTwoFactorSecret(ctx context.Context, userID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID].TwoFactorSecret = secret
	return nil
}

func (m *mockUserStore) GetTwoFactorSecret(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	if u.TwoFactorSecret == "" {
		return "", ErrTwoFactorNotSetUp
	}
	return u.TwoFactorSecret, nil
}

func (m *mockUserStore) EnableTwoFactor(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID].TwoFactorEnabled = true
	return nil
}

func (m *mockUserStore) DisableTwoFactor(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID].TwoFactorEnabled = false
	m.users[userID].TwoFactorSecret = ""
	return nil
}

func newTestService(store *mockUserStore) Service {
	return NewAuthService(store, store, NewSessionManager(time.Minute), NewJWTManager(testSecret, time.Hour), &Authenticator{}, logging.Discard())
}
