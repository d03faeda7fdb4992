package user

import (
	"context"
	"errors"
	"myUserCatalog/domain"
	"myUserCatalog/internal/repository/memory"
	"myUserCatalog/pkg/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenStore struct {
	stored  map[string]uint
	revoked []uint
	err     error
}

func (f *fakeTokenStore) StoreToken(_ context.Context, userID uint, token string, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	if f.stored == nil {
		f.stored = make(map[string]uint)
	}
	f.stored[token] = userID
	return nil
}

func (f *fakeTokenStore) RevokeUserTokens(_ context.Context, userID uint) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendEmail(_ context.Context, _, toEmail, _, _ string) error {
	f.sent = append(f.sent, toEmail)
	return f.err
}

type brokenIssuer struct{}

func (brokenIssuer) GenerateJWT(string, string) (string, error) { return "", errors.New("no key") }
func (brokenIssuer) TTL() time.Duration { return time.Minute }

func newService(t *testing.T, opts ...Option) (*userService, *memory.UserRepository, *utils.JWTManager) {
	t.Helper()
	repo := memory.NewUserRepository()
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	return NewUserService(repo, jwt, opts...), repo, jwt
}

func register(t *testing.T, svc *userService, email string, addresses []domain.Address) *domain.User {
	t.Helper()
	u := &domain.User{Name: "John", Email: email, Password: "password123"}
	_, err := svc.Register(context.Background(), u, addresses)
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	store := &fakeTokenStore{}
	svc, repo, jwt := newService(t, WithTokenStore(store))

	u := &domain.User{Name: "John", Email: "john@example.com", Password: "password123"}
	token, err := svc.Register(context.Background(), u, []domain.Address{{Address: "Main st"}})
	require.NoError(t, err)

	claims, err := jwt.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, uint(1), store.stored[token])

	stored, ok := repo.Stored(u.ID)
	require.True(t, ok)
	assert.NotEqual(t, "password123", stored.Password)
	assert.True(t, utils.CheckPassword("password123", stored.Password))
	assert.Len(t, repo.Addresses(u.ID), 1)
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc, "john@example.com", nil)

	_, err := svc.Register(context.Background(), &domain.User{Name: "Jane", Email: "john@example.com", Password: "password123"}, nil)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	taken, err := svc.EmailTaken(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestRegister_EmailOfDeletedUser(t *testing.T) {
	svc, _, _ := newService(t)
	u := register(t, svc, "john@example.com", nil)
	require.NoError(t, svc.DeleteUser(context.Background(), u.ID))

	taken, err := svc.EmailTaken(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = svc.Register(context.Background(), &domain.User{Name: "John", Email: "john@example.com", Password: "password123"}, nil)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegister_TokenStoreFailure(t *testing.T) {
	svc, _, _ := newService(t, WithTokenStore(&fakeTokenStore{err: errors.New("redis down")}))

	_, err := svc.Register(context.Background(), &domain.User{Name: "John", Email: "john@example.com", Password: "password123"}, nil)
	assert.ErrorIs(t, err, domain.ErrTokenIssue)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc, "john@example.com", nil)

	token, err := svc.Login(context.Background(), "john@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login(context.Background(), "john@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_TokenIssueFailure(t *testing.T) {
	repo := memory.NewUserRepository()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &domain.User{Name: "John", Email: "john@example.com", Password: string(hash)}, nil))

	svc := NewUserService(repo, brokenIssuer{})
	_, err = svc.Login(context.Background(), "john@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrTokenIssue)
}

func TestResetPassword(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("mailjet down")}
	svc, _, _ := newService(t, WithNotification(notifier))
	register(t, svc, "john@example.com", nil)

	u, err := svc.ResetPassword(context.Background(), "john@example.com", "new-password")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", u.Email)
	assert.Equal(t, []string{"john@example.com"}, notifier.sent)

	_, err = svc.Login(context.Background(), "john@example.com", "new-password")
	assert.NoError(t, err)

	_, err = svc.ResetPassword(context.Background(), "nobody@example.com", "new-password")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetUserByID_NotFound(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.GetUserByID(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateUser(t *testing.T) {
	svc, repo, _ := newService(t)
	u := register(t, svc, "john@example.com", []domain.Address{{Address: "a"}, {Address: "b"}})

	name := "Johnny"
	password := "another-password"
	updated, err := svc.UpdateUser(context.Background(), u.ID, domain.UserFields{Name: &name, Password: &password}, []domain.Address{{Address: "c"}})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.Name)

	addresses := repo.Addresses(u.ID)
	require.Len(t, addresses, 1)
	assert.Equal(t, "c", addresses[0].Address)

	stored, _ := repo.Stored(u.ID)
	assert.True(t, utils.CheckPassword("another-password", stored.Password))
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc, repo, _ := newService(t)
	register(t, svc, "john@example.com", nil)

	name := "Ghost"
	_, err := svc.UpdateUser(context.Background(), 42, domain.UserFields{Name: &name}, nil)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	stored, _ := repo.Stored(1)
	assert.Equal(t, "John", stored.Name)
}

func TestDeleteUser(t *testing.T) {
	store := &fakeTokenStore{}
	svc, repo, _ := newService(t, WithTokenStore(store))
	u := register(t, svc, "john@example.com", []domain.Address{{Address: "a"}, {Address: "b"}, {Address: "c"}})

	require.NoError(t, svc.DeleteUser(context.Background(), u.ID))
	assert.Empty(t, repo.Addresses(u.ID))
	assert.Equal(t, []uint{u.ID}, store.revoked)

	err := svc.DeleteUser(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
