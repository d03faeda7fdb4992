package user

import (
	"context"
	"fmt"
	"myUserCatalog/domain"
	"myUserCatalog/pkg/logger"
	"myUserCatalog/pkg/metrics"
	"myUserCatalog/pkg/utils"
	"strconv"
	"time"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User, addresses []domain.Address) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User, fields domain.UserFields, addresses []domain.Address) error
	Delete(ctx context.Context, user *domain.User) error
}

type TokenIssuer interface {
	GenerateJWT(userID, role string) (string, error)
	TTL() time.Duration
}

// TokenStore keeps issued tokens so they can be revoked before they expire.
type TokenStore interface {
	StoreToken(ctx context.Context, userID uint, token string, ttl time.Duration) error
	RevokeUserTokens(ctx context.Context, userID uint) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, message string) error
}

const (
	SubjectPasswordReset   = "Your password has been reset"
	EmailBodyPasswordReset = `Hello %v,</br></br>The password for your account was changed on %v.</br>If this was not you, contact support immediately.`
)

type userService struct {
	userRepo  UserRepository
	tokens    TokenIssuer
	store     TokenStore
	notifRepo NotificationRepository
}

type Option func(*userService)

func WithTokenStore(store TokenStore) Option {
	return func(s *userService) {
		s.store = store
	}
}

func WithNotification(notifRepo NotificationRepository) Option {
	return func(s *userService) {
		s.notifRepo = notifRepo
	}
}

func NewUserService(userRepo UserRepository, tokens TokenIssuer, opts ...Option) *userService {
	s := &userService{
		userRepo: userRepo,
		tokens:   tokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EmailTaken reports whether any stored user, deleted ones included, owns
// email.
func (s *userService) EmailTaken(ctx context.Context, email string) (bool, error) {
	taken, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		logger.Error("Failed to look up email", "error", err)
		return false, err
	}
	return taken, nil
}

// Register stores a new user with the plain password in user.Password and
// returns an access token for it.
func (s *userService) Register(ctx context.Context, user *domain.User, addresses []domain.Address) (string, error) {
	taken, err := s.EmailTaken(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", domain.ErrEmailTaken
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(passwordHash)
	user.Role = domain.RoleUser

	if err := s.userRepo.Create(ctx, user, addresses); err != nil {
		logger.Error("Failed to create new user", "error", err)
		return "", err
	}
	metrics.UsersRegistered.Inc()

	return s.issueToken(ctx, user)
}

func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Failed to find user by email", "error", err)
		return "", err
	}

	if user == nil || !utils.CheckPassword(password, user.Password) {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return "", err
	}

	metrics.LoginAttempts.WithLabelValues("accepted").Inc()
	return token, nil
}

func (s *userService) issueToken(ctx context.Context, user *domain.User) (string, error) {
	token, err := s.tokens.GenerateJWT(strconv.FormatUint(uint64(user.ID), 10), user.Role)
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		return "", domain.ErrTokenIssue
	}

	if s.store != nil {
		if err := s.store.StoreToken(ctx, user.ID, token, s.tokens.TTL()); err != nil {
			logger.Error("Failed to store token", "user_id", user.ID, "error", err)
			return "", domain.ErrTokenIssue
		}
	}

	return token, nil
}

// ResetPassword replaces the password of the user owning email.
func (s *userService) ResetPassword(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Failed to find user by email", "error", err)
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	hashed := string(passwordHash)
	if err := s.userRepo.Update(ctx, user, domain.UserFields{Password: &hashed}, nil); err != nil {
		logger.Error("Failed to reset password", "user_id", user.ID, "error", err)
		return nil, err
	}

	if s.notifRepo != nil {
		body := fmt.Sprintf(EmailBodyPasswordReset, user.Name, user.UpdatedAt.Format(time.RFC1123))
		if err := s.notifRepo.SendEmail(ctx, user.Name, user.Email, SubjectPasswordReset, body); err != nil {
			logger.Warn("Failed to send password reset email", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

// GetUserByID retrieves a user with its addresses
func (s *userService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", "id", id, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	return user, nil
}

// UpdateUser merges fields into the stored user. fields.Password is plain
// text and is hashed here. A non-nil addresses slice replaces the address set.
func (s *userService) UpdateUser(ctx context.Context, id uint, fields domain.UserFields, addresses []domain.Address) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fields.Password != nil {
		passwordHash, err := utils.HashPassword(*fields.Password)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hashed := string(passwordHash)
		fields.Password = &hashed
	}

	if err := s.userRepo.Update(ctx, user, fields, addresses); err != nil {
		logger.Error("Failed to update user", "id", id, "error", err)
		return nil, err
	}

	return user, nil
}

// DeleteUser soft deletes a user, drops its addresses and revokes its tokens.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, user); err != nil {
		logger.Error("Failed to delete user", "id", id, "error", err)
		return err
	}

	if s.store != nil {
		if err := s.store.RevokeUserTokens(ctx, id); err != nil {
			logger.Warn("Failed to revoke user tokens", "user_id", id, "error", err)
		}
	}

	return nil
}
