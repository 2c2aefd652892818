package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const resetTokenTTL = time.Hour

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrResetTokenInvalid  = errors.New("invalid or expired token")
)

// UserStore is the persistence contract for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (storage.User, error)
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (storage.User, error)
	SetResetToken(ctx context.Context, userID int64, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// Notifier queues outbound emails. Publishing is best-effort
// everywhere in this service: a failure is logged and swallowed, it
// never fails the account operation that triggered it.
type Notifier interface {
	PublishNotification(ctx context.Context, n *amqp.Notification) error
}

// AuthService implements registration, login and the password reset
// flow.
type AuthService struct {
	store     UserStore
	tokens    *auth.TokenManager
	notifier  Notifier
	clientURL string
	logger    *log.Logger
}

func NewAuthService(store UserStore, tokens *auth.TokenManager, notifier Notifier, clientURL string, logger *log.Logger) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		notifier:  notifier,
		clientURL: clientURL,
		logger:    logger.WithComponent(log.ComponentAuth),
	}
}

// Register creates an account, queues the welcome email and returns
// the user with a fresh access token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (storage.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return storage.User{}, "", ErrMissingFields
	}
	if err := auth.ValidatePassword(password); err != nil {
		return storage.User{}, "", err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return storage.User{}, "", ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return storage.User{}, "", fmt.Errorf("check existing user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return storage.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, name, email, hash)
	if err != nil {
		return storage.User{}, "", fmt.Errorf("create user: %w", err)
	}

	s.notify(ctx, amqp.NewWelcomeNotification(user.Email, user.Name))

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return storage.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, user.ID, log.FieldEmail, user.Email)
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh access
// token. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (storage.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, storage.ErrNotFound) {
		return storage.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return storage.User{}, "", fmt.Errorf("look up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return storage.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return storage.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, user.ID)
	return user, token, nil
}

// ForgotPassword stores a one-hour reset token and queues the reset
// email. It succeeds regardless of whether the email exists so the
// endpoint never reveals account presence.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}

	token, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.store.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.notify(ctx, amqp.NewPasswordResetNotification(user.Email, token))
	s.logger.InfoContext(ctx, "Password reset link generated",
		log.FieldUserID, user.ID,
		"reset_url", fmt.Sprintf("%s/reset-password?token=%s", s.clientURL, token))
	return nil
}

// ResetPassword consumes an unexpired reset token and replaces the
// password. The token is single use: storing the new hash clears it.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return ErrMissingFields
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.store.GetUserByResetToken(ctx, token, time.Now())
	if errors.Is(err, storage.ErrNotFound) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("look up reset token: %w", err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "Password reset completed", log.FieldUserID, user.ID)
	return nil
}

func (s *AuthService) notify(ctx context.Context, n *amqp.Notification) {
	if s.notifier == nil {
		s.logger.WarnContext(ctx, "Notifier not configured, skipping notification", "kind", n.Kind)
		return
	}
	if err := s.notifier.PublishNotification(ctx, n); err != nil {
		// Best-effort only: the triggering operation already succeeded.
		s.logger.ErrorContext(ctx, "Failed to publish notification",
			"kind", n.Kind, log.FieldEmail, n.Email, log.FieldError, err)
	}
}
