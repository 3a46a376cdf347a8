package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/repository"
	"github.com/iliyamo/task-tracker/internal/utils"
)

// UserStore is the credential store used by AuthService.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// TokenIssuer signs bearer tokens.  Ready reports whether issuing can
// succeed at all, so registration can fail before it writes anything.
type TokenIssuer interface {
	Ready() error
	Issue(userID uint64, email string) (string, error)
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  model.UserSummary `json:"user"`
	Token string            `json:"token"`
}

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	Email    string
	Password string
	Name     *string
}

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	users      UserStore
	tokens     TokenIssuer
	bcryptCost int
	log        *slog.Logger
}

// NewAuthService wires an AuthService.  A nil logger falls back to slog's
// default.
func NewAuthService(users UserStore, tokens TokenIssuer, bcryptCost int, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, log: log.With("component", "auth")}
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if !validEmail(email) {
		return AuthResult{}, invalidInput("A valid email address is required")
	}
	if err := s.tokens.Ready(); err != nil {
		return AuthResult{}, s.tokenError(err)
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		s.log.ErrorContext(ctx, "email lookup failed", "err", err)
		return AuthResult{}, internal("registration", err)
	}
	if exists {
		return AuthResult{}, &Error{Kind: ErrConflict, Message: "Email already registered"}
	}
	if utf8.RuneCountInString(in.Password) < utils.MinPasswordLen {
		return AuthResult{}, invalidInput("Password must be at least %d characters", utils.MinPasswordLen)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return AuthResult{}, invalidInput("Password must be at most 72 bytes")
		}
		s.log.ErrorContext(ctx, "password hashing failed", "err", err)
		return AuthResult{}, internal("registration", err)
	}

	u := model.User{Email: email, PasswordHash: hash, Name: trimmedOrNil(in.Name)}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, &Error{Kind: ErrConflict, Message: "Email already registered"}
		}
		s.log.ErrorContext(ctx, "user insert failed", "err", err)
		return AuthResult{}, internal("registration", err)
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return AuthResult{}, s.tokenError(err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	return AuthResult{User: u.Summary(), Token: token}, nil
}

// Login verifies credentials and issues a fresh token.  An unknown email and
// a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		utils.BurnPasswordCheck(password)
		return AuthResult{}, invalidCredentials()
	case err != nil:
		s.log.ErrorContext(ctx, "user lookup failed", "err", err)
		return AuthResult{}, internal("login", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, invalidCredentials()
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return AuthResult{}, s.tokenError(err)
	}
	return AuthResult{User: u.Summary(), Token: token}, nil
}

func (s *AuthService) tokenError(err error) error {
	if errors.Is(err, utils.ErrMissingSecret) {
		s.log.Error("token signing secret is not configured")
		return &Error{Kind: ErrConfiguration, Message: "authentication is not configured", Err: err}
	}
	s.log.Error("token issuance failed", "err", err)
	return internal("token issuance", err)
}

func invalidCredentials() error {
	return &Error{Kind: ErrUnauthorized, Message: "Invalid credentials"}
}

// validEmail accepts a bare addr-spec such as "a@b.example".
func validEmail(s string) bool {
	if s == "" || len(s) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
