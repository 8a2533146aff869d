package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/todo-service/internal/model"
	"github.com/iliyamo/todo-service/internal/queue"
	"github.com/iliyamo/todo-service/internal/repository"
	"github.com/iliyamo/todo-service/internal/utils"
)

// bcrypt ignores input past 72 bytes; longer passwords are rejected rather
// than silently truncated.
const maxPasswordBytes = 72

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

// AuthConfig is the process-wide credential policy, built once at startup.
type AuthConfig struct {
	Secret            string
	AccessTTL         time.Duration
	BcryptCost        int
	PasswordMinLength int
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Identity is what a verified token proves: the caller's user id, plus the
// token's own id and expiry for revocation.
type Identity struct {
	UserID    uint64
	TokenID   string
	ExpiresAt time.Time
}

// AuthService registers users, checks credentials and issues and verifies
// bearer tokens.
type AuthService struct {
	cfg      AuthConfig
	users    UserStore
	denylist Denylist
	events   EventPublisher
	log      *slog.Logger
}

// NewAuthService wires the credential service.  denylist and events may be
// nil, which disables token revocation and activity events respectively.
func NewAuthService(cfg AuthConfig, users UserStore, denylist Denylist, events EventPublisher, log *slog.Logger) *AuthService {
	if cfg.PasswordMinLength < 1 {
		cfg.PasswordMinLength = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{cfg: cfg, users: users, denylist: denylist, events: events, log: log}
}

// Register validates input, hashes the password and stores a new user.
// Usernames and emails are stored lowercased, so both compare
// case-insensitively in every backend.  Duplicate usernames or emails yield
// a Conflict FieldError.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = normalizeUsername(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if !usernamePattern.MatchString(username) {
		return nil, invalid("username", "username must be 3-50 letters, digits, '_', '-' or '.'")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < s.cfg.PasswordMinLength {
		if s.cfg.PasswordMinLength == 1 {
			return nil, invalid("password", "password is required")
		}
		return nil, invalid("password", fmt.Sprintf("password must be at least %d characters", s.cfg.PasswordMinLength))
	}
	if len(password) > maxPasswordBytes {
		return nil, invalid("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, conflict("username", "username already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if taken {
		return nil, conflict("email", "email already registered")
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		// The pre-checks above race with concurrent registrations; the
		// unique keys are authoritative.
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, conflict("username", "username already registered")
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, conflict("email", "email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	emit(ctx, s.events, s.log, queue.NewActivityEvent(queue.UserRegistered, u.ID))
	return u, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return invalid("email", "email is not a valid address")
	}
	return nil
}

// Login checks a username/password pair and mints an access token.  Unknown
// users and wrong passwords fail identically with ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (Token, error) {
	username = normalizeUsername(username)

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnPasswordCheck(password)
			return Token{}, ErrUnauthorized
		}
		return Token{}, fmt.Errorf("lookup user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Token{}, ErrUnauthorized
	}

	access, err := utils.NewAccessToken(s.cfg.Secret, u.ID, s.cfg.AccessTTL)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	return Token{AccessToken: access.Token, TokenType: "bearer", ExpiresAt: access.Exp}, nil
}

// Verify decodes and checks a bearer token.  Bad signatures, malformed
// payloads, past expiry and revoked tokens all yield ErrUnauthorized.
func (s *AuthService) Verify(ctx context.Context, raw string) (Identity, error) {
	claims, err := utils.ParseAccessToken(s.cfg.Secret, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if s.denylist != nil && claims.TokenID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			s.log.ErrorContext(ctx, "denylist lookup failed", "err", err)
			return Identity{}, fmt.Errorf("%w: denylist unavailable", ErrUnauthorized)
		}
		if revoked {
			return Identity{}, fmt.Errorf("%w: token revoked", ErrUnauthorized)
		}
	}
	return Identity{UserID: claims.UserID, TokenID: claims.TokenID, ExpiresAt: claims.ExpiresAt}, nil
}

// Logout revokes the caller's token until it expires.  Without a denylist
// tokens are stateless and Logout is a no-op.
func (s *AuthService) Logout(ctx context.Context, id Identity) error {
	if s.denylist == nil || id.TokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Me returns the authenticated user's record.
func (s *AuthService) Me(ctx context.Context, userID uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
