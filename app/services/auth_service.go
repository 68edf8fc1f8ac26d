package services

import (
	"context"
	"errors"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// TokenIssuer issues identity tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// PasswordHasher hashes passwords and compares them against stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthService handles registration, login and identity lookup
type AuthService struct {
	users   repositories.UserRepository
	tokens  TokenIssuer
	hasher  PasswordHasher
	timeout time.Duration

	// dummyHash is compared against when the email is unknown so both login
	// failure paths do the same bcrypt work.
	dummyHash string
}

// fallbackDummyHash is a well-formed cost-10 bcrypt hash used when the
// hasher cannot produce a dummy hash at startup.
const fallbackDummyHash = "$2a$10$XajjQvNhvvRt5GSeFk1xFeyqRrsxkhBkUiQeg0dt.wU1qD4aFDcga"

// NewAuthService creates a new AuthService
func NewAuthService(users repositories.UserRepository, tokens TokenIssuer, hasher PasswordHasher, timeout time.Duration) *AuthService {
	dummy, err := hasher.Hash("inkpost-unknown-user")
	if err != nil || dummy == "" {
		dummy = fallbackDummyHash
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		timeout:   timeout,
		dummyHash: dummy,
	}
}

// Register creates an identity and returns a fresh token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", storageError("hash password", err)
	}
	user := &models.Identity{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	user.BeforeCreate()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) || errors.Is(err, repositories.ErrDuplicateUsername) {
			return "", ErrDuplicateIdentity
		}
		return "", storageError("create user", err)
	}

	return s.issue(user.ID)
}

// Login checks the credentials and returns a fresh token. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, error) {
	if err := validateInput(&in); err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		_ = s.hasher.Compare(s.dummyHash, in.Password)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", storageError("find user", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issue(user.ID)
}

// Me returns the public view of the identity behind a verified token.
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.PublicIdentity, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storageError("get user", err)
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) issue(userID int64) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", storageError("issue token", err)
	}
	return token, nil
}

// withTimeout bounds a store call. A non-positive timeout leaves ctx as is.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
