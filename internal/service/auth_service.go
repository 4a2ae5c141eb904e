// Package service holds the business logic between handlers and repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/shop-api/internal/model"
	"github.com/iliyamo/shop-api/internal/repository"
	"github.com/iliyamo/shop-api/internal/utils"
)

// ErrInvalidCredentials is returned for every authentication failure during
// login and refresh.  The message makes no distinction between an unknown
// email and a wrong password so the API cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the persistence surface the auth and user services need.
// *repository.UserRepo satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateRefreshHash(ctx context.Context, id, hash string) error
	ClearRefreshHash(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, firstName, lastName *string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.User, error)
}

// AuthService orchestrates register, login, refresh and logout.  It owns the
// invariant that a user has at most one valid refresh token at any time:
// every issuance overwrites the stored hash, and logout clears it.
type AuthService struct {
	store      UserStore
	access     utils.TokenProfile
	refresh    utils.TokenProfile
	bcryptCost int
}

func NewAuthService(store UserStore, access, refresh utils.TokenProfile, bcryptCost int) *AuthService {
	return &AuthService{store: store, access: access, refresh: refresh, bcryptCost: bcryptCost}
}

// RegisterInput carries the registration payload.  FirstName and LastName are
// optional profile fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// AuthResult is returned by every operation that issues a token pair.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// Register creates an account and signs it in.  The email-existence check
// runs before the password is hashed so a doomed registration never pays the
// bcrypt cost; the store enforces uniqueness again on insert to close the
// race.  Returns repository.ErrEmailExists when the email is taken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return nil, repository.ErrEmailExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         model.RoleUser,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Login verifies credentials and issues a fresh token pair.  A successful
// login anywhere overwrites the stored refresh hash, revoking refresh tokens
// issued by earlier sessions.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

// Refresh issues a new token pair for a subject that already passed the
// refresh-token gate.  The stored hash is overwritten, so the token that was
// just presented stops working: refresh tokens are single-use.
func (s *AuthService) Refresh(ctx context.Context, userID string) (*AuthResult, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("refresh: lookup user: %w", err)
	}
	return s.issue(ctx, user)
}

// Logout clears the stored refresh hash unconditionally.  Any refresh token
// issued before this call fails afterwards because there is no hash left to
// match against.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.store.ClearRefreshHash(ctx, userID)
}

// issue signs an access/refresh pair and persists the hash of the refresh
// token.  Only the hash is stored: the database never holds a refresh token
// in usable form, mirroring how passwords are kept.  The per-issuance nonce
// guarantees distinct tokens (and therefore distinct hashes) even when two
// issuances for the same user happen within the same second.
func (s *AuthService) issue(ctx context.Context, user *model.User) (*AuthResult, error) {
	refreshID, err := utils.NewRefreshID()
	if err != nil {
		return nil, fmt.Errorf("issue: nonce: %w", err)
	}

	accessToken, _, err := utils.SignToken(s.access, user.ID, user.Email, "")
	if err != nil {
		return nil, fmt.Errorf("issue: sign access token: %w", err)
	}
	refreshToken, _, err := utils.SignToken(s.refresh, user.ID, user.Email, refreshID)
	if err != nil {
		return nil, fmt.Errorf("issue: sign refresh token: %w", err)
	}

	hash, err := utils.HashRefreshSecret(refreshToken, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("issue: hash refresh token: %w", err)
	}
	if err := s.store.UpdateRefreshHash(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("issue: store refresh hash: %w", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
