package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/shop-api/internal/model"
	"github.com/iliyamo/shop-api/internal/utils"
)

var (
	// ErrWrongPassword is returned when the current password presented during
	// a password change does not verify.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrSamePassword is returned when the new password verifies against the
	// stored hash, i.e. it is the password already in use.
	ErrSamePassword = errors.New("new password is same as current password")
)

// UserService covers the account-facing operations outside of credential
// issuance: profile reads, the admin listing, password changes and account
// deletion.
type UserService struct {
	store      UserStore
	bcryptCost int
}

func NewUserService(store UserStore, bcryptCost int) *UserService {
	return &UserService{store: store, bcryptCost: bcryptCost}
}

// Profile returns the account record for the given id.
func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.store.GetByID(ctx, userID)
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.store.List(ctx)
}

// UpdateProfile applies the provided optional fields and returns the updated
// record.  A nil input leaves the stored value as it is, so a client can
// change one name without resending the other.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, firstName, lastName *string) (*model.User, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if firstName != nil {
		user.FirstName = firstName
	}
	if lastName != nil {
		user.LastName = lastName
	}
	if err := s.store.UpdateProfile(ctx, userID, user.FirstName, user.LastName); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, userID)
}

// ChangePassword replaces the stored password hash after verifying the
// current password.  The new password is compared against the stored hash
// rather than against the old plaintext: a new password that happens to hash
// to the current one is rejected as unchanged.  A successful change also
// clears the refresh hash, so sessions established under the old password
// cannot renew themselves.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(user.PasswordHash, current) {
		return ErrWrongPassword
	}
	if utils.VerifyPassword(user.PasswordHash, newPassword) {
		return ErrSamePassword
	}

	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}
	return s.store.ClearRefreshHash(ctx, userID)
}

// DeleteAccount removes the account.  Catalog data is unaffected; only rows
// owned by the user cascade.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, userID)
}
