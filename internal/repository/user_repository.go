package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/shop-api/internal/model"
)

const userColumns = "id, email, password_hash, first_name, last_name, role, refresh_token_hash, created_at, updated_at"

// UserRepo persists account records.  The refresh_token_hash column holds the
// hash of the single currently valid refresh token; every write to it is one
// atomic UPDATE so concurrent logins resolve to last-writer-wins without any
// in-process locking.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a new user.  The caller assigns the ID and hashes the
// password; timestamps are populated from the database defaults afterwards.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, first_name, last_name, role) VALUES (?,?,?,?,?,?)",
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM users WHERE id=?", u.ID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateRefreshHash overwrites the stored refresh token hash.  Overwriting is
// the revocation mechanism: whatever token hashed to the previous value can no
// longer refresh.
func (r *UserRepo) UpdateRefreshHash(ctx context.Context, id, hash string) error {
	return r.exec(ctx, "UPDATE users SET refresh_token_hash=? WHERE id=?", hash, id)
}

// ClearRefreshHash removes the stored refresh token hash (logout).
func (r *UserRepo) ClearRefreshHash(ctx context.Context, id string) error {
	return r.exec(ctx, "UPDATE users SET refresh_token_hash=NULL WHERE id=?", id)
}

// UpdateProfile rewrites the optional profile fields.  A nil value clears
// the column; the caller decides what "unchanged" means.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, firstName, lastName *string) error {
	return r.exec(ctx, "UPDATE users SET first_name=?, last_name=? WHERE id=?", firstName, lastName, id)
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.exec(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
}

// Delete removes the account.  Dependent rows cascade via foreign keys.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// exec runs an UPDATE without inspecting the affected-row count: MySQL
// reports zero affected rows when the new value equals the old one, so a
// no-op update (clearing an already NULL hash) is not an error.
func (r *UserRepo) exec(ctx context.Context, query string, args ...any) error {
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u           model.User
		firstName   sql.NullString
		lastName    sql.NullString
		refreshHash sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName,
		&u.Role, &refreshHash, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if firstName.Valid {
		u.FirstName = &firstName.String
	}
	if lastName.Valid {
		u.LastName = &lastName.String
	}
	if refreshHash.Valid {
		u.RefreshTokenHash = &refreshHash.String
	}
	u.CreatedAt = createdAt
	u.UpdatedAt = updatedAt
	return &u, nil
}
