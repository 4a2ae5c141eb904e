package model

import "time"

// Role values stored in the users.role column.  The set is closed: every
// account is either a regular USER or an ADMIN.  Authorization middleware
// compares against these constants.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an account record as stored in the `users` table.
//
// Fields:
//  ID               – immutable UUID primary key, assigned at creation.
//  Email            – unique, stored lowercased; the business key of the account.
//  PasswordHash     – bcrypt hash of the current password.  Never serialized.
//  FirstName        – optional profile field (nullable column).
//  LastName         – optional profile field (nullable column).
//  Role             – USER or ADMIN.
//  RefreshTokenHash – hash of the currently valid refresh token, or nil when
//                     the user is logged out.  There is at most one live
//                     refresh credential per user; issuing a new one overwrites
//                     this column, which is how old tokens are revoked.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type User struct {
	ID               string    // users.id
	Email            string    // users.email
	PasswordHash     string    // users.password_hash
	FirstName        *string   // users.first_name (nullable)
	LastName         *string   // users.last_name (nullable)
	Role             string    // users.role
	RefreshTokenHash *string   // users.refresh_token_hash (nullable)
	CreatedAt        time.Time // users.created_at
	UpdatedAt        time.Time // users.updated_at
}
