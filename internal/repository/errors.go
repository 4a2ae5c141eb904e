// Package repository contains data access logic separated from HTTP handlers.
package repository

import (
	"errors"
	"strings"
)

// Sentinel errors returned by the repositories.  Handlers map these onto HTTP
// status codes (409 for conflicts, 404 for missing rows).
var (
	ErrEmailExists      = errors.New("email already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSlugExists       = errors.New("category slug already exists")
	ErrProductNotFound  = errors.New("product not found")
	ErrSKUExists        = errors.New("product sku already exists")
)

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062).  The driver does not expose a typed error for it.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
