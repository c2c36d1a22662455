// Package service holds the account, admin and check-in use cases.  Services
// depend on small store interfaces so they can be exercised without MySQL.
package service

import (
	"errors"
	"strings"
)

var (
	ErrUserExists          = errors.New("user already exists")
	ErrAdminExists         = errors.New("admin already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrUserNotFound        = errors.New("user not found")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrWeakPassword        = errors.New("password does not meet requirements")
)

// WeakPasswordError lists every policy rule a password broke.
type WeakPasswordError struct {
	Problems []string
}

func (e *WeakPasswordError) Error() string {
	return ErrWeakPassword.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *WeakPasswordError) Is(target error) bool { return target == ErrWeakPassword }
