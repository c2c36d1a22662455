package service

import (
	"context"
	"time"

	"github.com/iliyamo/opportunity-hub/internal/model"
)

// UserStore is the subset of repository.UserRepo the services use.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Save(ctx context.Context, u model.User) error
	UpdateProgress(ctx context.Context, id uint64, p model.Progress, prev *time.Time, updatedAt time.Time) error
}

// TokenStore is the subset of repository.TokenRepo the services use.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	FindActiveByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	RevokeByHash(ctx context.Context, userID uint64, tokenHash string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint64) (int64, error)
}

// AdminStore is the subset of repository.AdminRepo the services use.
type AdminStore interface {
	Create(ctx context.Context, email, passwordHash string) (uint64, error)
	// CreateFirst fails with repository.ErrConflict once any admin exists.
	CreateFirst(ctx context.Context, email, passwordHash string) (uint64, error)
	Count(ctx context.Context) (int, error)
	GetByEmail(ctx context.Context, email string) (model.Admin, error)
	GetByID(ctx context.Context, id uint64) (model.Admin, error)
	SetActive(ctx context.Context, email string, active bool) error
	SetPassword(ctx context.Context, email, passwordHash string) error
}
