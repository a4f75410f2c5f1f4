package repository

import (
	"context"
	"time"

	"handoc/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, hashed string, at time.Time) error

	// IncrementUploads bumps both counters. The monthly counter restarts at 1
	// when the previous upload was in an earlier month.
	IncrementUploads(ctx context.Context, id string, at time.Time) error
}
