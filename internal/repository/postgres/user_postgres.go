package postgres

import (
	"context"
	"database/sql"
	"time"

	"handoc/internal/model"
	"handoc/internal/repository"
)

type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, username, hashed_password, is_active, is_premium, is_verified, full_name,
		language, timezone, subscription_type, subscription_expires_at, monthly_uploads, total_uploads,
		last_upload_at, created_at, updated_at, last_login_at`

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.HashedPassword,
		&u.IsActive,
		&u.IsPremium,
		&u.IsVerified,
		&u.FullName,
		&u.Language,
		&u.Timezone,
		&u.SubscriptionType,
		&u.SubscriptionExpiresAt,
		&u.MonthlyUploads,
		&u.TotalUploads,
		&u.LastUploadAt,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserPostgres) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (id, email, username, hashed_password, is_active, is_premium, is_verified,
			full_name, language, timezone, subscription_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, q,
		u.ID,
		u.Email,
		u.Username,
		u.HashedPassword,
		u.IsActive,
		u.IsPremium,
		u.IsVerified,
		u.FullName,
		u.Language,
		u.Timezone,
		u.SubscriptionType,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserPostgres) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&ok)
	return ok, err
}

func (r *UserPostgres) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&ok)
	return ok, err
}

func (r *UserPostgres) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login_at = $2, updated_at = $2 WHERE id = $1`, id, at)
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, id, hashed string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET hashed_password = $2, updated_at = $3 WHERE id = $1`, id, hashed, at)
}

func (r *UserPostgres) IncrementUploads(ctx context.Context, id string, at time.Time) error {
	const q = `
		UPDATE users SET
			monthly_uploads = CASE
				WHEN last_upload_at IS NULL OR date_trunc('month', last_upload_at) < date_trunc('month', $2::timestamptz)
				THEN 1
				ELSE monthly_uploads + 1
			END,
			total_uploads = total_uploads + 1,
			last_upload_at = $2,
			updated_at = $2
		WHERE id = $1
	`
	return r.exec(ctx, q, id, at)
}

// exec runs an UPDATE and reports ErrNotFound when no row matched.
func (r *UserPostgres) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
