package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/opportunity-hub/internal/model"
)

type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// Create inserts an active admin and returns its ID.
func (r *AdminRepo) Create(ctx context.Context, email, passwordHash string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admins (email, password_hash, is_active) VALUES (?,?,1)",
		model.NormalizeEmail(email), passwordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// bootstrapLock serializes first-admin creation across server instances.
const bootstrapLock = "admins.bootstrap"

// CreateFirst inserts an admin only while the table is empty.  The count and
// the insert run under a MySQL named lock held on one connection, so of two
// concurrent callers exactly one succeeds; the other gets ErrConflict.
func (r *AdminRepo) CreateFirst(ctx context.Context, email, passwordHash string) (uint64, error) {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 5)", bootstrapLock).Scan(&got); err != nil {
		return 0, err
	}
	if !got.Valid || got.Int64 != 1 {
		return 0, ErrConflict
	}
	defer func() {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), "SELECT RELEASE_LOCK(?)", bootstrapLock)
	}()

	var n int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins").Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, ErrConflict
	}
	res, err := conn.ExecContext(ctx,
		"INSERT INTO admins (email, password_hash, is_active) VALUES (?,?,1)",
		model.NormalizeEmail(email), passwordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *AdminRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins").Scan(&n)
	return n, err
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (model.Admin, error) {
	var a model.Admin
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,is_active,created_at FROM admins WHERE email=? LIMIT 1",
		model.NormalizeEmail(email)).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Active, &a.CreatedAt)
	if err != nil {
		return model.Admin{}, notFound(err)
	}
	return a, nil
}

func (r *AdminRepo) GetByID(ctx context.Context, id uint64) (model.Admin, error) {
	var a model.Admin
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,is_active,created_at FROM admins WHERE id=? LIMIT 1",
		id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Active, &a.CreatedAt)
	if err != nil {
		return model.Admin{}, notFound(err)
	}
	return a, nil
}

// SetActive toggles whether the admin may authenticate.
func (r *AdminRepo) SetActive(ctx context.Context, email string, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE admins SET is_active=? WHERE email=?", active, model.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetPassword replaces the stored hash.
func (r *AdminRepo) SetPassword(ctx context.Context, email, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE admins SET password_hash=? WHERE email=?", passwordHash, model.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return requireRow(res)
}
