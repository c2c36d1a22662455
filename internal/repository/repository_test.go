package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/opportunity-hub/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var userCols = []string{"id", "email", "password_hash", "name", "avatar_initials", "avatar_color",
	"bio", "location", "website", "github", "linkedin", "skills", "projects", "achievements", "education",
	"work_experience", "xp", "level", "stars", "streak_current", "streak_longest", "last_check_in",
	"created_at", "updated_at"}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	u := model.PrepareUserForSave(model.User{Email: "Alice@Example.com", Name: "Alice", PasswordHash: "h", Progress: model.NewProgress()}, time.Now())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), model.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(
			3, "alice@example.com", "hash", "Alice Smith", "AS", "#3498db",
			"bio", "", "", "", "",
			[]byte(`[{"name":"Go","level":"Expert"}]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`null`),
			52, "Contributor", 3, 2, 4, now, now, now))

	u, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", u.Name)
	assert.Equal(t, model.LevelContributor, u.Level)
	assert.Equal(t, 52, u.XP)
	require.Len(t, u.Profile.Skills, 1)
	assert.Equal(t, "Go", u.Profile.Skills[0].Name)
	assert.NotNil(t, u.Profile.WorkExperience)
	require.NotNil(t, u.Streak.LastCheckIn)
	assert.True(t, now.Equal(*u.Streak.LastCheckIn))
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("bob@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "  BOB@example.com ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_UpdateProgress(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	p := model.NewProgress()
	p.XP = 2

	mock.ExpectExec(regexp.QuoteMeta("WHERE id=? AND last_check_in <=> ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateProgress(context.Background(), 1, p, nil, time.Now()))

	mock.ExpectExec(regexp.QuoteMeta("WHERE id=? AND last_check_in <=> ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateProgress(context.Background(), 1, p, nil, time.Now())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserRepo_Save_MissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email=?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), model.User{ID: 9})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenRepo_FindActiveByHash(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	exp := time.Now().Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash=? AND is_revoked=0")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "is_revoked", "created_at"}).
			AddRow(1, 5, "abc", exp, false, time.Now()))

	tok, err := repo.FindActiveByHash(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), tok.UserID)
	assert.True(t, tok.Usable(time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindActiveByHash(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenRepo_RevokeByHash_ScopedToOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET is_revoked=1 WHERE token_hash=? AND user_id=?")).
		WithArgs("abc", uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.RevokeByHash(context.Background(), 2, "abc")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestTokenRepo_DeleteExpired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	cutoff := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE expires_at < ?")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestAdminRepo_SetActive_Unknown(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAdminRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET is_active=? WHERE email=?")).
		WithArgs(false, "root@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), "Root@Example.com", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpportunityRepo_List_Filters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOpportunityRepo(db)
	featured := true
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM opportunities WHERE category=? AND is_featured=? AND (title LIKE ? OR description LIKE ? OR organization LIKE ?) ORDER BY created_at DESC, id DESC LIMIT ?")).
		WithArgs("job", true, `%50\%%`, `%50\%%`, `%50\%%`, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "category", "organization", "location",
			"deadline", "requirements", "benefits", "application_url", "is_featured", "status", "created_at", "updated_at"}).
			AddRow(1, "Backend role", "50% remote", "job", "Acme", "Remote", now,
				[]byte(`["Go"]`), []byte(`[]`), "https://acme.test/jobs/1", true, "active", now, now))

	list, err := repo.List(context.Background(), OpportunityFilter{Category: "job", Search: "50%", Featured: &featured})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"Go"}, list[0].Requirements)
	assert.Equal(t, []string{}, list[0].Benefits)
}

func TestOpportunityRepo_Delete_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOpportunityRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM opportunities WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 99), ErrNotFound)
}

func TestAdminRepo_CreateFirst(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAdminRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT GET_LOCK(?, 5)")).WithArgs(bootstrapLock).
		WillReturnRows(sqlmock.NewRows([]string{"l"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admins")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admins")).
		WithArgs("root@example.com", "hash").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("SELECT RELEASE_LOCK(?)")).WithArgs(bootstrapLock).
		WillReturnResult(sqlmock.NewResult(0, 0))

	id, err := repo.CreateFirst(context.Background(), "Root@Example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestAdminRepo_CreateFirst_AlreadyBootstrapped(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAdminRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT GET_LOCK(?, 5)")).WithArgs(bootstrapLock).
		WillReturnRows(sqlmock.NewRows([]string{"l"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admins")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("SELECT RELEASE_LOCK(?)")).WithArgs(bootstrapLock).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.CreateFirst(context.Background(), "root@example.com", "hash")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAdminRepo_CreateFirst_LockTimeout(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAdminRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT GET_LOCK(?, 5)")).WithArgs(bootstrapLock).
		WillReturnRows(sqlmock.NewRows([]string{"l"}).AddRow(0))

	_, err := repo.CreateFirst(context.Background(), "root@example.com", "hash")
	assert.ErrorIs(t, err, ErrConflict)
}
