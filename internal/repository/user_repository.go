package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/opportunity-hub/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,name,avatar_initials,avatar_color," +
	"bio,location,website,github,linkedin,skills,projects,achievements,education,work_experience," +
	"xp,level,stars,streak_current,streak_longest,last_check_in,created_at,updated_at"

// Create inserts a prepared user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	sections, err := encodeSections(u.Profile)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email,password_hash,name,avatar_initials,avatar_color,"+
			"bio,location,website,github,linkedin,skills,projects,achievements,education,work_experience,"+
			"xp,level,stars,streak_current,streak_longest,last_check_in,created_at,updated_at) "+
			"VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.Name, u.Avatar.Initials, u.Avatar.BackgroundColor,
		u.Profile.Bio, u.Profile.Location, u.Profile.Website, u.Profile.Github, u.Profile.Linkedin,
		sections[0], sections[1], sections[2], sections[3], sections[4],
		u.XP, string(u.Level), u.Stars, u.Streak.Current, u.Streak.Longest, nullTime(u.Streak.LastCheckIn),
		u.CreatedAt, u.UpdatedAt)
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

// GetByEmail fetches a user, password hash included, by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", model.NormalizeEmail(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// Save writes account and profile fields of an existing, prepared user.
// Gamification columns are left alone; they change through UpdateProgress.
func (r *UserRepo) Save(ctx context.Context, u model.User) error {
	sections, err := encodeSections(u.Profile)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?,name=?,avatar_initials=?,avatar_color=?,"+
			"bio=?,location=?,website=?,github=?,linkedin=?,"+
			"skills=?,projects=?,achievements=?,education=?,work_experience=?,updated_at=? WHERE id=?",
		u.Email, u.Name, u.Avatar.Initials, u.Avatar.BackgroundColor,
		u.Profile.Bio, u.Profile.Location, u.Profile.Website, u.Profile.Github, u.Profile.Linkedin,
		sections[0], sections[1], sections[2], sections[3], sections[4], u.UpdatedAt, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return requireRow(res)
}

// SetPassword replaces the stored hash.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, hash string, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?,updated_at=? WHERE id=?", hash, updatedAt, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateProgress stores gamification state.  The write only applies when
// last_check_in still holds prev, so of two racing check-ins exactly one
// wins; the loser gets ErrConflict.
func (r *UserRepo) UpdateProgress(ctx context.Context, id uint64, p model.Progress, prev *time.Time, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET xp=?,level=?,stars=?,streak_current=?,streak_longest=?,last_check_in=?,updated_at=? "+
			"WHERE id=? AND last_check_in <=> ?",
		p.XP, string(p.Level), p.Stars, p.Streak.Current, p.Streak.Longest, nullTime(p.Streak.LastCheckIn),
		updatedAt, id, nullTime(prev))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Leaderboard returns one page of users ordered by stars then xp.
func (r *UserRepo) Leaderboard(ctx context.Context, offset, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY stars DESC, xp DESC, id ASC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u        model.User
		level    string
		last     sql.NullTime
		sections [5][]byte
	)
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Avatar.Initials, &u.Avatar.BackgroundColor,
		&u.Profile.Bio, &u.Profile.Location, &u.Profile.Website, &u.Profile.Github, &u.Profile.Linkedin,
		&sections[0], &sections[1], &sections[2], &sections[3], &sections[4],
		&u.XP, &level, &u.Stars, &u.Streak.Current, &u.Streak.Longest, &last, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, notFound(err)
	}
	u.Level = model.Level(level)
	if last.Valid {
		t := last.Time
		u.Streak.LastCheckIn = &t
	}
	if err := decodeSections(sections, &u.Profile); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func encodeSections(p model.Profile) ([5][]byte, error) {
	var out [5][]byte
	values := []any{
		orEmpty(p.Skills), orEmpty(p.Projects), orEmpty(p.Achievements),
		orEmpty(p.Education), orEmpty(p.WorkExperience),
	}
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("encode profile section: %w", err)
		}
		out[i] = b
	}
	return out, nil
}

func decodeSections(raw [5][]byte, p *model.Profile) error {
	targets := []any{&p.Skills, &p.Projects, &p.Achievements, &p.Education, &p.WorkExperience}
	for i, dst := range targets {
		if len(raw[i]) == 0 {
			continue
		}
		if err := json.Unmarshal(raw[i], dst); err != nil {
			return fmt.Errorf("decode profile section: %w", err)
		}
	}
	if p.Skills == nil {
		p.Skills = []model.Skill{}
	}
	if p.Projects == nil {
		p.Projects = []model.Project{}
	}
	if p.Achievements == nil {
		p.Achievements = []model.Achievement{}
	}
	if p.Education == nil {
		p.Education = []model.Education{}
	}
	if p.WorkExperience == nil {
		p.WorkExperience = []model.WorkExperience{}
	}
	return nil
}

// orEmpty keeps nil slices from being stored as JSON null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
