package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/repository"
)

// memUsers is an in-memory stand-in for repository.UserRepo.
type memUsers struct {
	mu   sync.Mutex
	rows map[uint64]model.User
	next uint64
}

func newMemUsers() *memUsers { return &memUsers{rows: map[uint64]model.User{}} }

func (m *memUsers) Create(_ context.Context, u model.User) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	m.next++
	u.ID = m.next
	m.rows[u.ID] = u
	return u.ID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, r := range m.rows {
		if r.Email == email {
			return r, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Save(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Progress = cur.Progress
	m.rows[u.ID] = u
	return nil
}

func (m *memUsers) UpdateProgress(_ context.Context, id uint64, p model.Progress, prev *time.Time, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return repository.ErrConflict
	}
	cur := u.Streak.LastCheckIn
	if (cur == nil) != (prev == nil) || (cur != nil && !cur.Equal(*prev)) {
		return repository.ErrConflict
	}
	u.Progress = p
	u.UpdatedAt = updatedAt
	m.rows[id] = u
	return nil
}

func (m *memUsers) Leaderboard(_ context.Context, offset, limit int) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]model.User, 0, len(m.rows))
	for _, u := range m.rows {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Stars != all[j].Stars {
			return all[i].Stars > all[j].Stars
		}
		if all[i].XP != all[j].XP {
			return all[i].XP > all[j].XP
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return []model.User{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (m *memUsers) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

type memTokens struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
}

func newMemTokens() *memTokens { return &memTokens{rows: map[string]model.RefreshToken{}} }

func (m *memTokens) Store(_ context.Context, userID uint64, hash string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[hash] = model.RefreshToken{ID: uint64(len(m.rows) + 1), UserID: userID, TokenHash: hash, ExpiresAt: exp}
	return nil
}

func (m *memTokens) FindActiveByHash(_ context.Context, hash string) (model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[hash]
	if !ok || t.IsRevoked {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return t, nil
}

func (m *memTokens) RevokeByHash(_ context.Context, userID uint64, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[hash]
	if !ok || t.UserID != userID || t.IsRevoked {
		return false, nil
	}
	t.IsRevoked = true
	m.rows[hash] = t
	return true, nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for h, t := range m.rows {
		if t.UserID == userID && !t.IsRevoked {
			t.IsRevoked = true
			m.rows[h] = t
			n++
		}
	}
	return n, nil
}

type memAdmins struct {
	mu   sync.Mutex
	rows map[uint64]model.Admin
	next uint64
}

func newMemAdmins() *memAdmins { return &memAdmins{rows: map[uint64]model.Admin{}} }

func (m *memAdmins) Create(_ context.Context, email, hash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	m.next++
	m.rows[m.next] = model.Admin{ID: m.next, Email: email, PasswordHash: hash, Active: true, CreatedAt: time.Now()}
	return m.next, nil
}

func (m *memAdmins) CreateFirst(_ context.Context, email, hash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) > 0 {
		return 0, repository.ErrConflict
	}
	m.next++
	m.rows[m.next] = model.Admin{ID: m.next, Email: email, PasswordHash: hash, Active: true, CreatedAt: time.Now()}
	return m.next, nil
}

func (m *memAdmins) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *memAdmins) GetByEmail(_ context.Context, email string) (model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.Email == model.NormalizeEmail(email) {
			return a, nil
		}
	}
	return model.Admin{}, repository.ErrNotFound
}

func (m *memAdmins) GetByID(_ context.Context, id uint64) (model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return model.Admin{}, repository.ErrNotFound
	}
	return a, nil
}

func (m *memAdmins) SetActive(_ context.Context, email string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.rows {
		if a.Email == model.NormalizeEmail(email) {
			a.Active = active
			m.rows[id] = a
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memAdmins) SetPassword(_ context.Context, email, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.rows {
		if a.Email == model.NormalizeEmail(email) {
			a.PasswordHash = hash
			m.rows[id] = a
			return nil
		}
	}
	return repository.ErrNotFound
}

type memOpportunities struct {
	mu   sync.Mutex
	rows map[uint64]model.Opportunity
	next uint64
}

func newMemOpportunities() *memOpportunities {
	return &memOpportunities{rows: map[uint64]model.Opportunity{}}
}

func (m *memOpportunities) List(_ context.Context, f repository.OpportunityFilter) ([]model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Opportunity{}
	for _, o := range m.rows {
		if f.Category != "" && o.Category != f.Category {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memOpportunities) GetByID(_ context.Context, id uint64) (model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok {
		return model.Opportunity{}, repository.ErrNotFound
	}
	return o, nil
}

func (m *memOpportunities) Create(_ context.Context, o model.Opportunity) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	o.ID = m.next
	m.rows[o.ID] = o
	return o.ID, nil
}

func (m *memOpportunities) Update(_ context.Context, o model.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[o.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[o.ID] = o
	return nil
}

func (m *memOpportunities) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
