package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/queue"
	"github.com/iliyamo/opportunity-hub/internal/repository"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uint64]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u model.User) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	return u.ID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Save(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range f.byID {
		if id != u.ID && other.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.Progress = cur.Progress
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) UpdateProgress(_ context.Context, id uint64, p model.Progress, prev *time.Time, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrConflict
	}
	cur := u.Streak.LastCheckIn
	if (cur == nil) != (prev == nil) || (cur != nil && !cur.Equal(*prev)) {
		return repository.ErrConflict
	}
	u.Progress = p
	u.UpdatedAt = updatedAt
	f.byID[id] = u
	return nil
}

type fakeTokens struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[string]model.RefreshToken{}} }

func (f *fakeTokens) Store(_ context.Context, userID uint64, hash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[hash] = model.RefreshToken{ID: uint64(len(f.rows) + 1), UserID: userID, TokenHash: hash, ExpiresAt: exp}
	return nil
}

func (f *fakeTokens) FindActiveByHash(_ context.Context, hash string) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[hash]
	if !ok || t.IsRevoked {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, userID uint64, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[hash]
	if !ok || t.UserID != userID || t.IsRevoked {
		return false, nil
	}
	t.IsRevoked = true
	f.rows[hash] = t
	return true, nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for h, t := range f.rows {
		if t.UserID == userID && !t.IsRevoked {
			t.IsRevoked = true
			f.rows[h] = t
			n++
		}
	}
	return n, nil
}

func (f *fakeTokens) expire(hash string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.rows[hash]
	t.ExpiresAt = at
	f.rows[hash] = t
}

type fakeAdmins struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Admin
}

func newFakeAdmins() *fakeAdmins { return &fakeAdmins{rows: map[uint64]model.Admin{}} }

func (f *fakeAdmins) Create(_ context.Context, email, hash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, a := range f.rows {
		if a.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	f.rows[f.nextID] = model.Admin{ID: f.nextID, Email: email, PasswordHash: hash, Active: true, CreatedAt: time.Now()}
	return f.nextID, nil
}

func (f *fakeAdmins) CreateFirst(_ context.Context, email, hash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rows) > 0 {
		return 0, repository.ErrConflict
	}
	f.nextID++
	f.rows[f.nextID] = model.Admin{ID: f.nextID, Email: model.NormalizeEmail(email), PasswordHash: hash, Active: true, CreatedAt: time.Now()}
	return f.nextID, nil
}

func (f *fakeAdmins) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows), nil
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, a := range f.rows {
		if a.Email == email {
			return a, nil
		}
	}
	return model.Admin{}, repository.ErrNotFound
}

func (f *fakeAdmins) GetByID(_ context.Context, id uint64) (model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return model.Admin{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAdmins) SetActive(_ context.Context, email string, active bool) error {
	return f.modify(email, func(a *model.Admin) { a.Active = active })
}

func (f *fakeAdmins) SetPassword(_ context.Context, email, hash string) error {
	return f.modify(email, func(a *model.Admin) { a.PasswordHash = hash })
}

func (f *fakeAdmins) modify(email string, fn func(*model.Admin)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = model.NormalizeEmail(email)
	for id, a := range f.rows {
		if a.Email == email {
			fn(&a)
			f.rows[id] = a
			return nil
		}
	}
	return repository.ErrNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// emptyCountAdmins always reports an empty table, so every concurrent Setup
// gets past the pre-check and only CreateFirst decides.
type emptyCountAdmins struct{ *fakeAdmins }

func (emptyCountAdmins) Count(context.Context) (int, error) { return 0, nil }
