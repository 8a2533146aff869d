// Package memstore holds in-process implementations of the user, todo and
// token-denylist stores.  They mirror the MySQL repositories' semantics,
// including unique keys and owner filtering, and back both local runs with
// STORAGE_DRIVER=memory and the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/todo-service/internal/model"
	"github.com/iliyamo/todo-service/internal/repository"
)

// Users is a concurrency-safe user table.
type Users struct {
	mu     sync.RWMutex
	nextID uint64
	byID   map[uint64]model.User
}

func NewUsers() *Users {
	return &Users{byID: make(map[uint64]model.User)}
}

func (s *Users) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Username == u.Username {
			return repository.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	s.nextID++
	u.ID = s.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.byID[u.ID] = *u
	return nil
}

func (s *Users) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Users) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Users) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Todos is a concurrency-safe todo table.
type Todos struct {
	mu     sync.RWMutex
	nextID uint64
	byID   map[uint64]model.Todo
}

func NewTodos() *Todos {
	return &Todos{byID: make(map[uint64]model.Todo)}
}

func (s *Todos) Create(_ context.Context, t *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	t.ID = s.nextID
	t.CreatedAt, t.UpdatedAt = now, now
	s.byID[t.ID] = *t
	return nil
}

func (s *Todos) GetByIDAndOwner(_ context.Context, id, ownerID uint64) (*model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Todos) ListByOwner(_ context.Context, ownerID uint64) ([]*model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*model.Todo{}
	for _, t := range s.byID {
		if t.OwnerID == ownerID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Todos) UpdateByIDAndOwner(_ context.Context, id, ownerID uint64, p model.TodoPatch) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = time.Now().UTC()
	s.byID[id] = t
	return &t, nil
}

func (s *Todos) DeleteByIDAndOwner(_ context.Context, id, ownerID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || t.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// Denylist keeps revoked token ids until their expiry.  Only correct for a
// single process; multi-instance deployments use the Redis TokenRepo.
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{revoked: make(map[string]time.Time), now: time.Now}
}

func (d *Denylist) Revoke(_ context.Context, tokenID string, exp time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !exp.After(d.now()) {
		return nil
	}
	d.revoked[tokenID] = exp
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for id, exp := range d.revoked {
		if !exp.After(now) {
			delete(d.revoked, id)
		}
	}
	_, ok := d.revoked[tokenID]
	return ok, nil
}
