package service

import (
	"context"
	"time"

	"github.com/iliyamo/todo-service/internal/model"
	"github.com/iliyamo/todo-service/internal/queue"
)

// UserStore persists users.  Implemented by repository.UserRepo and
// memstore.Users.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TodoStore persists todos.  Every method is scoped by owner.
type TodoStore interface {
	Create(ctx context.Context, t *model.Todo) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Todo, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Todo, error)
	UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, p model.TodoPatch) (*model.Todo, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// Denylist records revoked access tokens until they expire.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, exp time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// EventPublisher delivers activity events.  Failures never fail the
// operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}
