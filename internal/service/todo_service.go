package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/todo-service/internal/model"
	"github.com/iliyamo/todo-service/internal/queue"
	"github.com/iliyamo/todo-service/internal/repository"
)

const maxTitleLength = 500

// TodoService implements the todo operations.  Every method takes the
// verified user id and passes it to the store as the ownership filter.
type TodoService struct {
	todos  TodoStore
	events EventPublisher
	log    *slog.Logger
}

func NewTodoService(todos TodoStore, events EventPublisher, log *slog.Logger) *TodoService {
	if log == nil {
		log = slog.Default()
	}
	return &TodoService{todos: todos, events: events, log: log}
}

// List returns the user's todos in insertion order.
func (s *TodoService) List(ctx context.Context, userID uint64) ([]*model.Todo, error) {
	items, err := s.todos.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return items, nil
}

// Create stores a new todo owned by userID.  The title is trimmed and must
// not be empty.
func (s *TodoService) Create(ctx context.Context, userID uint64, title string, completed bool) (*model.Todo, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	t := &model.Todo{OwnerID: userID, Title: title, Completed: completed}
	if err := s.todos.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	ev := queue.NewActivityEvent(queue.TodoCreated, userID)
	ev.TodoID, ev.Title, ev.Completed = t.ID, t.Title, &t.Completed
	emit(ctx, s.events, s.log, ev)
	return t, nil
}

// Get returns the todo if it exists and belongs to userID; otherwise
// ErrNotFound, with no distinction between the two cases.
func (s *TodoService) Get(ctx context.Context, userID, id uint64) (*model.Todo, error) {
	t, err := s.todos.GetByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, notFoundOr(err, "get todo")
	}
	return t, nil
}

// Update applies the supplied fields and refreshes updated_at.  Concurrent
// updates to the same todo are last-write-wins.
func (s *TodoService) Update(ctx context.Context, userID, id uint64, p model.TodoPatch) (*model.Todo, error) {
	if p.Title != nil {
		title, err := normalizeTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		p.Title = &title
	}
	t, err := s.todos.UpdateByIDAndOwner(ctx, id, userID, p)
	if err != nil {
		return nil, notFoundOr(err, "update todo")
	}

	ev := queue.NewActivityEvent(queue.TodoUpdated, userID)
	ev.TodoID, ev.Title, ev.Completed = t.ID, t.Title, &t.Completed
	emit(ctx, s.events, s.log, ev)
	return t, nil
}

// Delete removes the todo.  Deleting an already-deleted todo is NotFound.
func (s *TodoService) Delete(ctx context.Context, userID, id uint64) error {
	if err := s.todos.DeleteByIDAndOwner(ctx, id, userID); err != nil {
		return notFoundOr(err, "delete todo")
	}

	ev := queue.NewActivityEvent(queue.TodoDeleted, userID)
	ev.TodoID = id
	emit(ctx, s.events, s.log, ev)
	return nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title", "title must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", invalid("title", fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	return title, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
