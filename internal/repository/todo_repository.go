// Package repository contains data access logic separated from HTTP handlers.
// Every todo query is filtered by owner_id; there is deliberately no method
// that reads or writes a todo by id alone.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/todo-service/internal/model"
)

const todoColumns = "id, owner_id, title, completed, created_at, updated_at"

// TodoRepo encapsulates all database queries related to todos.
type TodoRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewTodoRepo constructs a TodoRepo with the provided DB handle.
func NewTodoRepo(db *sql.DB) *TodoRepo {
	return &TodoRepo{db: db}
}

// Create inserts a new todo.  On success the ID and timestamps are populated.
func (r *TodoRepo) Create(ctx context.Context, t *model.Todo) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	t.CreatedAt, t.UpdatedAt = now, now
	const q = "INSERT INTO todos (owner_id, title, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, t.OwnerID, t.Title, t.Completed, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	t.ID = uint64(id)
	return nil
}

// GetByIDAndOwner fetches a todo by id but only if it belongs to the
// specified owner.  Missing and foreign rows both return ErrNotFound.
func (r *TodoRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Todo, error) {
	const q = "SELECT " + todoColumns + " FROM todos WHERE id = ? AND owner_id = ?"
	var t model.Todo
	if err := r.db.QueryRowContext(ctx, q, id, ownerID).Scan(&t.ID, &t.OwnerID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query todo: %w", err)
	}
	return &t, nil
}

// ListByOwner returns all todos for a specific owner ordered by id, which is
// insertion order.
func (r *TodoRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Todo, error) {
	const q = "SELECT " + todoColumns + " FROM todos WHERE owner_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	out := []*model.Todo{}
	for rows.Next() {
		t := new(model.Todo)
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return out, nil
}

// UpdateByIDAndOwner applies the non-nil fields of p and bumps updated_at,
// then returns the stored row.  The DSN must set clientFoundRows so an
// update that leaves values unchanged still counts as a match.
func (r *TodoRepo) UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, p model.TodoPatch) (*model.Todo, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	const q = `UPDATE todos
	           SET title = COALESCE(?, title), completed = COALESCE(?, completed), updated_at = ?
	           WHERE id = ? AND owner_id = ?`
	var title, completed any
	if p.Title != nil {
		title = *p.Title
	}
	if p.Completed != nil {
		completed = *p.Completed
	}
	res, err := r.db.ExecContext(ctx, q, title, completed, now, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// DeleteByIDAndOwner removes a todo owned by ownerID.  It returns
// ErrNotFound when nothing was deleted.
func (r *TodoRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
