package model

import "time"

// Todo is a single to-do item owned by exactly one user.  It corresponds
// to a row in the `todos` table; owner_id references users.id.
type Todo struct {
	ID        uint64    // todos.id
	OwnerID   uint64    // todos.owner_id
	Title     string    // todos.title
	Completed bool      // todos.completed
	CreatedAt time.Time // todos.created_at
	UpdatedAt time.Time // todos.updated_at
}

// TodoPatch carries the fields of a partial update.  Nil means "leave
// unchanged".
type TodoPatch struct {
	Title     *string
	Completed *bool
}
