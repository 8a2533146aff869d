package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-service/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var insertUserSQL = regexp.QuoteMeta("INSERT INTO users (username, email, password_hash, created_at) VALUES (?,?,?,?)")

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(insertUserSQL).
		WithArgs("alice", "a@x.com", "hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	u := &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, uint64(5), u.ID)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestUserRepo_Create_DuplicateKeys(t *testing.T) {
	cases := []struct {
		key  string
		want error
	}{
		{"users.uq_users_username", ErrUsernameTaken},
		{"users.uq_users_email", ErrEmailTaken},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepo(db)

			mock.ExpectExec(insertUserSQL).
				WillReturnError(&mysql.MySQLError{
					Number:  1062,
					Message: "Duplicate entry 'x' for key '" + tc.key + "'",
				})

			err := repo.Create(context.Background(), &model.User{Username: "x", Email: "x@x.com", PasswordHash: "h"})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUserRepo_Create_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(insertUserSQL).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &model.User{Username: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NotErrorIs(t, err, ErrUsernameTaken)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,username,email,password_hash,created_at FROM users WHERE username=? LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
			AddRow(1, "alice", "a@x.com", "hash", created))

	u, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, &model.User{ID: 1, Username: "alice", Email: "a@x.com", PasswordHash: "hash", CreatedAt: created}, u)
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_ExistsByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	q := regexp.QuoteMeta("SELECT 1 FROM users WHERE email=? LIMIT 1")

	mock.ExpectQuery(q).WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(q).WithArgs("b@x.com").
		WillReturnError(sql.ErrNoRows)

	ok, err := repo.ExistsByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(context.Background(), "b@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
