package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/todo-service/internal/queue"
	"github.com/iliyamo/todo-service/internal/repository/memstore"
)

const testSecret = "test-signing-key"

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		Secret:            testSecret,
		AccessTTL:         30 * time.Minute,
		BcryptCost:        bcrypt.MinCost,
		PasswordMinLength: 1,
	}
}

type fixture struct {
	auth   *AuthService
	todos  *TodoService
	events *recordingPublisher
	deny   *memstore.Denylist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	events := &recordingPublisher{}
	deny := memstore.NewDenylist()
	return &fixture{
		auth:   NewAuthService(testAuthConfig(), memstore.NewUsers(), deny, events, discardLogger()),
		todos:  NewTodoService(memstore.NewTodos(), events, discardLogger()),
		events: events,
		deny:   deny,
	}
}

// registerAndLogin returns the verified user id for a fresh account.
func (f *fixture) registerAndLogin(t *testing.T, username string) uint64 {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.Register(ctx, username, username+"@example.com", "pw12345678")
	require.NoError(t, err)
	tok, err := f.auth.Login(ctx, username, "pw12345678")
	require.NoError(t, err)
	id, err := f.auth.Verify(ctx, tok.AccessToken)
	require.NoError(t, err)
	return id.UserID
}

func requireFieldError(t *testing.T, err error, kind error, field string) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	var fe *FieldError
	require.True(t, errors.As(err, &fe), "expected *FieldError, got %T", err)
	require.Equal(t, field, fe.Field)
}
