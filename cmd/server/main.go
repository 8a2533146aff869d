package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/todo-service/internal/config"
	"github.com/iliyamo/todo-service/internal/database"
	"github.com/iliyamo/todo-service/internal/handler"
	"github.com/iliyamo/todo-service/internal/logging"
	"github.com/iliyamo/todo-service/internal/middleware"
	"github.com/iliyamo/todo-service/internal/queue"
	"github.com/iliyamo/todo-service/internal/repository"
	"github.com/iliyamo/todo-service/internal/repository/memstore"
	"github.com/iliyamo/todo-service/internal/router"
	"github.com/iliyamo/todo-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.IsProd(), cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, todos, closeStore, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unreachable; rate limiting disabled, denylist kept in memory")
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.RabbitMQURL)
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, Dir: cfg.ActivityLogDir, Logger: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("activity consumer stopped", "err", err)
			}
		}()
	}

	auth := service.NewAuthService(service.AuthConfig{
		Secret:            cfg.JWTSecret,
		AccessTTL:         time.Duration(cfg.AccessTTLMin) * time.Minute,
		BcryptCost:        cfg.BcryptCost,
		PasswordMinLength: cfg.PasswordMinLength,
	}, users, newDenylist(cfg, rdb), events, log)
	todoSvc := service.NewTodoService(todos, events, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: true,
	}))

	rl := config.LoadRateLimitConfig()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, log), auth, middleware.NewTokenBucket(rl, rdb, log))
	router.RegisterTodos(e, handler.NewTodoHandler(todoSvc, log), auth)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStores selects the storage backend.  The returned func releases it.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (service.UserStore, service.TodoStore, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return memstore.NewUsers(), memstore.NewTodos(), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return repository.NewUserRepo(db), repository.NewTodoRepo(db), closeDB(db, log), nil
}

func closeDB(db *sql.DB, log *slog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn("close database", "err", err)
		}
	}
}

// newDenylist returns nil when revocation is disabled.  Without Redis the
// denylist is per process.
func newDenylist(cfg config.Config, rdb *redis.Client) service.Denylist {
	if !cfg.DenylistEnabled {
		return nil
	}
	if rdb == nil {
		return memstore.NewDenylist()
	}
	return repository.NewTokenRepo(rdb, "denylist")
}
