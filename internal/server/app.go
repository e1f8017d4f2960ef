// Package server wires the identity service together: database, migrations,
// token issuer, policy evaluator, and the HTTP server, with graceful
// shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/socialride/identity/internal/logging"
	"github.com/socialride/identity/internal/server/api"
	"github.com/socialride/identity/internal/server/avatars"
	"github.com/socialride/identity/internal/server/config"
	"github.com/socialride/identity/internal/server/identity"
	"github.com/socialride/identity/internal/server/policy"
	"github.com/socialride/identity/internal/server/repositories/repomanager"
	"github.com/socialride/identity/internal/server/token"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *api.Server
}

// NewApp builds the full dependency graph. A missing signing secret or an
// unreachable database aborts startup.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer, err := token.NewIssuer(cfg.SecretKey, cfg.AdminUserIDs)
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}
	verifier, err := token.NewVerifier(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("token verifier init error: %w", err)
	}
	policies := policy.NewEvaluator(verifier)

	is := identity.NewService(db, rm, issuer, policies, cfg)
	as := avatars.NewService(cfg)

	srv := api.NewServer(cfg.EndpointAddr, logger, is, as, policies)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
