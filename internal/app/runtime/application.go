package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	app "github.com/R3E-Network/social_layer/internal/app"
	"github.com/R3E-Network/social_layer/internal/app/httpapi"
	"github.com/R3E-Network/social_layer/internal/app/storage/sqlstore"
	"github.com/R3E-Network/social_layer/internal/config"
	"github.com/R3E-Network/social_layer/internal/platform/database"
	"github.com/R3E-Network/social_layer/internal/platform/migrations"
	"github.com/R3E-Network/social_layer/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	app        *app.Application
	db         *sqlx.DB
	httpServer *http.Server

	closeOnce sync.Once
}

// NewApplication constructs an application from cfg. A nil cfg is loaded from
// the environment.
func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log := logger.New(cfg.Logging)

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	store := sqlstore.New(db)
	application, err := app.New(app.Stores{Accounts: store, Messages: store, Health: store}, log.Component("app"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build application: %w", err)
	}

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      httpapi.NewHandler(application, log.Component("http"), httpapi.WithAllowedOrigins(cfg.Server.AllowedOrigins...)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Application{
		cfg:        cfg,
		log:        log,
		app:        application,
		db:         db,
		httpServer: httpSrv,
	}, nil
}

// App exposes the composed domain services.
func (a *Application) App() *app.Application { return a.app }

// Handler exposes the HTTP handler, for embedding in tests.
func (a *Application) Handler() http.Handler { return a.httpServer.Handler }

// Run serves HTTP on the configured address until ctx is cancelled or the
// listener fails, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.httpServer.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Infof("HTTP server listening on %s", ln.Addr())
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown gracefully stops the HTTP server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.closeOnce.Do(func() {
		a.log.Info("shutting down")
		if err := a.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("shutdown http: %w", err)
		}
		if a.db != nil {
			if err := a.db.Close(); err != nil {
				a.log.WithError(err).Warn("error closing database connection")
			}
		}
	})
	return shutdownErr
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*sqlx.DB, error) {
	dialect, err := database.DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	entry := log.WithField("dialect", dialect)
	if dialect == database.DialectSQLite {
		entry = entry.WithField("sqlite_build", database.BuildMode)
	}
	entry.Info("database connected")

	if cfg.Bootstrap {
		if err := migrations.Apply(ctx, db, dialect); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
		log.WithField("dialect", dialect).Info("schema bootstrapped")
	}
	return db, nil
}
