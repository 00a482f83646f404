// Package server wires the account service together: logger, storage
// backend, media uploader, auth flows and the HTTP server. It also handles
// graceful shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/dmitrijs2005/videotube/internal/server/config"
	"github.com/dmitrijs2005/videotube/internal/server/httpserver"
	"github.com/dmitrijs2005/videotube/internal/server/media"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/videotube/internal/server/services"
)

const migrationTimeout = 30 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	userService *services.UserService
	httpServer  *httpserver.HTTPServer
}

// newUploader is a seam so tests can avoid building an S3 client.
var newUploader = func(ctx context.Context, c *config.Config) (media.Uploader, error) {
	return media.NewS3Uploader(ctx, c)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		logger.Warn(ctx, "token secrets are not configured, login will fail")
	}

	rm, err := repomanager.New(ctx, c.DatabaseDSN, c.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()
	if err := rm.RunMigrations(migrateCtx); err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	uploader, err := newUploader(ctx, c)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("media init error: %w", err)
	}

	us := services.NewUserService(rm,
		auth.NewBcryptHasher(c.BcryptCost),
		auth.NewTokenIssuer(c),
		media.WithCleanup(uploader, logger.With("module", "media")),
		logger)

	hs, err := httpserver.NewHTTPServer(c, logger, us, rm)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("http init error: %w", err)
	}

	return &App{config: c, logger: logger, repomanager: rm, userService: us, httpServer: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server stopped", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until a termination signal arrives or ctx is cancelled, then
// closes the storage backend.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		return err
	}
	return runErr
}

// Close releases the storage backend.
func (app *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	if err := app.repomanager.Close(ctx); err != nil {
		return fmt.Errorf("db close error: %w", err)
	}
	app.logger.Info(ctx, "App stopped")
	return nil
}
