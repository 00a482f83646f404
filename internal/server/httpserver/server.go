// Package httpserver exposes the account API over HTTP using fiber.
package httpserver

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/filex"
	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/dmitrijs2005/videotube/internal/server/config"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPServer struct {
	app        *fiber.App
	address    string
	cfg        *config.Config
	users      *services.UserService
	store      Pinger
	logger     logging.Logger
	stagingDir string
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us *services.UserService, store Pinger) (*HTTPServer, error) {
	stagingDir, err := filex.EnsureSubDir(cfg.UploadStagingDir)
	if err != nil {
		return nil, fmt.Errorf("upload staging dir: %w", err)
	}

	s := &HTTPServer{
		address:    cfg.EndpointAddrHTTP,
		cfg:        cfg,
		users:      us,
		store:      store,
		logger:     l.With("module", "http_server"),
		stagingDir: stagingDir,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "videotube",
		BodyLimit:             cfg.UploadBodyLimit,
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	})
	s.routes()

	return s, nil
}

// App returns the underlying fiber application.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

func (s *HTTPServer) routes() {
	s.app.Use(requestid.New())
	s.app.Use(s.requestLogger)
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.CORSOrigin,
		// fiber refuses credentials with a wildcard origin
		AllowCredentials: s.cfg.CORSOrigin != "*",
	}))
	s.app.Use(s.limitJSONBody)

	s.app.Get("/healthz", s.health)

	api := s.app.Group(common.APIPrefix)
	api.Post("/register", s.register)
	api.Post("/login", s.login)
	api.Post("/refresh-token", s.refreshToken)
	api.Post("/logout", s.requireAuth, s.logout)
	api.Post("/change-password", s.requireAuth, s.changePassword)
	api.Get("/current-user", s.requireAuth, s.currentUser)

	s.app.Static("/", s.cfg.StaticDir)
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- s.app.Listen(s.address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	case <-shutdownCtx.Done():
		return shutdownCtx.Err()
	}
}
