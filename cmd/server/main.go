package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portal/internal/app"
	"portal/internal/auth"
	"portal/internal/config"
	models "portal/internal/domain/models/docsystem"
	"portal/internal/handler"
	"portal/internal/httputil"
	"portal/internal/logger"
	"portal/internal/middleware"
	"portal/internal/seed"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	appLogger, cleanup, err := logger.New(logger.OptionsFromConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer cleanup()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("server stopped", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"blob_backend", cfg.BlobBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Migrate(ctx); err != nil {
		return err
	}

	// Memory storage starts empty; give dev something to click through
	if a.Pool == nil {
		fixture, err := seed.Default()
		if err != nil {
			return err
		}
		summary, err := a.Seeder().Apply(ctx, fixture)
		if err != nil {
			return err
		}
		logger.Info("seeded in-memory storage",
			"folders", summary.Folders,
			"documents", summary.Documents,
			"shares", summary.Shares,
		)
	}

	authMiddleware, closeAuth, err := newAuth(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAuth()

	var pinger handler.Pinger
	if a.Pool != nil {
		pinger = a.Pool
	}

	mux := handler.NewRouter(&handler.Handlers{
		Health:    handler.NewHealthHandler(pinger, logger),
		Folders:   handler.NewFolderHandler(a.Folders, a.Moves, logger),
		Documents: handler.NewDocumentHandler(a.Documents, a.Moves, cfg.MaxUploadBytes, logger),
		Shares:    handler.NewShareHandler(a.Shares, a.Documents, logger),
		Tree:      handler.NewTreeHandler(a.Tree, logger),
	})
	logger.Info("services initialized")

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	// Order: CORS → Recovery → Logging → Auth → Routes
	h := middleware.Chain(mux,
		corsHandler.Handler,
		middleware.Recovery(logger),
		middleware.RequestLogging(logger),
		authMiddleware,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // large uploads
		WriteTimeout:      5 * time.Minute, // large downloads
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newAuth verifies JWTs against the JWKS endpoint when one is configured.
// Without one, dev runs every request as a fixed principal.
func newAuth(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(http.Handler) http.Handler, func(), error) {
	if cfg.JWKSURL != "" {
		verifier, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = verifier.Close() }
		return middleware.Authenticate(verifier, cfg.RoleClaim, logger), closeFn, nil
	}

	if !cfg.IsDev() {
		return nil, nil, errors.New("JWKS_URL is required outside dev")
	}
	role, err := models.ParseRole(cfg.DevUserRole)
	if err != nil {
		return nil, nil, err
	}
	logger.Warn("DEV MODE: authentication disabled, all requests run as a fixed user (NEVER use in production!)",
		"user_id", cfg.DevUserID,
		"role", role,
	)
	return middleware.DevPrincipal(httputil.Principal{UserID: cfg.DevUserID, Role: role}), func() {}, nil
}
