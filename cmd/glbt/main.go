package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	gitlabadapter "github.com/ericfisherdev/gitlab-bulk-tools/internal/adapter/driven/gitlab"
	sqliteadapter "github.com/ericfisherdev/gitlab-bulk-tools/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/gitlab-bulk-tools/internal/adapter/driving/http"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/application"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env (optional) and configuration.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"bulk_concurrency", cfg.BulkConcurrency,
		"session_persistence", cfg.SecretKey != "",
		"bootstrap_credentials", cfg.HasGitLabCredentials(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database and run migrations.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("database ready", "path", db.Path())

	// 4. Wire adapters and services.
	key, err := cfg.EncryptionKey()
	if err != nil {
		return err
	}
	if key == nil {
		slog.Warn("GLBT_SECRET_KEY not set, the GitLab session will not survive restarts")
	}
	sessionStore := sqliteadapter.NewSessionRepo(db, key)
	connector := gitlabadapter.Connector{HTTPClient: &http.Client{Transport: gitlabTransport()}}

	provider := application.NewGitLabClientProvider(nil, "")
	watcher := application.NewPipelineWatcher(ctx, provider)
	store := application.NewMergeRequestStore(provider, watcher)
	dispatcher := application.NewDispatcher(provider, cfg.BulkConcurrency)
	sessions := application.NewSessionService(connector, sessionStore, provider)

	// 5. Restore the previous session and load the listing.
	restored, err := sessions.Restore(ctx, cfg.GitLabURL, cfg.GitLabToken)
	switch {
	case err != nil:
		slog.Warn("could not restore session, login required", "error", err)
	case restored:
		if err := store.Load(ctx); err != nil {
			slog.Warn("initial merge request load failed", "error", err)
		}
	default:
		slog.Info("no GitLab session configured, login required")
	}

	// 6. HTTP server.
	h := httphandler.NewHandler(store, dispatcher, sessions, slog.Default())
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewRouter(h, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	watcher.Wait()

	slog.Info("shutdown complete")
	return nil
}

// gitlabTransport bounds connection setup only. Requests themselves have no
// deadline: a slow merge must be allowed to finish.
func gitlabTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	t.TLSHandshakeTimeout = 10 * time.Second
	return t
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.ParseLogLevel()}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
