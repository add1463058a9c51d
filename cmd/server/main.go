package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxth/mediadl/internal/app"
	"github.com/maxth/mediadl/internal/backend"
	"github.com/maxth/mediadl/internal/config"
	"github.com/maxth/mediadl/internal/constants"
	"github.com/maxth/mediadl/internal/domain"
	httpapp "github.com/maxth/mediadl/internal/http"
	"github.com/maxth/mediadl/internal/logger"
	"github.com/maxth/mediadl/internal/runner"
	"github.com/maxth/mediadl/internal/spotify"
	"github.com/maxth/mediadl/internal/storage"
	"github.com/maxth/mediadl/internal/store"
	"github.com/maxth/mediadl/internal/tagging"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	pf, err := config.LoadProfiles(cfg.ProfilesFile)
	if err != nil {
		appLogger.Error("Failed to load profiles", "error", err)
		os.Exit(1)
	}
	profiles := backend.DefaultProfiles(cfg)
	if err := backend.ApplyOverrides(profiles, pf); err != nil {
		appLogger.Error("Failed to apply profiles", "error", err)
		os.Exit(1)
	}

	dirs := make(map[domain.Platform]string, len(profiles))
	for p, profile := range profiles {
		if err := storage.EnsureDir(profile.Dir); err != nil {
			appLogger.Error("Failed to create output directory", "dir", profile.Dir, "error", err)
			os.Exit(1)
		}
		dirs[p] = profile.Dir
	}

	// Initialize job store and metadata cache
	var (
		jobStore store.JobStore
		cache    spotify.Cache
	)
	switch cfg.JobStore {
	case constants.JobStoreSQLite:
		db, err := store.NewSQLiteDB(cfg.DBPath)
		if err != nil {
			appLogger.Error("Failed to init DB", "error", err)
			os.Exit(1)
		}
		jobStore = store.NewSQLiteStore(db)
		cache = db
	default:
		jobStore = store.NewMemoryStore()
		cache = store.NewMemoryCache()
	}
	defer jobStore.Close()

	if !cfg.SpotifyEnabled() {
		appLogger.Warn("Spotify credentials not set; spotify downloads will fail")
	}
	metadata := spotify.NewCachedClient(spotify.NewClient(spotify.Config{
		APIURL:       cfg.SpotifyAPIURL,
		AuthURL:      cfg.SpotifyAuthURL,
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
	}), cache, cfg.MetadataCacheTTL)

	invokers, err := backend.NewInvokers(profiles, cfg.BrandPrefix, cfg.SpotifyFormat, runner.NewCommandRunner(), backend.SpotifyDeps{
		Metadata: metadata,
		Images:   spotify.NewImageFetcher(nil),
		Tagger:   tagging.FileTagger{},
	}, appLogger)
	if err != nil {
		appLogger.Error("Failed to build backends", "error", err)
		os.Exit(1)
	}

	jobService := app.NewJobService(jobStore, invokers, appLogger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if cfg.JobTTL > 0 {
		janitor := app.NewJanitor(jobStore, cfg.JobTTL, constants.DefaultJanitorInterval, appLogger)
		go janitor.Run(ctx)
	}

	// Routes
	h := httpapp.NewHandler(jobService, dirs, cfg.IndexPath, appLogger)

	// Start Server
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: httpapp.NewRouter(h, appLogger),
	}

	go func() {
		appLogger.Info("Maxth Downloader listening", "addr", srv.Addr, "output_root", cfg.OutputRoot, "job_store", cfg.JobStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}
	if err := jobService.Wait(shutdownCtx); err != nil {
		appLogger.Warn("Jobs still running at exit", "error", err)
	}

	appLogger.Info("Server exiting")
}
