// Package main provides the playback server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/hifigo/hifigo/internal/api/connect"
	"github.com/hifigo/hifigo/internal/app/notification"
	"github.com/hifigo/hifigo/internal/app/playback"
	"github.com/hifigo/hifigo/internal/app/protocol"
	"github.com/hifigo/hifigo/internal/infra/audio"
	"github.com/hifigo/hifigo/internal/infra/config"
	"github.com/hifigo/hifigo/internal/infra/logger"
	"github.com/hifigo/hifigo/internal/infra/qobuz"
	"github.com/hifigo/hifigo/internal/infra/resume"
)

var (
	app        = kingpin.New("hifigo-server", "hifigo playback server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
	doResume   = app.Flag("resume", "Restore the previously saved queue").Bool()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	catalog, err := qobuz.New(qobuz.Config{
		AppID:     cfg.Qobuz.AppID,
		AppSecret: cfg.Qobuz.AppSecret,
		UserToken: cfg.Qobuz.UserToken,
		BaseURL:   cfg.Qobuz.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create qobuz client: %w", err)
	}

	backend, err := audio.New(cfg.Audio.Backend, cfg.Audio.Settings)
	if err != nil {
		return fmt.Errorf("failed to create audio backend: %w", err)
	}

	var store playback.ResumeStore
	if cfg.Resume.Enabled {
		s, err := resume.NewStore(cfg.Resume.Path)
		if err != nil {
			return fmt.Errorf("failed to create resume store: %w", err)
		}
		store = s
	}

	hub := notification.NewHubWithBuffer(cfg.Playback.BufferSize)
	defer hub.Close()

	player := playback.NewPlayer(playback.Config{
		JumpInterval: cfg.JumpInterval(),
		PositionTick: cfg.PositionTick(),
		FetchTimeout: cfg.FetchTimeout(),
	}, hub, catalog, backend, store)

	if *doResume && store != nil {
		saved, err := store.Load()
		if err != nil {
			zlog.Warn().Err(err).Msg("Failed to load resume state")
		} else if saved != nil {
			player.Restore(saved)
			zlog.Info().Msgf("Restored queue with %d tracks", saved.TrackList.Len())
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go player.Run(ctx)

	service := apiconnect.NewPlayerService(player, hub)
	authInterceptor := apiconnect.NewAuthInterceptor(cfg.Server.Token)

	mux := http.NewServeMux()
	for path, handler := range service.Handlers(connect.WithInterceptors(authInterceptor)) {
		mux.Handle(path, handler)
	}

	// h2c (HTTP/2 cleartext) so streaming works without TLS
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
		quitCtx, quitCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := player.Dispatch(quitCtx, protocol.Action{Type: protocol.ActionQuit}); err != nil {
			zlog.Error().Msgf("Failed to quit player: %v", err)
		}
		quitCancel()
	case <-player.Done():
		zlog.Info().Msg("Player quit, shutting down...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Close the hub first to terminate active subscriber streams
	hub.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}
