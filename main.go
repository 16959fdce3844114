// Command longshot races to redeem promotional gift codes seen in live chat.
// It:
//   - Loads configuration and initializes structured logging.
//   - Validates the primary credential against the platform API (fatal gate).
//   - Starts one independent chat session per unique credential.
//   - Exposes a minimal HTTP server with /healthz, /status, and /metrics.
//
// The process exits once every session has disconnected.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/longshot-dev/longshot/config"
	"github.com/longshot-dev/longshot/history"
	"github.com/longshot-dev/longshot/platform"
	"github.com/longshot-dev/longshot/server"
	"github.com/longshot-dev/longshot/snipe"
	"github.com/longshot-dev/longshot/telemetry"
	"github.com/longshot-dev/longshot/webhook"
)

const version = "1.3.0"

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		fatalExit("config load failed", err)
	}
	if err := cfg.Validate(); err != nil {
		fatalExit("invalid configuration", err)
	}

	telemetry.Init()

	shutdownTracing, err := telemetry.InitTracing("longshot", version)
	if err != nil {
		fatalExit("tracing initialization failed", err)
	}
	defer shutdownTracing()

	api := &platform.Client{BaseURL: cfg.APIBaseURL}

	// Startup gate: the primary credential must resolve a profile before any
	// session accepts live traffic. Later per-request failures are classified
	// and survived instead; only startup is allowed to block and die here.
	profileCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mainProfile, err := api.GetProfile(profileCtx, cfg.Primary().Token)
	cancel()
	if err != nil {
		switch {
		case errors.Is(err, platform.ErrUnauthorized):
			fatalExit("main token verification failed; check token validity", err)
		case errors.Is(err, platform.ErrRateLimited):
			fatalExit("rate-limited; try again later", err)
		default:
			fatalExit("could not verify main token", err)
		}
	}

	slog.Info("starting gift-code sniping", slog.String("account", mainProfile.Username), slog.String("version", version))

	creds := snipe.DedupeCredentials(cfg.Credentials)
	slog.Info("sniping accounts configured", slog.Int("accounts", len(creds)))

	var dispatcher *webhook.Dispatcher
	if cfg.WebhookURL != "" {
		dispatcher = webhook.New(cfg.WebhookURL, cfg.WebBaseURL)
	} else {
		slog.Info("no webhook url configured; notifications disabled")
	}

	var hist *history.Store
	if cfg.DBDsn != "" {
		hist, err = history.Open(cfg.DBDsn)
		if err == nil {
			migrCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			err = hist.Migrate(migrCtx)
			cancel()
		}
		if err != nil {
			slog.Warn("attempt history disabled", slog.Any("err", err))
			hist = nil
		} else {
			defer func() {
				if err := hist.Close(); err != nil {
					slog.Error("failed to close history db", slog.Any("err", err))
				}
			}()
		}
	}

	state := snipe.NewState(api, cfg, dispatcher, nil, hist, len(creds))

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server (health/status/metrics)
	srv := server.New(cfg.HTTPAddr, server.NewMux(state))
	go func() {
		slog.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", slog.Any("err", err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown", slog.Any("err", err))
		}
	}()

	err = snipe.NewSupervisor(state, creds).Run(ctx)
	if ctx.Err() != nil {
		slog.Info("shutdown complete")
		return
	}
	fatalExit("all sessions terminated", err)
}

func setupLogging() {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
}

// fatalExit reports a fatal condition and waits for an interactive
// acknowledgment before exiting, so a double-clicked binary doesn't vanish
// with its error message.
func fatalExit(msg string, err error) {
	if err != nil {
		slog.Error(msg, slog.Any("err", err))
	} else {
		slog.Error(msg)
	}
	fmt.Print("Press the enter key to exit...")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
	os.Exit(1)
}
