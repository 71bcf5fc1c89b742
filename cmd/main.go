package main

import (
	"chat-wire/infrastructure/httpapi"
	"chat-wire/infrastructure/ws"
	"chat-wire/internal"
	"chat-wire/moderation"
	"chat-wire/observability"
	"chat-wire/projection"
	"chat-wire/repositories"
	"chat-wire/runtime"
	"chat-wire/runtime/workers"
	"chat-wire/services"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	charReplacement, err := characterRune(config.ModerationCharReplacement)
	if err != nil {
		return err
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation (censored wordlists + Aho-Corasick automaton)
	censored, err := moderation.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("loading censored words failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(censored.Words), strings.Join(censored.Languages, ",")))
	moderator, err := moderation.NewModerator(censored.Words, charReplacement)
	if err != nil {
		return fmt.Errorf("building moderator failed: %w", err)
	}

	// 4. Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	monitor := observability.NewMonitor(log)
	timeline := projection.NewTimeline(config.TimelineCapacity)

	orchestrator := runtime.NewOrchestrator(
		log, sup, registry, monitor, timeline,
		config.BufferSize, config.SinkTimeout, config.MetricInterval,
	)

	// 5. Repositories & Services
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	userRepository := repositories.NewUserRepository(db)
	imageHost, err := services.NewDiskImageHost(log, config.UploadDir, "/uploads")
	if err != nil {
		return fmt.Errorf("upload directory failed: %w", err)
	}

	chatService := services.NewChatService(log, messageRepository, userRepository,
		orchestrator, moderator, imageHost, monitor)
	authService := services.NewAuthService(userRepository, imageHost, config.AuthTokenDuration)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Start the Engine
	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	// 8. HTTP Server (REST + realtime gateway)
	gateway := ws.NewGateway(log, orchestrator, chatService,
		config.ConnectionBufferSize, config.WriteTimeout)
	api := httpapi.NewServer(log, authService, chatService, config.AuthTokenDuration)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    address,
		Handler: api.Router(gateway, config.UploadDir),
	}

	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", internal.ChatMapper, func() map[string]any {
			stats := monitor.GetLatest()
			return map[string]any{
				"Online":       len(registry.Snapshot()),
				"Delivered":    stats.Delivered,
				"PushFailures": stats.PushFailures,
				"Recent":       len(timeline.Recent()),
			}
		})
		log.Info("Debug inspector started", "port", config.DebugPort)
	}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

// characterRune ensures the configured replacement is exactly one character.
func characterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
