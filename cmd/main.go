package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"gamechat/contract"
	"gamechat/infrastructure/push"
	"gamechat/infrastructure/ws"
	"gamechat/moderation"
	"gamechat/repositories"
	"gamechat/runtime"
	"gamechat/runtime/workers"
	"gamechat/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and manages the server lifecycle.
// Errors bubble up here so every defer (badger close included) runs
// before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation
	words, err := moderation.LoadWords()
	if err != nil {
		return fmt.Errorf("wordlist loading failed: %w", err)
	}
	moderator, err := moderation.NewModerator(words, config.ModerationCharReplacement, log)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}

	// 4. Dispatch fabric & workers
	registry := runtime.NewRegistry()
	dispatcher := runtime.NewDispatcher(log, registry, config.SinkTimeout)

	var notifier contract.Notifier = push.NoopNotifier{}
	if config.WebhookURL != "" {
		notifier = push.NewWebhookNotifier(config.WebhookURL)
	}
	notifyWorker := workers.NewNotifyWorker(log, notifier, config.NotificationBufferSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(notifyWorker)
	go sup.Run(ctx)

	// 5. Services
	messageRepository := repositories.NewMessageRepository(db, log)
	receiptRepository := repositories.NewReceiptRepository(db, log)

	presenceService := services.NewPresenceService(log, dispatcher)
	gameService := services.NewGameService(log, dispatcher)
	chatService := services.NewChatService(
		log, dispatcher, presenceService,
		messageRepository, receiptRepository,
		moderator, notifyWorker.Requests(), config.NotifyWhenOnline,
	)

	// 6. Gateway
	gateway := ws.NewServer(
		log, []byte(config.TokenSecret), dispatcher,
		presenceService, chatService, gameService,
		config.SessionBufferSize,
	)

	mux := http.NewServeMux()
	mux.Handle("/ws", gateway)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
