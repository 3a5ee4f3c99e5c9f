package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/MATHUR-LUV/Aegis/internal/agent"
	"github.com/MATHUR-LUV/Aegis/internal/classifier"
	"github.com/MATHUR-LUV/Aegis/internal/config"
	"github.com/MATHUR-LUV/Aegis/internal/consumer"
	"github.com/MATHUR-LUV/Aegis/internal/dispatcher"
	"github.com/MATHUR-LUV/Aegis/internal/dlq"
	"github.com/MATHUR-LUV/Aegis/internal/handlers"
	"github.com/MATHUR-LUV/Aegis/internal/logging"
	natsclient "github.com/MATHUR-LUV/Aegis/internal/messaging/nats"
	"github.com/MATHUR-LUV/Aegis/internal/repository"
	"github.com/MATHUR-LUV/Aegis/internal/server"
	"github.com/MATHUR-LUV/Aegis/internal/service"
	"github.com/MATHUR-LUV/Aegis/internal/suppress"
	"github.com/MATHUR-LUV/Aegis/pkg/tokens"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("triage"))
	logging.SetDefault(logger)

	slog.Info("Starting triage service",
		slog.Int("port", cfg.Server.Port),
		slog.String("stream", cfg.Stream.Name),
		slog.String("subject", cfg.Stream.Subject),
		slog.String("group", cfg.Stream.Group),
		slog.String("agent_transport", cfg.Agent.Transport),
	)

	// Connect to NATS with JetStream
	js, err := natsclient.NewJetStreamClient(natsclient.Config{
		URL:           cfg.NATS.URL,
		Name:          cfg.NATS.Name,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer js.Close()

	// Initialize outcome persistence
	var repo repository.Repository
	if cfg.Database.Enabled {
		connString := cfg.Database.Postgres.ConnString()

		log.Println("Running database migrations...")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			log.Fatalf("Failed to initialize migrations: %v", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")

		pgRepo, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		repo = pgRepo
	} else {
		log.Println("Database disabled - keeping outcomes in memory")
		repo = repository.NewMemoryRepository()
	}
	defer repo.Close()

	// Initialize the triage agent client
	var tokenGen *tokens.Generator
	if cfg.Agent.Auth.Enabled {
		if cfg.Agent.Auth.Secret == "" {
			log.Fatal("agent.auth.enabled requires agent.auth.secret")
		}
		tokenGen = tokens.NewGenerator(cfg.Agent.Auth.Secret, cfg.Agent.Auth.TokenTTL)
		log.Println("Agent call authentication enabled")
	}

	var agentClient agent.Client
	switch cfg.Agent.Transport {
	case "nats":
		agentClient = agent.NewNATSClient(js, cfg.Agent.Subject, cfg.Agent.Timeout)
		log.Printf("Agent transport: nats (subject: %s)", cfg.Agent.Subject)
	default:
		agentClient = agent.NewHTTPClient(cfg.Agent.URL, cfg.Agent.Timeout, tokenGen)
		log.Printf("Agent transport: http (url: %s)", cfg.Agent.URL)
	}
	defer agentClient.Close()

	// Initialize incident suppression
	var suppressor suppress.Suppressor
	if cfg.Suppression.Enabled {
		rs, err := suppress.NewRedisSuppressor(cfg.Suppression.RedisURL, cfg.Suppression.Window)
		if err != nil {
			log.Printf("WARNING: Failed to initialize Redis suppressor: %v", err)
			log.Println("Continuing without suppression")
			suppressor = suppress.NoOpSuppressor{}
		} else {
			suppressor = rs
			log.Printf("Suppression enabled (window: %s)", cfg.Suppression.Window)
		}
	} else {
		suppressor = suppress.NoOpSuppressor{}
		log.Println("Suppression disabled in configuration")
	}
	defer suppressor.Close()

	// Initialize Dead Letter Queue
	var dlqQueue *dlq.JetStreamQueue
	if cfg.DLQ.Enabled {
		dlqQueue, err = dlq.NewJetStreamQueue(context.Background(), js)
		if err != nil {
			log.Fatalf("Failed to initialize DLQ: %v", err)
		}
		log.Println("Dead Letter Queue enabled")
	} else {
		log.Println("Dead Letter Queue disabled")
	}

	// Initialize dispatcher
	dispCfg := dispatcher.Config{
		Agent:      agentClient,
		Timeout:    cfg.Agent.Timeout,
		Suppressor: suppressor,
		Repository: repo,
		Logger:     logger,
	}
	if dlqQueue != nil {
		dispCfg.DLQ = dlqQueue
	}
	disp := dispatcher.New(dispCfg)

	// Initialize classifier
	cls := classifier.New(cfg.Classifier.CriticalEventTypes, cfg.Classifier.SubstringFallback)
	if cfg.Classifier.SubstringFallback {
		log.Println("WARNING: substring fallback classification enabled; expect false positives")
	}

	// Start the consumption loop
	cons := consumer.New(js, cls, disp, logger, consumer.StreamConfig{
		Stream:        cfg.Stream.Name,
		Subject:       cfg.Stream.Subject,
		Group:         cfg.Stream.Group,
		AckWait:       cfg.Stream.AckWait,
		MaxDeliver:    cfg.Stream.MaxDeliver,
		MaxAckPending: cfg.Stream.MaxAckPending,
	})

	consumeCtx, consumeCancel := context.WithCancel(context.Background())
	defer consumeCancel()
	if err := cons.Start(consumeCtx); err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}

	// Setup HTTP API
	svc := service.NewService(repo)
	var dlqStats handlers.DLQStats
	if dlqQueue != nil {
		dlqStats = dlqQueue
	}
	handler := handlers.NewHandler(svc, js, dlqStats)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Triage service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	// Stop pulling new messages, let in-flight dispatches finish
	cons.Stop()
	if err := js.Drain(); err != nil {
		log.Printf("Warning: failed to drain NATS connection: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
