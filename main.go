package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/config"
	"github.com/streamsynth-io/streamsynth-engine/pkg/handlers"
	"github.com/streamsynth-io/streamsynth-engine/pkg/llm"
	"github.com/streamsynth-io/streamsynth-engine/pkg/logging"
	"github.com/streamsynth-io/streamsynth-engine/pkg/middleware"
	"github.com/streamsynth-io/streamsynth-engine/pkg/repositories"
	"github.com/streamsynth-io/streamsynth-engine/pkg/services"
	"github.com/streamsynth-io/streamsynth-engine/pkg/timeplus"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("engine", cfg.Timeplus.Addr()),
		zap.String("kafka_brokers", cfg.Kafka.Brokers),
		zap.String("ai_provider", string(cfg.AIProvider())),
		zap.String("metadata_backend", string(cfg.MetadataBackend())))

	ctx := context.Background()

	// The service is useless without the streaming engine; block startup
	// until it answers or the guard gives up.
	engine, err := timeplus.AwaitReady(ctx, &cfg.Timeplus, logger)
	if err != nil {
		logger.Fatal("Streaming engine unreachable", zap.Error(err))
	}
	defer func() { _ = engine.Close() }()

	store, err := newPipelineStore(ctx, cfg, engine, logger)
	if err != nil {
		logger.Fatal("Failed to initialize metadata store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	aiClient, err := llm.NewClient(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create AI client", zap.Error(err))
	}

	synthesizer := services.NewSynthesizer(aiClient, cfg.Kafka.Brokers, logger)
	provisioner := services.NewProvisioner(engine, logger)
	manager := services.NewPipelineManager(synthesizer, provisioner, store, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	pipelineHandler := handlers.NewPipelineHandler(manager, logger)
	pipelineHandler.RegisterRoutes(mux)

	// Serve the management page
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting streamsynth-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newPipelineStore builds the metadata store selected by configuration.
func newPipelineStore(ctx context.Context, cfg *config.Config, engine *timeplus.Client, logger *zap.Logger) (repositories.PipelineStore, error) {
	switch cfg.MetadataBackend() {
	case config.BackendMutableStream:
		return repositories.NewStreamPipelineStore(ctx, engine, cfg.Metadata.StreamName, logger)
	default:
		return repositories.NewSQLitePipelineStore(cfg.Metadata.SQLitePath, logger)
	}
}
