package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/shriyansnaik/multimodal-rag/features/chat"
	"github.com/shriyansnaik/multimodal-rag/features/document"
	"github.com/shriyansnaik/multimodal-rag/features/stats"
	"github.com/shriyansnaik/multimodal-rag/internal/adapter/gemini"
	"github.com/shriyansnaik/multimodal-rag/internal/adapter/unstructured"
	"github.com/shriyansnaik/multimodal-rag/internal/config"
	"github.com/shriyansnaik/multimodal-rag/internal/extract"
	"github.com/shriyansnaik/multimodal-rag/internal/ingest"
	"github.com/shriyansnaik/multimodal-rag/internal/middleware"
	"github.com/shriyansnaik/multimodal-rag/internal/retrieval"
	"github.com/shriyansnaik/multimodal-rag/internal/settings"
	"github.com/shriyansnaik/multimodal-rag/internal/synthesis"
)

type App struct {
	Handler         http.Handler
	DocumentService *document.Service
	ChatService     *chat.Service

	port int
}

func New(cfg *config.Config, deps *Dependencies) (*App, error) {
	// Feature: Settings
	settingsRepo, err := settings.NewFileRepo(cfg.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("settings repo error: %w", err)
	}
	settingsService := settings.NewService(settingsRepo)

	// Seed Gemini API Key from Config
	if cfg.GeminiAPIKey != "" {
		ctx := context.Background()
		set, err := settingsService.Get(ctx)
		if err == nil {
			// Update if empty
			if set.GeminiAPIKey == "" {
				set.GeminiAPIKey = cfg.GeminiAPIKey
				if err := settingsService.Update(ctx, set); err != nil {
					slog.Warn("failed to seed gemini api key", "error", err)
				} else {
					slog.Info("seeded gemini api key from environment")
				}
			}
		} else {
			slog.Warn("failed to fetch settings for seeding", "error", err)
		}
	}

	settingsHandler := settings.NewHandler(settingsService)

	// Adapter: Gemini client, rebuilt whenever the stored key changes
	geminiClient := gemini.NewClient(settingsService)

	// Extraction backend
	hints := extract.Hints{
		MaxCharacters:          cfg.MaxCharacters,
		NewAfterNChars:         cfg.NewAfterNChars,
		CombineTextUnderNChars: cfg.CombineTextUnderNChars,
	}
	var extractor extract.Extractor
	switch cfg.Extractor {
	case "unstructured":
		extractor = unstructured.NewClient(cfg.PartitionURL, hints)
	case "native":
		extractor = extract.NewNative(hints)
	default:
		return nil, fmt.Errorf("unknown extractor %q", cfg.Extractor)
	}

	// Ingestion pipeline
	summarizer := ingest.NewSummarizer(geminiClient, cfg.SummarizeAttempts, cfg.SummarizeWorkers)
	indexer := ingest.NewIndexer(geminiClient, deps.ChunkStore, cfg.EmbedWorkers)
	pipeline := ingest.NewPipeline(extractor, summarizer, indexer, cfg.AssetBase)

	// Feature: Document
	documentService := document.NewService(deps.DocumentRepo, pipeline, deps.ChunkStore, cfg.UploadsDir)
	documentHandler := document.NewHandler(documentService, int(cfg.MaxUploadSizeMB))

	// Feature: Retrieval & Chat
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	retrievalService := retrieval.NewService(geminiClient, deps.ChunkStore, settingsService, queryLogger)
	synthesisService := synthesis.NewService(retrievalService, geminiClient)

	chatService := chat.NewService(synthesisService, chat.NewSessionStore())
	chatHandler := chat.NewHandler(chatService)

	// Feature: Stats
	statsHandler := stats.NewHandler(deps.DocumentRepo, deps.ChunkStore)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /documents", middleware.CorrelationID(enableCORS(documentHandler.Upload)))
	mux.Handle("GET /documents", middleware.CorrelationID(enableCORS(documentHandler.List)))
	mux.Handle("DELETE /documents/{name}", middleware.CorrelationID(enableCORS(documentHandler.Delete)))
	mux.Handle("POST /documents/{name}/reingest", middleware.CorrelationID(enableCORS(documentHandler.Reingest)))

	mux.Handle("POST /chat", middleware.CorrelationID(enableCORS(chatHandler.Ask)))
	mux.Handle("GET /chat/{session}", middleware.CorrelationID(enableCORS(chatHandler.History)))
	mux.Handle("DELETE /chat/{session}", middleware.CorrelationID(enableCORS(chatHandler.Clear)))

	mux.Handle("GET /settings", middleware.CorrelationID(enableCORS(settingsHandler.GetSettings)))
	mux.Handle("PUT /settings", middleware.CorrelationID(enableCORS(settingsHandler.UpdateSettings)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:         mux,
		DocumentService: documentService,
		ChatService:     chatService,
		port:            cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
