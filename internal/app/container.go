package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/skill-scout/internal/config"
	"alfredoptarigan/skill-scout/internal/extractors"
	"alfredoptarigan/skill-scout/internal/repositories"
	"alfredoptarigan/skill-scout/internal/services"
)

// Container holds the services shared by the API server and the CLI.
type Container struct {
	Storage    services.StorageService
	Ingestion  services.IngestionService
	Candidates services.CandidateService
	Matcher    services.Matcher
	Engine     services.SimilarityEngine
}

func New(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (*Container, error) {
	positionRepo := repositories.NewPositionRepository(db)
	statusRepo := repositories.NewStatusRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)
	similarityRepo := repositories.NewSimilarityRepository(db)
	docRepo := repositories.NewDocumentRepository(db)

	storage := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storage.EnsureUploadDir(); err != nil {
		return nil, err
	}

	embedder, err := NewEmbedder(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	engine := newSimilarityEngine(cfg, embedder, log)
	log.Info("similarity engine ready",
		zap.String("model", engine.Model()),
		zap.Int("extra_stop_words", len(cfg.Embedding.ExtraStopWords)))

	ingestion := services.NewIngestionService(
		extractors.NewTableExtractor(log),
		extractors.NewWordSOWExtractor(log),
		extractors.NewPdfSOWExtractor(log),
		positionRepo,
		statusRepo,
		docRepo,
		storage,
		services.IngestionOptions{
			MaxFileSize:       cfg.Storage.MaxFileSize,
			ExtractionTimeout: cfg.Limits.ExtractionTimeout,
		},
		log,
	)

	matcher := services.NewMatcher(
		positionRepo,
		statusRepo,
		candidateRepo,
		services.NewMatchCache(similarityRepo, engine, log),
		services.MatcherOptions{
			Timeout:     cfg.Limits.MatchTimeout,
			Concurrency: cfg.Limits.ScoreConcurrency,
		},
		log,
	)

	return &Container{
		Storage:    storage,
		Ingestion:  ingestion,
		Candidates: services.NewCandidateService(candidateRepo, storage, log),
		Matcher:    matcher,
		Engine:     engine,
	}, nil
}

// NewEmbedder builds the configured embedder, behind the Qdrant vector cache
// when that is enabled.
func NewEmbedder(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.Embedder, error) {
	var (
		embedder services.Embedder
		err      error
	)

	switch cfg.Embedding.Provider {
	case "", "local":
		embedder = services.NewLocalEmbedder(cfg.Embedding.Dimensions)
	case "gemini":
		embedder, err = services.NewGeminiEmbedder(ctx, cfg.Gemini.APIKey, cfg.Embedding.Model, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini embedder: %w", err)
		}
	case "ollama":
		embedder = services.NewOllamaEmbedder(cfg.Ollama.BaseURL, cfg.Embedding.Model, cfg.Ollama.Timeout)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}

	if !cfg.Qdrant.Enabled {
		return embedder, nil
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Embedding.Dimensions,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant: %w", err)
	}
	if err := qdrantService.InitCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant collection: %w", err)
	}

	return services.NewCachedEmbedder(embedder, qdrantService, log), nil
}

func newSimilarityEngine(cfg *config.Config, embedder services.Embedder, log *zap.Logger) services.SimilarityEngine {
	return services.NewSimilarityEngine(services.NewPreprocessor(cfg.Embedding.ExtraStopWords...), embedder, log)
}
