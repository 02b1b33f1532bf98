package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/tessera-ai/tessera/internal/common"
	"github.com/tessera-ai/tessera/internal/interfaces"
	"github.com/tessera-ai/tessera/internal/services/embeddings"
	"github.com/tessera-ai/tessera/internal/services/engine"
	"github.com/tessera-ai/tessera/internal/services/index"
	"github.com/tessera-ai/tessera/internal/services/search"
	"github.com/tessera-ai/tessera/internal/services/segmenter"
	"github.com/tessera-ai/tessera/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	DB           *badger.BadgerDB
	ChunkStorage interfaces.ChunkStorage
	Embedder     interfaces.EmbeddingService
	Index        interfaces.IndexService
	Search       interfaces.SearchService
	Engine       interfaces.EngineService
}

// New wires the retrieval engine: storage, embedder, dual index, hybrid
// search and the engine facade. In-memory tenant indexes are rebuilt
// from stored chunks before New returns, so queries work immediately
// after a restart.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	chunkStorage := badger.NewChunkStorage(db, logger)
	embedder := embeddings.NewLocalService(config.Embedding.Dimension, logger)
	indexManager := index.NewManager(chunkStorage, embedder, config.Workers.Concurrency, logger)
	searchService := search.NewService(indexManager, logger)

	selector := segmenter.NewSelector(config.Chunking.DefaultStrategy, logger)
	segmenterService := segmenter.NewService(&config.Chunking, logger)

	engineService := engine.NewService(selector, segmenterService, indexManager, searchService, config, logger)

	if err := indexManager.RebuildAll(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to rebuild tenant indexes: %w", err)
	}

	return &App{
		Config:       config,
		Logger:       logger,
		DB:           db,
		ChunkStorage: chunkStorage,
		Embedder:     embedder,
		Index:        indexManager,
		Search:       searchService,
		Engine:       engineService,
	}, nil
}

// Close compacts and releases the application's resources
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.RunGC(); err != nil {
		a.Logger.Warn().Err(err).Msg("Value log GC failed during shutdown")
	}
	lsm, vlog := a.DB.Size()
	a.Logger.Debug().
		Int64("lsm_bytes", lsm).
		Int64("vlog_bytes", vlog).
		Msg("Closing storage")
	return a.DB.Close()
}
