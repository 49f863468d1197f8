package admin

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/justicesearch/internal/config"
	"github.com/cloo-solutions/justicesearch/internal/database"
	"github.com/cloo-solutions/justicesearch/internal/mediahub"
	"github.com/cloo-solutions/justicesearch/internal/provider"
	"github.com/cloo-solutions/justicesearch/internal/query"
	"github.com/cloo-solutions/justicesearch/internal/repository"
	"github.com/cloo-solutions/justicesearch/internal/service"
	"github.com/cloo-solutions/justicesearch/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Stack is everything a search process needs, built from config.
type Stack struct {
	Pool     *pgxpool.Pool
	Registry *provider.Registry
	Search   *service.SearchService

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// BuildStack connects to the store and registers every configured provider.
// The internal store is always registered first so its results win ties.
func BuildStack(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stack, error) {
	stack := &Stack{}

	pool, err := database.NewPool(ctx, database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	stack.Pool = pool
	stack.closers = append(stack.closers, pool.Close)
	logger.Info("connected to database", zap.Int32("max_conns", cfg.DBMaxConns))

	store, err := provider.NewStoreProvider(repository.NewEntityRepository(pool), provider.StoreConfig{
		Concurrency: cfg.StoreConcurrency,
	}, logger)
	if err != nil {
		stack.Close()
		return nil, err
	}
	stack.closers = append(stack.closers, store.Close)

	registry, err := provider.NewRegistry(store)
	if err != nil {
		stack.Close()
		return nil, err
	}

	if cfg.HasMediaHub() {
		var signer provider.URLSigner
		if cfg.HasS3() {
			s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
				Endpoint:        cfg.S3Endpoint,
				Region:          cfg.S3Region,
				AccessKeyID:     cfg.S3AccessKey,
				SecretAccessKey: cfg.S3SecretKey,
				Bucket:          cfg.S3Bucket,
				UsePathStyle:    true,
			})
			if err != nil {
				stack.Close()
				return nil, fmt.Errorf("failed to create S3 client: %w", err)
			}
			signer = s3Client
			logger.Info("media thumbnails will be presigned", zap.String("bucket", cfg.S3Bucket))
		}

		hub := provider.NewMediaHubProvider(
			mediahub.NewClient(cfg.MediaHubURL, cfg.MediaHubAPIKey),
			signer,
			provider.MediaHubConfig{ProjectID: cfg.MediaHubProjectID},
			logger,
		)
		if err := registry.Register(hub); err != nil {
			stack.Close()
			return nil, err
		}
		logger.Info("media hub provider registered", zap.String("url", cfg.MediaHubURL))
	}
	stack.Registry = registry

	gazetteer := query.DefaultGazetteer()
	if cfg.GazetteerFile != "" {
		gazetteer, err = query.LoadGazetteer(cfg.GazetteerFile)
		if err != nil {
			stack.Close()
			return nil, fmt.Errorf("failed to load gazetteer: %w", err)
		}
		logger.Info("loaded gazetteer", zap.String("file", cfg.GazetteerFile), zap.Strings("regions", gazetteer.Codes()))
	}

	stack.Search = service.NewSearchService(registry, query.NewBuilder(gazetteer), service.Config{
		ProviderTimeout:     cfg.ProviderTimeout,
		FastProviderTimeout: cfg.FastProviderTimeout,
		MaxLimit:            cfg.MaxLimit,
	}, logger)

	return stack, nil
}
