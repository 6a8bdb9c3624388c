package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/propline/external/propfeed"
	"github.com/riskibarqy/propline/internal/config"
	"github.com/riskibarqy/propline/internal/domain/payout"
	"github.com/riskibarqy/propline/internal/domain/taxonomy"
	"github.com/riskibarqy/propline/internal/infrastructure/publisher"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/sqlstore"
	idgen "github.com/riskibarqy/propline/internal/platform/id"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/platform/resilience"
	"github.com/riskibarqy/propline/internal/usecase"
)

// App holds the wired components shared by the CLIs.
type App struct {
	Coordinator *usecase.IngestionCoordinator
	Services    []*usecase.IngestionService
	Migrator    *usecase.PayoutMigrationService

	db     *sqlx.DB
	redis  *redis.Client
	logger *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{db: db, logger: logger}

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	normalizer := payout.NewNormalizer()
	mapper := usecase.NewPropMapper(registry, normalizer)
	ids := idgen.NewUUIDGenerator()

	players := sqlstore.NewPlayerRepository(db)
	props := sqlstore.NewPropRepository(db)
	quotes := sqlstore.NewMarketQuoteRepository(db)
	runs := sqlstore.NewIngestRunRepository(db)

	var lineChanges usecase.LineChangePublisher
	if cfg.RedisEnabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			_ = a.Close()
			return nil, errors.Wrapf(err, "ping redis %s", cfg.RedisAddr)
		}
		lineChanges = publisher.NewRedisStreamPublisher(a.redis, cfg.LineChangeStreamPrefix, cfg.LineChangeStreamMaxLen)
	}

	providers, err := buildProviders(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	for _, provider := range providers {
		a.Services = append(a.Services, usecase.NewIngestionService(usecase.IngestionDependencies{
			Provider:  provider,
			Mapper:    mapper,
			Players:   players,
			Props:     props,
			Quotes:    quotes,
			Runs:      runs,
			IDs:       ids,
			Publisher: lineChanges,
			Logger:    logger.With("provider", provider.Name()),
		}, cfg.IngestSport, cfg.IngestUniqueRetryAttempts))
	}
	a.Coordinator = usecase.NewIngestionCoordinator(a.Services, cfg.IngestMaxConcurrentRuns, logger)
	a.Migrator = usecase.NewPayoutMigrationService(quotes, runs, normalizer, ids, logger)

	logger.Info("app wired",
		"db_driver", cfg.DBDriver,
		"providers", cfg.Providers,
		"sport", cfg.IngestSport,
		"redis_enabled", cfg.RedisEnabled,
	)
	return a, nil
}

// NewMigrator wires only what the payout schema migration needs: the
// database and the normalizer. No provider configuration is required.
func NewMigrator(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &App{
		Migrator: usecase.NewPayoutMigrationService(
			sqlstore.NewMarketQuoteRepository(db),
			sqlstore.NewIngestRunRepository(db),
			payout.NewNormalizer(),
			idgen.NewUUIDGenerator(),
			logger,
		),
		db:     db,
		logger: logger,
	}, nil
}

func (a *App) Close() error {
	var err error
	if a.redis != nil {
		err = errors.CombineErrors(err, a.redis.Close())
	}
	if a.db != nil {
		err = errors.CombineErrors(err, a.db.Close())
	}
	return err
}

func buildRegistry(cfg config.Config, logger *logging.Logger) (*taxonomy.Registry, error) {
	registry := taxonomy.NewRegistry()
	if cfg.TaxonomyOverridesPath == "" {
		return registry, nil
	}

	overrides, err := taxonomy.LoadOverrides(cfg.TaxonomyOverridesPath)
	if err != nil {
		return nil, err
	}
	if err := overrides.Apply(registry); err != nil {
		return nil, errors.Wrapf(err, "apply taxonomy overrides %s", cfg.TaxonomyOverridesPath)
	}
	logger.Info("taxonomy overrides applied",
		"path", cfg.TaxonomyOverridesPath,
		"props", len(overrides.Props),
		"teams", len(overrides.Teams),
	)
	return registry, nil
}

// buildProviders prefers fixtures when PROPFEED_FIXTURE_PATH is set: either a
// single file shared by one provider or a directory holding {provider}.json,
// .yaml or .yml per provider.
func buildProviders(cfg config.Config, logger *logging.Logger) ([]usecase.PropProvider, error) {
	if cfg.PropFeedBaseURL == "" && cfg.PropFeedFixturePath == "" {
		return nil, errors.New("one of PROPFEED_BASE_URL or PROPFEED_FIXTURE_PATH is required")
	}

	out := make([]usecase.PropProvider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		if cfg.PropFeedFixturePath != "" {
			path, err := resolveFixture(cfg.PropFeedFixturePath, name, len(cfg.Providers))
			if err != nil {
				return nil, err
			}
			provider, err := propfeed.NewFileProvider(name, path, cfg.IngestSport)
			if err != nil {
				return nil, err
			}
			out = append(out, provider)
			continue
		}

		client, err := propfeed.NewClient(propfeed.ClientConfig{
			Provider:     name,
			BaseURL:      cfg.PropFeedBaseURL,
			Path:         "/" + name + "/props",
			Token:        cfg.PropFeedToken,
			Sport:        cfg.IngestSport,
			Timeout:      cfg.PropFeedTimeout,
			MaxRetries:   cfg.PropFeedMaxRetries,
			RetryBackoff: cfg.PropFeedRetryBackoff,
			Logger:       logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.PropFeedCircuitEnabled,
				FailureThreshold: cfg.PropFeedCircuitFailureCount,
				OpenTimeout:      cfg.PropFeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.PropFeedCircuitHalfOpenMaxReq,
			},
		})
		if err != nil {
			return nil, err
		}
		out = append(out, client)
	}
	return out, nil
}

func resolveFixture(root, provider string, providerCount int) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", errors.Wrapf(err, "stat fixture path %s", root)
	}
	if !info.IsDir() {
		if providerCount > 1 {
			return "", errors.Newf("fixture path %s is a file but %d providers are configured", root, providerCount)
		}
		return root, nil
	}

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		candidate := filepath.Join(root, strings.ToLower(provider)+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.Newf("no fixture for provider %s under %s", provider, root)
}
