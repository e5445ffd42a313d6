package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/roster-sync/external/sleeper"
	"github.com/riskibarqy/roster-sync/internal/config"
	"github.com/riskibarqy/roster-sync/internal/domain/identity"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
	"github.com/riskibarqy/roster-sync/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/roster-sync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/roster-sync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/roster-sync/internal/interfaces/httpapi"
	"github.com/riskibarqy/roster-sync/internal/observability"
	"github.com/riskibarqy/roster-sync/internal/platform/logging"
	"github.com/riskibarqy/roster-sync/internal/platform/resilience"
	"github.com/riskibarqy/roster-sync/internal/usecase"
)

// App holds the wired HTTP server and the optional background scheduler.
type App struct {
	Server    *http.Server
	Scheduler *usecase.RosterSyncScheduler
	Service   *usecase.RosterSyncService

	db *sqlx.DB
}

type storage struct {
	rosterSync rostersync.Repository
	identities identity.Repository
	db         *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	store, err := openStorage(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.IdentityCacheTTL > 0 {
		store.identities = cache.NewIdentityRepository(store.identities, cfg.IdentityCacheTTL)
	}

	fetcher := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL:      cfg.SleeperBaseURL,
		Timeout:      cfg.SleeperTimeout,
		MaxRetries:   cfg.SleeperMaxRetries,
		RetryBackoff: cfg.SleeperRetryBackoff,
		Logger:       logger.Named("sleeper"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SleeperCircuitHalfOpenMax,
		},
	})

	var syncMetrics usecase.SyncMetrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metrics := observability.NewSyncMetrics()
		metrics.TrackCircuitBreaker(cfg.RosterPlatform, fetcher.Breaker())
		syncMetrics = metrics
		metricsHandler = metrics.Handler()
	}

	service := usecase.NewRosterSyncService(
		usecase.RosterSyncConfig{
			Platform:      cfg.RosterPlatform,
			Source:        cfg.RosterSyncSource,
			DefaultWeek:   cfg.RosterSyncWeek,
			DefaultSeason: cfg.RosterSyncSeason,
			MaxWorkers:    cfg.RosterSyncMaxWorkers,
		},
		fetcher,
		store.rosterSync,
		store.identities,
		syncMetrics,
		logger.Named("roster_sync"),
	)

	handler := httpapi.NewHandler(service, cfg.RosterSyncLeagueIDs, logger.Named("http"))
	router := httpapi.NewRouter(handler, logger.Named("http"), httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		MetricsHandler:     metricsHandler,
	})

	out := &App{
		Server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		Service: service,
		db:      store.db,
	}
	if cfg.RosterSyncInterval > 0 {
		out.Scheduler = usecase.NewRosterSyncScheduler(
			service,
			cfg.RosterSyncLeagueIDs,
			cfg.RosterSyncInterval,
			rostersync.Options{},
			logger.Named("scheduler"),
		)
	}

	return out, nil
}

// Close releases the database pool when one was opened.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func openStorage(cfg config.Config, logger *logging.Logger) (storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage, state is lost on restart")
		return storage{
			rosterSync: memory.NewRosterSyncRepository(),
			identities: memory.NewIdentityRepository(nil),
		}, nil
	case config.StorageDriverPostgres:
		db, err := openDB(cfg)
		if err != nil {
			return storage{}, err
		}
		logger.Info("postgres storage ready", "db_name", dbNameFromURL(cfg.DBURL))
		return storage{
			rosterSync: postgres.NewRosterSyncRepository(db),
			identities: postgres.NewIdentityRepository(db),
			db:         db,
		}, nil
	default:
		return storage{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
