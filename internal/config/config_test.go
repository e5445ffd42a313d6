package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/roster-sync/internal/platform/logging"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")
	t.Setenv("ROSTER_SYNC_INTERVAL", "")
	t.Setenv("ROSTER_SYNC_LEAGUE_IDS", "")
	t.Setenv("STORAGE_DRIVER", "")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev/1"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_LOG_LEVEL", "")
	t.Setenv("ROSTER_PLATFORM", "")
	t.Setenv("ROSTER_SYNC_SOURCE", "")
	t.Setenv("SLEEPER_MAX_RETRIES", "")
	t.Setenv("ROSTER_SYNC_MAX_WORKERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageDriverPostgres {
		t.Fatalf("unexpected StorageDriver: %s", cfg.StorageDriver)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
	if cfg.RosterPlatform != "sleeper" || cfg.RosterSyncSource != "sleeper" {
		t.Fatalf("unexpected platform/source: %s/%s", cfg.RosterPlatform, cfg.RosterSyncSource)
	}
	if cfg.SleeperMaxRetries != 2 {
		t.Fatalf("unexpected SleeperMaxRetries: %d", cfg.SleeperMaxRetries)
	}
	if cfg.RosterSyncMaxWorkers != 4 {
		t.Fatalf("unexpected RosterSyncMaxWorkers: %d", cfg.RosterSyncMaxWorkers)
	}
	if cfg.RosterSyncInterval != 0 {
		t.Fatalf("expected scheduler disabled by default, got interval=%s", cfg.RosterSyncInterval)
	}
	if cfg.PyroscopeAppName != cfg.ServiceName {
		t.Fatalf("expected PyroscopeAppName to default to ServiceName")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "storage driver", key: "STORAGE_DRIVER", value: "mongo"},
		{name: "log level", key: "APP_LOG_LEVEL", value: "verbose"},
		{name: "negative retries", key: "SLEEPER_MAX_RETRIES", value: "-1"},
		{name: "zero workers", key: "ROSTER_SYNC_MAX_WORKERS", value: "0"},
		{name: "bad interval", key: "ROSTER_SYNC_INTERVAL", value: "soon"},
		{name: "negative interval", key: "ROSTER_SYNC_INTERVAL", value: "-1m"},
		{name: "zero circuit failures", key: "SLEEPER_CIRCUIT_FAILURE_COUNT", value: "0"},
		{name: "zero open conns", key: "DB_MAX_OPEN_CONNS", value: "0"},
		{name: "bad week", key: "ROSTER_SYNC_WEEK", value: "three"},
		{name: "negative identity cache ttl", key: "IDENTITY_CACHE_TTL", value: "-5s"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_SchedulerRequiresLeagues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ROSTER_SYNC_INTERVAL", "5m")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when interval is set without league ids")
	}
}

func TestLoad_RosterSyncParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("ROSTER_SYNC_INTERVAL", "10m")
	t.Setenv("ROSTER_SYNC_LEAGUE_IDS", " L1, L2 ,,L1")
	t.Setenv("ROSTER_SYNC_MAX_WORKERS", "8")
	t.Setenv("ROSTER_SYNC_SOURCE", "sleeper-cron")
	t.Setenv("ROSTER_SYNC_SEASON", "2026")
	t.Setenv("ROSTER_SYNC_WEEK", "7")
	t.Setenv("SLEEPER_TIMEOUT", "5s")
	t.Setenv("SLEEPER_CIRCUIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageDriverMemory {
		t.Fatalf("unexpected StorageDriver: %s", cfg.StorageDriver)
	}
	if len(cfg.RosterSyncLeagueIDs) != 2 || cfg.RosterSyncLeagueIDs[0] != "L1" || cfg.RosterSyncLeagueIDs[1] != "L2" {
		t.Fatalf("unexpected RosterSyncLeagueIDs: %v", cfg.RosterSyncLeagueIDs)
	}
	if cfg.RosterSyncInterval != 10*time.Minute {
		t.Fatalf("unexpected RosterSyncInterval: %s", cfg.RosterSyncInterval)
	}
	if cfg.RosterSyncMaxWorkers != 8 {
		t.Fatalf("unexpected RosterSyncMaxWorkers: %d", cfg.RosterSyncMaxWorkers)
	}
	if cfg.RosterSyncSource != "sleeper-cron" {
		t.Fatalf("unexpected RosterSyncSource: %s", cfg.RosterSyncSource)
	}
	if cfg.RosterSyncSeason != 2026 || cfg.RosterSyncWeek != 7 {
		t.Fatalf("unexpected season/week: %d/%d", cfg.RosterSyncSeason, cfg.RosterSyncWeek)
	}
	if cfg.SleeperTimeout != 5*time.Second {
		t.Fatalf("unexpected SleeperTimeout: %s", cfg.SleeperTimeout)
	}
	if cfg.SleeperCircuitEnabled {
		t.Fatalf("expected SleeperCircuitEnabled=false")
	}
}

func TestLoad_ProdRequiresInternalJobToken(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error in prod without INTERNAL_JOB_TOKEN")
	}

	t.Setenv("INTERNAL_JOB_TOKEN", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.InternalJobToken != "secret" {
		t.Fatalf("unexpected InternalJobToken")
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}
