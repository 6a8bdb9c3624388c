package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/propline/internal/config"
	"github.com/riskibarqy/propline/internal/domain/ingestrun"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prizepicksFixture = `{"data":[
  {"external_player_id":"pp-1","player_name":"Anthony Edwards","team":"MIN","prop_category":"Points","line":27.5,
   "provider_prop_id":"pp-p-1","payout_type":"standard","over_odds":1.85,"under_odds":1.95,"updated_at":"2026-03-01T18:00:00Z"},
  {"external_player_id":"pp-2","player_name":"Rudy Gobert","team":"Minnesota Timberwolves","prop_category":"Rebs","line":11.5,
   "provider_prop_id":"pp-p-2","payout_type":"standard","over_odds":1.85,"under_odds":1.95,"updated_at":"2026-03-01T18:00:00Z"}
]}`

const overridesFixture = `
[[props]]
raw = "Rebs"
type = "rebounds"
provider = "prizepicks"
`

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prizepicks.json"), []byte(prizepicksFixture), 0o600))
	overrides := filepath.Join(dir, "taxonomy.toml")
	require.NoError(t, os.WriteFile(overrides, []byte(overridesFixture), 0o600))

	return config.Config{
		AppEnv:                    config.EnvDev,
		DBDriver:                  config.DBDriverSQLite,
		DBURL:                     ":memory:",
		DBMaxOpenConns:            1,
		IngestSport:               "NBA",
		IngestBatchLimit:          100,
		IngestUniqueRetryAttempts: 1,
		IngestMaxConcurrentRuns:   2,
		Providers:                 []string{"prizepicks"},
		PropFeedFixturePath:       dir,
		TaxonomyOverridesPath:     overrides,
		MigrationBatchSize:        50,
	}
}

func TestAppIngestsFixturesEndToEnd(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.Len(t, a.Services, 1)
	assert.Equal(t, "prizepicks", a.Services[0].Source())

	results, err := a.Coordinator.RunAll(ctx, usecase.RunOptions{Limit: 100})
	require.NoError(t, err)
	require.Len(t, results, 1)
	first := results[0]
	assert.Equal(t, ingestrun.StatusSuccess, first.Status, "errors: %v", first.Errors)
	assert.Equal(t, 2, first.Counts.TotalRaw)
	assert.Equal(t, 2, first.Counts.NewPlayers)
	assert.Equal(t, 2, first.Counts.NewQuotes)

	results, err = a.Coordinator.RunAll(ctx, usecase.RunOptions{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, results[0].Counts.Unchanged)
	assert.Zero(t, results[0].Counts.NewQuotes)

	run, err := a.Services[0].GetRun(ctx, first.RunID)
	require.NoError(t, err)
	assert.Equal(t, ingestrun.StatusSuccess, run.Status)

	stats, err := a.Migrator.Migrate(ctx, usecase.MigrateOptions{BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Skipped)
	assert.Zero(t, stats.Failed)
}

func TestAppRejectsMissingFixture(t *testing.T) {
	cfg := testConfig(t)
	cfg.Providers = []string{"prizepicks", "underdog"}

	_, err := New(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "underdog")
}

func TestAppRequiresProviderSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.PropFeedFixturePath = ""
	cfg.PropFeedBaseURL = ""

	_, err := New(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROPFEED_BASE_URL")
}

func TestNewMigratorNeedsNoProviders(t *testing.T) {
	cfg := testConfig(t)
	cfg.Providers = nil
	cfg.PropFeedFixturePath = ""

	a, err := NewMigrator(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	stats, err := a.Migrator.Migrate(context.Background(), usecase.MigrateOptions{DryRun: true})
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.True(t, stats.DryRun)
	assert.Equal(t, ingestrun.StatusSuccess, stats.Status)
}
