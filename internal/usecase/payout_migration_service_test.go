package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/ingestrun"
	"github.com/riskibarqy/propline/internal/domain/marketquote"
	"github.com/riskibarqy/propline/internal/domain/payout"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/domain/rawdata"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type migrationFixture struct {
	props  *memory.PropRepository
	quotes *memory.MarketQuoteRepository
	runs   *memory.IngestRunRepository
	ids    map[string]int64
}

func newMigrationFixture(t *testing.T) *migrationFixture {
	t.Helper()

	ctx := context.Background()
	f := &migrationFixture{
		props: memory.NewPropRepository(),
		runs:  memory.NewIngestRunRepository(),
		ids:   map[string]int64{},
	}
	f.quotes = memory.NewMarketQuoteRepository(f.props)

	p := prop.Prop{PlayerID: 1, Type: prop.TypePoints, Active: true}
	require.NoError(t, f.props.Create(ctx, &p))

	normalizer := payout.NewNormalizer()
	add := func(name, source, schema, hash string) {
		q := marketquote.MarketQuote{PropID: p.ID, Source: source, LineHash: hash, OfferedLine: 24.5, PayoutSchema: schema}
		require.NoError(t, f.quotes.Create(ctx, &q))
		f.ids[name] = q.ID
	}

	for i, provider := range []string{"prizepicks", "draftkings", "bet365", "underdog"} {
		canonical, err := normalizer.Normalize(rawdata.ExternalProp{ProviderName: provider, OverOdds: payout.Float(1.9 + float64(i)/10), UnderOdds: payout.Float(1.9)})
		require.NoError(t, err)
		schema, err := payout.Encode(canonical)
		require.NoError(t, err)
		add("canonical-"+provider, provider, schema, marketquote.LineHash(prop.TypePoints, 24.5, canonical))
	}

	add("legacy-moneyline", "draftkings", `{"type":"standard","over":-110,"under":150}`, "legacy-hash-1")

	expected, err := normalizer.Normalize(rawdata.ExternalProp{ProviderName: "prizepicks", PayoutType: "standard", OverOdds: payout.Float(1.8), UnderOdds: payout.Float(2.0)})
	require.NoError(t, err)
	add("legacy-same-hash", "prizepicks", `{"type":"standard","over":1.8,"under":2.0}`, marketquote.LineHash(prop.TypePoints, 24.5, expected))

	add("legacy-fallback", "localbook", `{"type":"parlay","over":-120,"under":100,"book_ref":"abc"}`, "legacy-hash-3")
	add("legacy-empty", "fanduel", `{"type":"standard"}`, "legacy-hash-4")
	add("corrupt", "fanduel", `not-json`, "legacy-hash-5")
	return f
}

func (f *migrationFixture) quote(t *testing.T, name string) marketquote.MarketQuote {
	t.Helper()
	for _, q := range f.quotes.All() {
		if q.ID == f.ids[name] {
			return q
		}
	}
	t.Fatalf("quote %s not found", name)
	return marketquote.MarketQuote{}
}

func (f *migrationFixture) service(quotes marketquote.Repository) *PayoutMigrationService {
	svc := NewPayoutMigrationService(quotes, f.runs, payout.NewNormalizer(), nil, nil)
	clock := newStepClock()
	svc.now = clock.Now
	return svc
}

func TestPayoutMigrationService_Migrate(t *testing.T) {
	t.Parallel()

	f := newMigrationFixture(t)
	stats, err := f.service(f.quotes).Migrate(context.Background(), MigrateOptions{BatchSize: 3})
	require.NoError(t, err)

	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 4, stats.Skipped)
	assert.Equal(t, 3, stats.Migrated)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 2, stats.HashChanges)
	assert.Equal(t, 1, stats.Fallbacks)
	assert.Equal(t, 3, stats.Batches)
	assert.LessOrEqual(t, stats.HashChanges, stats.Migrated)
	assert.Equal(t, ingestrun.StatusPartial, stats.Status)
	require.Len(t, stats.Errors, 2)
	for _, detail := range stats.Errors {
		assert.Equal(t, ingestrun.ErrorTypeMigration, detail.ErrorType)
	}
	assert.Contains(t, stats.Errors[0].Message, "no valid payout conversion")
	assert.Equal(t, `{"type":"standard"}`, f.quote(t, "legacy-empty").PayoutSchema)

	moneyline := f.quote(t, "legacy-moneyline")
	converted, _, err := payout.Decode(moneyline.PayoutSchema)
	require.NoError(t, err)
	assert.True(t, converted.IsCanonical())
	assert.Equal(t, payout.VariantMoneyline, converted.VariantCode)
	assert.Equal(t, payout.ConversionNormalized, converted.ConversionMethod)
	assert.InDelta(t, 1.909, *converted.OverMultiplier, 0.001)
	assert.Equal(t, -110.0, *converted.Over)
	original, ok := converted.ProviderFormat["original"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, -110, original["over"])
	assert.NotEqual(t, "legacy-hash-1", moneyline.LineHash)
	assert.Equal(t, marketquote.LineHash(prop.TypePoints, 24.5, converted), moneyline.LineHash)

	fallback := f.quote(t, "legacy-fallback")
	heuristic, _, err := payout.Decode(fallback.PayoutSchema)
	require.NoError(t, err)
	assert.True(t, heuristic.IsHeuristic())
	assert.Equal(t, payout.VariantMoneyline, heuristic.VariantCode)
	assert.Equal(t, payout.TypeStandard, heuristic.Type)
	assert.Equal(t, "abc", heuristic.ProviderFormat["original"].(map[string]any)["book_ref"])

	run, ok, err := f.runs.GetByID(context.Background(), stats.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ingestrun.KindPayoutMigration, run.Kind)
	assert.Equal(t, 2, run.Stats[StatHashChanges])
	assert.Equal(t, 3, run.Stats[StatMigrated])
	assert.Equal(t, ingestrun.StatusPartial, run.Status)
}

func TestPayoutMigrationService_MigrateIsRepeatable(t *testing.T) {
	t.Parallel()

	f := newMigrationFixture(t)
	svc := f.service(f.quotes)
	_, err := svc.Migrate(context.Background(), MigrateOptions{BatchSize: 100})
	require.NoError(t, err)

	again, err := svc.Migrate(context.Background(), MigrateOptions{BatchSize: 100})
	require.NoError(t, err)

	// The unclassifiable and corrupt rows keep failing; nothing is rewritten twice.
	assert.Equal(t, 7, again.Skipped)
	assert.Equal(t, 0, again.Migrated)
	assert.Equal(t, 0, again.Fallbacks)
	assert.Equal(t, 0, again.HashChanges)
	assert.Equal(t, 2, again.Failed)
}

func TestPayoutMigrationService_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	f := newMigrationFixture(t)
	before := f.quotes.All()

	stats, err := f.service(f.quotes).Migrate(context.Background(), MigrateOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, stats.DryRun)
	assert.Equal(t, 3, stats.Migrated)
	assert.Equal(t, 2, stats.HashChanges)
	assert.Equal(t, before, f.quotes.All())
}

func TestPayoutMigrationService_ValidatesConvertedPayouts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	props := memory.NewPropRepository()
	quotes := memory.NewMarketQuoteRepository(props)
	runs := memory.NewIngestRunRepository()
	p := prop.Prop{PlayerID: 1, Type: prop.TypeRebounds, Active: true}
	require.NoError(t, props.Create(ctx, &p))

	// prizepicks reports multipliers, but this legacy row stored American odds.
	american := marketquote.MarketQuote{PropID: p.ID, Source: "prizepicks", LineHash: "legacy-a", OfferedLine: 9.5,
		PayoutSchema: `{"type":"standard","over":-110,"under":150}`}
	require.NoError(t, quotes.Create(ctx, &american))
	tooLow := marketquote.MarketQuote{PropID: p.ID, Source: "prizepicks", LineHash: "legacy-b", OfferedLine: 9.5,
		PayoutSchema: `{"type":"standard","over":1.005,"under":1.002}`}
	require.NoError(t, quotes.Create(ctx, &tooLow))

	svc := NewPayoutMigrationService(quotes, runs, payout.NewNormalizer(), nil, nil)
	stats, err := svc.Migrate(ctx, MigrateOptions{BatchSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Migrated)
	assert.Equal(t, 1, stats.Fallbacks)
	assert.Equal(t, 1, stats.Failed)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0].Message, "over_multiplier")
	assert.Equal(t, tooLow.ID, stats.Errors[0].Context["quote_id"])

	byID := map[int64]marketquote.MarketQuote{}
	for _, q := range quotes.All() {
		byID[q.ID] = q
	}

	converted, _, err := payout.Decode(byID[american.ID].PayoutSchema)
	require.NoError(t, err)
	require.NoError(t, converted.Validate())
	assert.True(t, converted.IsHeuristic())
	assert.Equal(t, payout.VariantMoneyline, converted.VariantCode)
	assert.InDelta(t, 1.909, *converted.OverMultiplier, 0.001)
	assert.InDelta(t, 2.5, *converted.UnderMultiplier, 1e-9)

	assert.Equal(t, `{"type":"standard","over":1.005,"under":1.002}`, byID[tooLow.ID].PayoutSchema)
	assert.Equal(t, "legacy-b", byID[tooLow.ID].LineHash)

	again, err := svc.Migrate(ctx, MigrateOptions{BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, again.Skipped)
	assert.Equal(t, 0, again.Migrated)
	assert.Equal(t, 1, again.Failed)
}

type failingApply struct {
	*memory.MarketQuoteRepository
}

func (failingApply) ApplyPayoutUpdates(context.Context, []marketquote.PayoutUpdate) error {
	return errors.New("deadlock detected")
}

func TestPayoutMigrationService_BatchCommitFailure(t *testing.T) {
	t.Parallel()

	f := newMigrationFixture(t)
	stats, err := f.service(failingApply{f.quotes}).Migrate(context.Background(), MigrateOptions{BatchSize: 100})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Migrated)
	assert.Equal(t, 0, stats.HashChanges)
	assert.Equal(t, 5, stats.Failed)
	assert.Equal(t, ingestrun.StatusPartial, stats.Status)
	assert.Equal(t, ingestrun.ErrorTypeBatchCommit, stats.Errors[len(stats.Errors)-1].ErrorType)
}

func TestGenerateMigrationReport(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report := GenerateMigrationReport(MigrationStats{
		RunID:       7,
		Status:      ingestrun.StatusSuccess,
		Total:       200,
		Migrated:    120,
		Skipped:     80,
		HashChanges: 30,
		Fallbacks:   4,
		StartedAt:   start,
		FinishedAt:  start.Add(90 * time.Second),
	})

	assert.Contains(t, report, "Edge churn rate:   15.00%")
	assert.Contains(t, report, "MONITORING CHECKLIST")
	assert.Contains(t, report, "ROLLBACK PLAN")
	assert.Contains(t, report, "provider_format.original")
	assert.Contains(t, report, "Duration:          1m30s")

	assert.Contains(t, GenerateMigrationReport(MigrationStats{}), "Edge churn rate:   0.00%")
}
