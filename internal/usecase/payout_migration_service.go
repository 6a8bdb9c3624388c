package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/ingestrun"
	"github.com/riskibarqy/propline/internal/domain/marketquote"
	"github.com/riskibarqy/propline/internal/domain/payout"
	"github.com/riskibarqy/propline/internal/domain/rawdata"
	"github.com/riskibarqy/propline/internal/platform/id"
	"github.com/riskibarqy/propline/internal/platform/logging"
)

const (
	defaultMigrationBatchSize = 500
	migrationSource           = "payout_migration"
	migrationSport            = "ALL"
	providerFormatOriginalKey = "original"
)

// Keys of ingestrun.Run.Stats for migration runs.
const (
	StatTotal       = "total"
	StatMigrated    = "migrated"
	StatSkipped     = "skipped"
	StatFailed      = "failed"
	StatHashChanges = "hash_changes"
	StatFallbacks   = "fallbacks"
)

type MigrateOptions struct {
	BatchSize int
	// DryRun computes stats without writing quotes. The tracking run is still recorded.
	DryRun bool
}

// MigrationStats summarizes one payout schema migration.
type MigrationStats struct {
	RunID       int64                   `json:"run_id"`
	Status      ingestrun.Status        `json:"status"`
	DryRun      bool                    `json:"dry_run"`
	Total       int                     `json:"total_quotes"`
	Migrated    int                     `json:"migrated_quotes"`
	Skipped     int                     `json:"skipped_quotes"`
	Failed      int                     `json:"failed_quotes"`
	HashChanges int                     `json:"hash_changes"`
	Fallbacks   int                     `json:"fallback_conversions"`
	Batches     int                     `json:"batches"`
	StartedAt   time.Time               `json:"started_at"`
	FinishedAt  time.Time               `json:"finished_at"`
	Errors      []ingestrun.ErrorDetail `json:"errors"`
}

// ChurnRate is the share of examined quotes whose line hash changed, in percent.
func (s MigrationStats) ChurnRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.HashChanges) / float64(s.Total) * 100
}

func (s MigrationStats) statsMap() map[string]int {
	return map[string]int{
		StatTotal:       s.Total,
		StatMigrated:    s.Migrated,
		StatSkipped:     s.Skipped,
		StatFailed:      s.Failed,
		StatHashChanges: s.HashChanges,
		StatFallbacks:   s.Fallbacks,
	}
}

// PayoutMigrationService rewrites legacy payout schemas into the canonical
// shape and recomputes line hashes.
type PayoutMigrationService struct {
	quoteRepo  marketquote.Repository
	runRepo    ingestrun.Repository
	normalizer *payout.Normalizer
	ids        id.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewPayoutMigrationService(
	quoteRepo marketquote.Repository,
	runRepo ingestrun.Repository,
	normalizer *payout.Normalizer,
	ids id.Generator,
	logger *logging.Logger,
) *PayoutMigrationService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PayoutMigrationService{
		quoteRepo:  quoteRepo,
		runRepo:    runRepo,
		normalizer: normalizer,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
	}
}

type batchOutcome struct {
	updates     []marketquote.PayoutUpdate
	hashChanges int
	fallbacks   int
}

// Migrate walks every quote with a payout schema in id order. Each batch is
// committed on its own, so a failed batch does not undo earlier ones.
func (s *PayoutMigrationService) Migrate(ctx context.Context, opts MigrateOptions) (MigrationStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PayoutMigrationService.Migrate")
	defer span.End()

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultMigrationBatchSize
	}

	publicID, err := s.ids.NewID()
	if err != nil {
		return MigrationStats{}, errors.Wrap(err, "generate run id")
	}
	startedAt := s.now().UTC()
	run := ingestrun.Run{
		PublicID:  publicID,
		Kind:      ingestrun.KindPayoutMigration,
		Sport:     migrationSport,
		Source:    migrationSource,
		Status:    ingestrun.StatusRunning,
		StartedAt: startedAt,
		CreatedAt: startedAt,
		UpdatedAt: startedAt,
	}
	if err := s.runRepo.Create(ctx, &run); err != nil {
		return MigrationStats{}, errors.Wrap(err, "create migration run")
	}

	stats := MigrationStats{RunID: run.ID, DryRun: opts.DryRun, StartedAt: startedAt, Errors: []ingestrun.ErrorDetail{}}
	s.logger.InfoContext(ctx, "payout migration started", "run_id", run.ID, "batch_size", batchSize, "dry_run", opts.DryRun)

	var afterID int64
	listFailed := false
	for {
		quotes, err := s.quoteRepo.ListWithPayout(ctx, afterID, batchSize)
		if err != nil {
			stats.Errors = append(stats.Errors, ingestrun.ErrorDetail{
				ErrorType: ingestrun.ErrorTypeMigration,
				Message:   errors.Wrap(err, "list quotes").Error(),
				Context:   map[string]any{"after_id": afterID},
				Timestamp: s.now().UTC(),
			})
			listFailed = true
			break
		}
		if len(quotes) == 0 {
			break
		}
		afterID = quotes[len(quotes)-1].ID
		stats.Batches++

		outcome := s.migrateBatch(ctx, quotes, &stats)
		if len(outcome.updates) > 0 && !opts.DryRun {
			if err := s.quoteRepo.ApplyPayoutUpdates(ctx, outcome.updates); err != nil {
				s.logger.ErrorContext(ctx, "payout migration batch commit failed", "run_id", run.ID, "batch", stats.Batches, "error", err)
				stats.Errors = append(stats.Errors, ingestrun.ErrorDetail{
					ErrorType: ingestrun.ErrorTypeBatchCommit,
					Message:   err.Error(),
					Context:   map[string]any{"batch": stats.Batches, "first_quote_id": outcome.updates[0].QuoteID, "size": len(outcome.updates)},
					Timestamp: s.now().UTC(),
				})
				stats.Failed += len(outcome.updates)
				continue
			}
		}
		stats.Migrated += len(outcome.updates)
		stats.HashChanges += outcome.hashChanges
		stats.Fallbacks += outcome.fallbacks

		s.logger.InfoContext(ctx, "payout migration batch done",
			"run_id", run.ID,
			"batch", stats.Batches,
			"examined", stats.Total,
			"migrated", stats.Migrated,
			"hash_changes", stats.HashChanges,
		)
	}

	finishedAt := s.now().UTC()
	stats.FinishedAt = finishedAt
	stats.Status = ingestrun.StatusFor(stats.Failed, stats.Total)
	if listFailed {
		stats.Status = ingestrun.StatusFailed
	}

	run.Finish(stats.Status, finishedAt)
	run.Counts.TotalRaw = stats.Total
	run.Stats = stats.statsMap()
	run.Errors = append([]ingestrun.ErrorDetail(nil), stats.Errors...)
	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.ErrorContext(ctx, "finalize migration run failed", "run_id", run.ID, "error", err)
	}
	s.logger.InfoContext(ctx, "payout migration finished",
		"run_id", run.ID,
		"status", stats.Status,
		"total", stats.Total,
		"migrated", stats.Migrated,
		"hash_changes", stats.HashChanges,
		"churn_rate", stats.ChurnRate(),
	)
	return stats, nil
}

func (s *PayoutMigrationService) migrateBatch(ctx context.Context, quotes []marketquote.MarketQuote, stats *MigrationStats) batchOutcome {
	var out batchOutcome
	for _, q := range quotes {
		stats.Total++

		update, changed, fallback, err := s.migrateQuote(q)
		if err != nil {
			stats.Failed++
			stats.Errors = append(stats.Errors, ingestrun.ErrorDetail{
				ErrorType: ingestrun.ErrorTypeMigration,
				Message:   err.Error(),
				Context:   map[string]any{"quote_id": q.ID, "prop_id": q.PropID, "source": q.Source},
				Timestamp: s.now().UTC(),
			})
			continue
		}
		if update == nil {
			stats.Skipped++
			continue
		}
		if changed {
			out.hashChanges++
			s.logger.InfoContext(ctx, "line hash changed", "quote_id", q.ID, "old_hash", q.LineHash, "new_hash", update.LineHash)
		}
		if fallback {
			out.fallbacks++
		}
		out.updates = append(out.updates, *update)
	}
	return out
}

// migrateQuote returns a nil update for rows that are already canonical.
func (s *PayoutMigrationService) migrateQuote(q marketquote.MarketQuote) (*marketquote.PayoutUpdate, bool, bool, error) {
	legacy, doc, err := payout.Decode(q.PayoutSchema)
	if err != nil {
		return nil, false, false, errors.Wrapf(err, "quote %d", q.ID)
	}
	if legacy.IsCanonical() {
		return nil, false, false, nil
	}
	if !q.PropType.Valid() {
		return nil, false, false, errors.Newf("quote %d: unknown prop type %q", q.ID, q.PropType)
	}

	converted, fallback, err := s.convertLegacy(q, legacy, doc)
	if err != nil {
		return nil, false, false, errors.Wrapf(err, "quote %d", q.ID)
	}

	format := make(map[string]any, len(legacy.ProviderFormat)+1)
	for k, v := range legacy.ProviderFormat {
		format[k] = v
	}
	if _, ok := format[providerFormatOriginalKey]; !ok {
		format[providerFormatOriginalKey] = doc
	}
	converted.ProviderFormat = format

	schema, err := payout.Encode(converted)
	if err != nil {
		return nil, false, false, errors.Wrapf(err, "quote %d", q.ID)
	}
	newHash := marketquote.LineHash(q.PropType, q.OfferedLine, converted)
	return &marketquote.PayoutUpdate{
		QuoteID:      q.ID,
		PayoutSchema: schema,
		LineHash:     newHash,
		UpdatedAt:    s.now().UTC(),
	}, newHash != q.LineHash, fallback, nil
}

// convertLegacy re-runs the normalizer over a synthetic record built from
// the legacy fields and falls back to the magnitude heuristic when that fails
// or yields an invalid payout. A row neither path can validate is reported
// and left untouched.
func (s *PayoutMigrationService) convertLegacy(q marketquote.MarketQuote, legacy payout.CanonicalPayout, doc map[string]any) (payout.CanonicalPayout, bool, error) {
	extras := rawdata.NewExtras()
	for _, key := range payout.BoostKeys {
		if v, ok := doc[key]; ok {
			extras.Set(key, v)
		}
	}
	synthetic := rawdata.ExternalProp{
		ProviderName:   q.Source,
		ProviderPropID: q.PublicID,
		PayoutType:     string(legacy.Type),
		OverOdds:       legacy.Over,
		UnderOdds:      legacy.Under,
		Extras:         extras,
	}

	normalized, err := s.normalizer.Normalize(synthetic)
	if err == nil {
		err = normalized.Validate()
	}
	if err == nil {
		return normalized, false, nil
	}

	payoutType, perr := payout.ParseType(string(legacy.Type))
	if perr != nil {
		payoutType = payout.TypeStandard
	}
	fallback := payout.HeuristicFallback(payoutType, legacy.Over, legacy.Under)
	if verr := fallback.Validate(); verr != nil {
		return payout.CanonicalPayout{}, false, errors.Wrapf(verr, "no valid payout conversion (normalizer: %v)", err)
	}
	return fallback, true, nil
}
