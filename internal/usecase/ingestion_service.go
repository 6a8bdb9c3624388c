package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/ingestrun"
	"github.com/riskibarqy/propline/internal/domain/marketquote"
	"github.com/riskibarqy/propline/internal/domain/payout"
	"github.com/riskibarqy/propline/internal/domain/player"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/domain/rawdata"
	"github.com/riskibarqy/propline/internal/platform/id"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

// PropProvider supplies raw provider records. FetchBatch has already applied
// its own retries; any error it returns is final for the run.
type PropProvider interface {
	Name() string
	FetchBatch(ctx context.Context, limit int) ([]rawdata.ExternalProp, error)
}

// LineChangePublisher fans newly created quotes out to downstream consumers.
type LineChangePublisher interface {
	PublishLineChanges(ctx context.Context, sport string, changes []marketquote.LineChange) error
}

// RunOptions tunes one ingestion run. Limit <= 0 lets the provider decide.
// DisableUpsert turns a missing player or prop into a per-record failure
// instead of creating it.
type RunOptions struct {
	Limit         int
	DisableUpsert bool
}

// IngestResult is the caller-facing summary of one run.
type IngestResult struct {
	RunID           int64                   `json:"run_id"`
	RunPublicID     string                  `json:"run_public_id"`
	Status          ingestrun.Status        `json:"status"`
	Sport           string                  `json:"sport"`
	Source          string                  `json:"source"`
	StartedAt       time.Time               `json:"started_at"`
	FinishedAt      time.Time               `json:"finished_at"`
	DurationMS      int64                   `json:"duration_ms"`
	Counts          ingestrun.Counts        `json:"counts"`
	ChangedQuoteIDs []int64                 `json:"changed_quote_ids"`
	NewPropIDs      []int64                 `json:"new_prop_ids"`
	NewPlayerIDs    []int64                 `json:"new_player_ids"`
	Errors          []ingestrun.ErrorDetail `json:"errors"`
}

type IngestionDependencies struct {
	Provider  PropProvider
	Mapper    *PropMapper
	Players   player.Repository
	Props     prop.Repository
	Quotes    marketquote.Repository
	Runs      ingestrun.Repository
	IDs       id.Generator
	Publisher LineChangePublisher
	Logger    *logging.Logger
}

type IngestionService struct {
	provider      PropProvider
	mapper        *PropMapper
	playerRepo    player.Repository
	propRepo      prop.Repository
	quoteRepo     marketquote.Repository
	runRepo       ingestrun.Repository
	ids           id.Generator
	publisher     LineChangePublisher
	logger        *logging.Logger
	sport         string
	uniqueRetries int
	now           func() time.Time
}

// NewIngestionService wires one pipeline for a single provider and sport.
// uniqueRetries bounds how often a lost create race is resolved by re-reading.
func NewIngestionService(deps IngestionDependencies, sport string, uniqueRetries int) *IngestionService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ids := deps.IDs
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	sport = strings.ToUpper(strings.TrimSpace(sport))
	if sport == "" {
		sport = "NBA"
	}
	if uniqueRetries < 0 {
		uniqueRetries = 0
	}
	return &IngestionService{
		provider:      deps.Provider,
		mapper:        deps.Mapper,
		playerRepo:    deps.Players,
		propRepo:      deps.Props,
		quoteRepo:     deps.Quotes,
		runRepo:       deps.Runs,
		ids:           ids,
		publisher:     deps.Publisher,
		logger:        logger,
		sport:         sport,
		uniqueRetries: uniqueRetries,
		now:           time.Now,
	}
}

func (s *IngestionService) Source() string {
	return s.provider.Name()
}

// runState accumulates one run's counters, ids and errors.
type runState struct {
	counts       ingestrun.Counts
	changedIDs   []int64
	newPropIDs   []int64
	newPlayerIDs []int64
	errors       []ingestrun.ErrorDetail
	lineChanges  []marketquote.LineChange
}

func (st *runState) addError(errType string, err error, at time.Time, raw *rawdata.ExternalProp, idx int, extra map[string]any) {
	detail := ingestrun.ErrorDetail{
		ErrorType: errType,
		Message:   err.Error(),
		Context:   map[string]any{},
		Timestamp: at,
	}
	if raw != nil {
		detail.ExternalPropID = raw.ProviderPropID
		detail.Context["item_index"] = idx
		detail.Context["provider_prop_id"] = raw.ProviderPropID
	}
	for k, v := range extra {
		detail.Context[k] = v
	}
	st.errors = append(st.errors, detail)
}

// Run executes one ingestion run end to end. It only returns an error when
// the run record itself cannot be created; every other failure is reported
// through the result.
func (s *IngestionService) Run(ctx context.Context, opts RunOptions) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Run")
	defer span.End()

	source := s.provider.Name()
	publicID, err := s.ids.NewID()
	if err != nil {
		return IngestResult{}, errors.Wrap(err, "generate run id")
	}
	startedAt := s.now().UTC()
	run := ingestrun.Run{
		PublicID:  publicID,
		Kind:      ingestrun.KindIngest,
		Sport:     s.sport,
		Source:    source,
		Status:    ingestrun.StatusRunning,
		StartedAt: startedAt,
		CreatedAt: startedAt,
		UpdatedAt: startedAt,
	}
	if err := s.runRepo.Create(ctx, &run); err != nil {
		return IngestResult{}, errors.Wrap(err, "create ingest run")
	}
	s.logger.InfoContext(ctx, "ingest run started", "run_id", run.ID, "source", source, "sport", s.sport, "limit", opts.Limit, "read_only", opts.DisableUpsert)

	state := &runState{}
	raws, err := s.provider.FetchBatch(ctx, opts.Limit)
	if err != nil {
		err = errors.Mark(err, ErrProviderFetch)
		s.logger.ErrorContext(ctx, "provider fetch failed", "run_id", run.ID, "source", source, "error", err)
		state.addError(ingestrun.ErrorTypeFetch, err, s.now().UTC(), nil, 0, map[string]any{"source": source})
		return s.finalize(ctx, &run, state, ingestrun.StatusFailed), nil
	}

	state.counts.TotalRaw = len(raws)
	for idx := range raws {
		raw := raws[idx]
		var recordErr error
		recovered := panics.Try(func() {
			recordErr = s.processRecord(ctx, run.ID, raw, opts, state)
		})
		if recovered != nil {
			state.addError(ingestrun.ErrorTypePanic, errors.Newf("panic: %v", recovered.Value), s.now().UTC(), &raw, idx, nil)
			s.logger.ErrorContext(ctx, "panic while processing prop", "run_id", run.ID, "provider_prop_id", raw.ProviderPropID, "error", recovered.AsError())
			continue
		}
		if recordErr == nil {
			continue
		}

		errType := ingestrun.ErrorTypeUpsert
		var extra map[string]any
		var mapErr *MappingError
		if errors.As(recordErr, &mapErr) {
			errType = ingestrun.ErrorTypeMapping
			extra = map[string]any{"stage": mapErr.Stage}
		}
		state.addError(errType, recordErr, s.now().UTC(), &raw, idx, extra)
		s.logger.WarnContext(ctx, "prop record failed", "run_id", run.ID, "item_index", idx, "provider_prop_id", raw.ProviderPropID, "error_type", errType, "error", recordErr)
	}

	status := ingestrun.StatusFor(len(state.errors), state.counts.TotalRaw)
	return s.finalize(ctx, &run, state, status), nil
}

func (s *IngestionService) processRecord(ctx context.Context, runID int64, raw rawdata.ExternalProp, opts RunOptions, state *runState) error {
	normalized, err := s.mapper.Map(raw)
	if err != nil {
		return err
	}

	p, created, err := s.upsertPlayer(ctx, normalized, opts)
	if err != nil {
		return errors.Wrap(err, "upsert player")
	}
	if created {
		state.counts.NewPlayers++
		state.newPlayerIDs = append(state.newPlayerIDs, p.ID)
	}

	pr, created, err := s.upsertProp(ctx, p.ID, normalized.Type, opts)
	if err != nil {
		return errors.Wrap(err, "upsert prop")
	}
	if created {
		state.counts.NewProps++
		state.newPropIDs = append(state.newPropIDs, pr.ID)
	}

	return s.handleQuote(ctx, runID, p, pr, normalized, state)
}

func (s *IngestionService) upsertPlayer(ctx context.Context, n prop.Normalized, opts RunOptions) (player.Player, bool, error) {
	existing, found, err := s.findPlayer(ctx, n)
	if err != nil {
		return player.Player{}, false, err
	}
	if found {
		if err := s.refreshPlayer(ctx, &existing, n); err != nil {
			return player.Player{}, false, err
		}
		return existing, false, nil
	}
	if opts.DisableUpsert {
		return player.Player{}, false, errors.Wrapf(ErrReadOnly, "player %q (%s) not found", n.PlayerName, n.TeamAbbreviation)
	}

	publicID, err := s.ids.NewID()
	if err != nil {
		return player.Player{}, false, errors.Wrap(err, "generate player id")
	}
	now := s.now().UTC()
	item := player.Player{
		PublicID:     publicID,
		Name:         n.PlayerName,
		Team:         n.TeamAbbreviation,
		Position:     n.Position,
		Sport:        n.Sport,
		ExternalRefs: map[string]string{n.Source: n.ProviderPlayerID},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.playerRepo.Create(ctx, &item)
	if err == nil {
		return item, true, nil
	}
	if !errors.Is(err, player.ErrDuplicate) {
		return player.Player{}, false, err
	}

	// Another run created the same player first.
	for attempt := 0; attempt < s.uniqueRetries; attempt++ {
		existing, found, ferr := s.findPlayer(ctx, n)
		if ferr != nil {
			return player.Player{}, false, ferr
		}
		if found {
			if err := s.refreshPlayer(ctx, &existing, n); err != nil {
				return player.Player{}, false, err
			}
			return existing, false, nil
		}
	}
	return player.Player{}, false, err
}

func (s *IngestionService) findPlayer(ctx context.Context, n prop.Normalized) (player.Player, bool, error) {
	existing, found, err := s.playerRepo.FindByExternalRef(ctx, n.Source, n.ProviderPlayerID)
	if err != nil || found {
		return existing, found, err
	}
	return s.playerRepo.FindByIdentity(ctx, n.PlayerName, n.TeamAbbreviation, n.Sport)
}

func (s *IngestionService) refreshPlayer(ctx context.Context, p *player.Player, n prop.Normalized) error {
	if !p.Refresh(n.PlayerName, n.TeamAbbreviation, n.Position, n.Source, n.ProviderPlayerID) {
		return nil
	}
	p.UpdatedAt = s.now().UTC()
	return s.playerRepo.Update(ctx, *p)
}

func (s *IngestionService) upsertProp(ctx context.Context, playerID int64, propType prop.Type, opts RunOptions) (prop.Prop, bool, error) {
	existing, found, err := s.propRepo.GetByPlayerAndType(ctx, playerID, propType)
	if err != nil {
		return prop.Prop{}, false, err
	}
	if found {
		return existing, false, s.markPropActive(ctx, &existing)
	}
	if opts.DisableUpsert {
		return prop.Prop{}, false, errors.Wrapf(ErrReadOnly, "prop %s for player %d not found", propType, playerID)
	}

	publicID, err := s.ids.NewID()
	if err != nil {
		return prop.Prop{}, false, errors.Wrap(err, "generate prop id")
	}
	now := s.now().UTC()
	item := prop.Prop{
		PublicID:  publicID,
		PlayerID:  playerID,
		Type:      propType,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.propRepo.Create(ctx, &item)
	if err == nil {
		return item, true, nil
	}
	if !errors.Is(err, prop.ErrDuplicate) {
		return prop.Prop{}, false, err
	}

	for attempt := 0; attempt < s.uniqueRetries; attempt++ {
		existing, found, ferr := s.propRepo.GetByPlayerAndType(ctx, playerID, propType)
		if ferr != nil {
			return prop.Prop{}, false, ferr
		}
		if found {
			return existing, false, s.markPropActive(ctx, &existing)
		}
	}
	return prop.Prop{}, false, err
}

func (s *IngestionService) markPropActive(ctx context.Context, p *prop.Prop) error {
	now := s.now().UTC()
	if err := s.propRepo.MarkActive(ctx, p.ID, now); err != nil {
		return err
	}
	p.Active = true
	p.UpdatedAt = now
	return nil
}

// handleQuote is the change detection step: the line hash alone decides
// whether the market changed.
func (s *IngestionService) handleQuote(ctx context.Context, runID int64, p player.Player, pr prop.Prop, n prop.Normalized, state *runState) error {
	existing, found, err := s.quoteRepo.FindLatestByHash(ctx, pr.ID, n.Source, n.LineHash)
	if err != nil {
		return errors.Wrap(err, "find market quote")
	}
	now := s.now().UTC()
	if found {
		if err := s.quoteRepo.TouchLastSeen(ctx, existing.ID, now); err != nil {
			return errors.Wrap(err, "touch market quote")
		}
		state.counts.Unchanged++
		return nil
	}

	schema, err := payout.Encode(n.Payout)
	if err != nil {
		return err
	}
	publicID, err := s.ids.NewID()
	if err != nil {
		return errors.Wrap(err, "generate quote id")
	}
	quote := marketquote.MarketQuote{
		PublicID:     publicID,
		PropID:       pr.ID,
		Source:       n.Source,
		LineHash:     n.LineHash,
		OfferedLine:  n.OfferedLine,
		PayoutSchema: schema,
		FirstSeenAt:  now,
		LastSeenAt:   now,
		LastChangeAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.quoteRepo.Create(ctx, &quote); err != nil {
		return errors.Wrap(err, "create market quote")
	}

	state.counts.NewQuotes++
	state.counts.LineChanges++
	state.changedIDs = append(state.changedIDs, quote.ID)
	state.lineChanges = append(state.lineChanges, marketquote.LineChange{
		QuoteID:     quote.ID,
		QuotePublic: quote.PublicID,
		PropID:      pr.ID,
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		Team:        p.Team,
		PropType:    pr.Type,
		Source:      n.Source,
		Sport:       n.Sport,
		OfferedLine: n.OfferedLine,
		LineHash:    n.LineHash,
		Payout:      schema,
		ObservedAt:  now,
		RunID:       runID,
	})
	return nil
}

// finalize closes the run record. A failed write is logged and leaves the
// already decided status untouched.
func (s *IngestionService) finalize(ctx context.Context, run *ingestrun.Run, state *runState, status ingestrun.Status) IngestResult {
	finishedAt := s.now().UTC()
	run.Finish(status, finishedAt)
	run.Counts = state.counts
	run.Errors = append([]ingestrun.ErrorDetail(nil), state.errors...)

	if err := s.runRepo.Update(ctx, *run); err != nil {
		s.logger.ErrorContext(ctx, "finalize ingest run failed", "run_id", run.ID, "status", status, "error", err)
	} else {
		s.logger.InfoContext(ctx, "ingest run finalized",
			"run_id", run.ID,
			"source", run.Source,
			"status", status,
			"total_raw", state.counts.TotalRaw,
			"new_quotes", state.counts.NewQuotes,
			"unchanged", state.counts.Unchanged,
			"errors", len(state.errors),
			"duration_ms", run.DurationMS,
		)
	}

	if s.publisher != nil && len(state.lineChanges) > 0 {
		if err := s.publisher.PublishLineChanges(ctx, run.Sport, state.lineChanges); err != nil {
			s.logger.WarnContext(ctx, "publish line changes failed", "run_id", run.ID, "count", len(state.lineChanges), "error", err)
		}
	}

	return IngestResult{
		RunID:           run.ID,
		RunPublicID:     run.PublicID,
		Status:          status,
		Sport:           run.Sport,
		Source:          run.Source,
		StartedAt:       run.StartedAt,
		FinishedAt:      finishedAt,
		DurationMS:      run.DurationMS,
		Counts:          state.counts,
		ChangedQuoteIDs: nonNilIDs(state.changedIDs),
		NewPropIDs:      nonNilIDs(state.newPropIDs),
		NewPlayerIDs:    nonNilIDs(state.newPlayerIDs),
		Errors:          append([]ingestrun.ErrorDetail{}, state.errors...),
	}
}

// StaleRuns lists runs still marked running that started more than threshold
// ago. These are crash signals; nothing here recovers them.
func (s *IngestionService) StaleRuns(ctx context.Context, threshold time.Duration) ([]ingestrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.StaleRuns")
	defer span.End()

	if threshold <= 0 {
		return nil, errors.Wrap(ErrInvalidInput, "stale threshold must be > 0")
	}
	runs, err := s.runRepo.ListRunning(ctx, s.now().UTC().Add(-threshold))
	if err != nil {
		return nil, errors.Wrap(err, "list running ingest runs")
	}
	return runs, nil
}

func (s *IngestionService) GetRun(ctx context.Context, runID int64) (ingestrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.GetRun")
	defer span.End()

	if runID <= 0 {
		return ingestrun.Run{}, errors.Wrap(ErrInvalidInput, "run id must be > 0")
	}
	run, ok, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return ingestrun.Run{}, errors.Wrapf(err, "get ingest run %d", runID)
	}
	if !ok {
		return ingestrun.Run{}, errors.Wrapf(ErrNotFound, "ingest run %d", runID)
	}
	return run, nil
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
