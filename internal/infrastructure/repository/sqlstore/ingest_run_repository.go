package sqlstore

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propline/internal/domain/ingestrun"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

type IngestRunRepository struct {
	db *sqlx.DB
}

var ingestRunSelectColumns = qb.Columns(ingestRunTableModel{}, "")

func NewIngestRunRepository(db *sqlx.DB) *IngestRunRepository {
	return &IngestRunRepository{db: db}
}

func (r *IngestRunRepository) Create(ctx context.Context, item *ingestrun.Run) error {
	model, err := runToModel(*item)
	if err != nil {
		return err
	}
	model.ID = 0

	query, args, err := qb.InsertModel("ingest_runs", model, "RETURNING id")
	if err != nil {
		return errors.Wrap(err, "build insert ingest run query")
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), args...); err != nil {
		return errors.Wrapf(err, "insert ingest run source=%s", item.Source)
	}
	item.ID = id
	return nil
}

func (r *IngestRunRepository) Update(ctx context.Context, item ingestrun.Run) error {
	model, err := runToModel(item)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("ingest_runs").
		Set("status", model.Status).
		Set("finished_at", model.FinishedAt).
		Set("duration_ms", model.DurationMS).
		Set("counts", model.Counts).
		Set("stats", model.Stats).
		Set("errors", model.Errors).
		Set("updated_at", model.UpdatedAt).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build update ingest run query")
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return errors.Wrapf(err, "update ingest run id=%d", item.ID)
	}
	return expectAffected(res, "ingest run", item.ID)
}

func (r *IngestRunRepository) GetByID(ctx context.Context, id int64) (ingestrun.Run, bool, error) {
	query, args, err := qb.Select(ingestRunSelectColumns...).From("ingest_runs").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return ingestrun.Run{}, false, errors.Wrap(err, "build select ingest run query")
	}

	var row ingestRunTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return ingestrun.Run{}, false, nil
		}
		return ingestrun.Run{}, false, errors.Wrapf(err, "select ingest run id=%d", id)
	}

	run, err := runFromModel(row)
	if err != nil {
		return ingestrun.Run{}, false, err
	}
	return run, true, nil
}

func (r *IngestRunRepository) ListRunning(ctx context.Context, startedBefore time.Time) ([]ingestrun.Run, error) {
	query, args, err := qb.Select(ingestRunSelectColumns...).From("ingest_runs").
		Where(
			qb.Eq("status", string(ingestrun.StatusRunning)),
			qb.Lt("started_at", utc(startedBefore)),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build list running ingest runs query")
	}

	var rows []ingestRunTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "list running ingest runs")
	}

	out := make([]ingestrun.Run, 0, len(rows))
	for _, row := range rows {
		run, err := runFromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func runToModel(run ingestrun.Run) (ingestRunTableModel, error) {
	counts, err := encodeJSON(run.Counts)
	if err != nil {
		return ingestRunTableModel{}, err
	}
	stats := run.Stats
	if stats == nil {
		stats = map[string]int{}
	}
	statsRaw, err := encodeJSON(stats)
	if err != nil {
		return ingestRunTableModel{}, err
	}
	runErrors := run.Errors
	if runErrors == nil {
		runErrors = []ingestrun.ErrorDetail{}
	}
	errorsRaw, err := encodeJSON(runErrors)
	if err != nil {
		return ingestRunTableModel{}, err
	}

	var finishedAt *time.Time
	if run.FinishedAt != nil {
		at := utc(*run.FinishedAt)
		finishedAt = &at
	}

	return ingestRunTableModel{
		ID:         run.ID,
		PublicID:   run.PublicID,
		Kind:       string(run.Kind),
		Sport:      run.Sport,
		Source:     run.Source,
		Status:     string(run.Status),
		StartedAt:  utc(run.StartedAt),
		FinishedAt: finishedAt,
		DurationMS: run.DurationMS,
		Counts:     counts,
		Stats:      statsRaw,
		Errors:     errorsRaw,
		CreatedAt:  utc(run.CreatedAt),
		UpdatedAt:  utc(run.UpdatedAt),
	}, nil
}

func runFromModel(row ingestRunTableModel) (ingestrun.Run, error) {
	run := ingestrun.Run{
		ID:         row.ID,
		PublicID:   row.PublicID,
		Kind:       ingestrun.Kind(row.Kind),
		Sport:      row.Sport,
		Source:     row.Source,
		Status:     ingestrun.Status(row.Status),
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
		DurationMS: row.DurationMS,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if err := decodeJSON(row.Counts, &run.Counts); err != nil {
		return ingestrun.Run{}, errors.Wrapf(err, "ingest run id=%d counts", row.ID)
	}
	if err := decodeJSON(row.Stats, &run.Stats); err != nil {
		return ingestrun.Run{}, errors.Wrapf(err, "ingest run id=%d stats", row.ID)
	}
	if err := decodeJSON(row.Errors, &run.Errors); err != nil {
		return ingestrun.Run{}, errors.Wrapf(err, "ingest run id=%d errors", row.ID)
	}
	return run, nil
}
