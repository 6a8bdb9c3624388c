package sqlstore

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propline/internal/domain/player"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = qb.Columns(playerTableModel{}, "")

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// FindByExternalRef matches the provider key inside external_refs. The ->>
// operator is understood by both Postgres jsonb and SQLite json columns.
func (r *PlayerRepository) FindByExternalRef(ctx context.Context, provider, externalID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Expr("external_refs ->> ? = ?", strings.TrimSpace(provider), externalID)).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, errors.Wrap(err, "build select player by external ref query")
	}
	return r.getOne(ctx, query, args, "select player by external ref")
}

func (r *PlayerRepository) FindByIdentity(ctx context.Context, name, team, sport string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(
			qb.Eq("name", name),
			qb.Eq("team", team),
			qb.Expr("UPPER(sport) = UPPER(?)", sport),
		).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, errors.Wrap(err, "build select player by identity query")
	}
	return r.getOne(ctx, query, args, "select player by identity")
}

func (r *PlayerRepository) Create(ctx context.Context, item *player.Player) error {
	refs, err := encodeJSON(nonNilRefs(item.ExternalRefs))
	if err != nil {
		return err
	}

	model := playerTableModel{
		PublicID:     item.PublicID,
		Name:         item.Name,
		Team:         item.Team,
		Position:     item.Position,
		Sport:        item.Sport,
		ExternalRefs: refs,
		CreatedAt:    utc(item.CreatedAt),
		UpdatedAt:    utc(item.UpdatedAt),
	}
	query, args, err := qb.InsertModel("players", model, "RETURNING id")
	if err != nil {
		return errors.Wrap(err, "build insert player query")
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), args...); err != nil {
		if isUniqueViolation(err) {
			return player.ErrDuplicate
		}
		return errors.Wrapf(err, "insert player %q", item.Name)
	}
	item.ID = id
	return nil
}

func (r *PlayerRepository) Update(ctx context.Context, item player.Player) error {
	refs, err := encodeJSON(nonNilRefs(item.ExternalRefs))
	if err != nil {
		return err
	}

	query, args, err := qb.Update("players").
		Set("name", item.Name).
		Set("team", item.Team).
		Set("position", item.Position).
		Set("external_refs", refs).
		Set("updated_at", utc(item.UpdatedAt)).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build update player query")
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		if isUniqueViolation(err) {
			return player.ErrDuplicate
		}
		return errors.Wrapf(err, "update player id=%d", item.ID)
	}
	return expectAffected(res, "player", item.ID)
}

func (r *PlayerRepository) getOne(ctx context.Context, query string, args []any, op string) (player.Player, bool, error) {
	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, errors.Wrap(err, op)
	}

	out := player.Player{
		ID:        row.ID,
		PublicID:  row.PublicID,
		Name:      row.Name,
		Team:      row.Team,
		Position:  row.Position,
		Sport:     row.Sport,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := decodeJSON(row.ExternalRefs, &out.ExternalRefs); err != nil {
		return player.Player{}, false, errors.Wrapf(err, "player id=%d external_refs", row.ID)
	}
	return out, true, nil
}

func nonNilRefs(refs map[string]string) map[string]string {
	if refs == nil {
		return map[string]string{}
	}
	return refs
}
