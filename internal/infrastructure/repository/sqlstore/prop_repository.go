package sqlstore

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propline/internal/domain/prop"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

type PropRepository struct {
	db *sqlx.DB
}

var propSelectColumns = qb.Columns(propTableModel{}, "")

func NewPropRepository(db *sqlx.DB) *PropRepository {
	return &PropRepository{db: db}
}

func (r *PropRepository) GetByPlayerAndType(ctx context.Context, playerID int64, propType prop.Type) (prop.Prop, bool, error) {
	query, args, err := qb.Select(propSelectColumns...).From("props").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("prop_type", string(propType)),
		).
		ToSQL()
	if err != nil {
		return prop.Prop{}, false, errors.Wrap(err, "build select prop query")
	}

	var row propTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return prop.Prop{}, false, nil
		}
		return prop.Prop{}, false, errors.Wrapf(err, "select prop player=%d type=%s", playerID, propType)
	}

	return prop.Prop{
		ID:        row.ID,
		PublicID:  row.PublicID,
		PlayerID:  row.PlayerID,
		Type:      prop.Type(row.PropType),
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (r *PropRepository) Create(ctx context.Context, item *prop.Prop) error {
	model := propTableModel{
		PublicID:  item.PublicID,
		PlayerID:  item.PlayerID,
		PropType:  string(item.Type),
		Active:    item.Active,
		CreatedAt: utc(item.CreatedAt),
		UpdatedAt: utc(item.UpdatedAt),
	}
	query, args, err := qb.InsertModel("props", model, "RETURNING id")
	if err != nil {
		return errors.Wrap(err, "build insert prop query")
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), args...); err != nil {
		if isUniqueViolation(err) {
			return prop.ErrDuplicate
		}
		return errors.Wrapf(err, "insert prop player=%d type=%s", item.PlayerID, item.Type)
	}
	item.ID = id
	return nil
}

func (r *PropRepository) MarkActive(ctx context.Context, id int64, seenAt time.Time) error {
	query, args, err := qb.Update("props").
		Set("active", true).
		Set("updated_at", utc(seenAt)).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build mark prop active query")
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return errors.Wrapf(err, "mark prop active id=%d", id)
	}
	return expectAffected(res, "prop", id)
}
