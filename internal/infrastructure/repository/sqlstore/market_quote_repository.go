package sqlstore

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propline/internal/domain/marketquote"
	"github.com/riskibarqy/propline/internal/domain/prop"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

type MarketQuoteRepository struct {
	db *sqlx.DB
}

var marketQuoteSelectColumns = qb.Columns(marketQuoteTableModel{}, "")

func NewMarketQuoteRepository(db *sqlx.DB) *MarketQuoteRepository {
	return &MarketQuoteRepository{db: db}
}

func (r *MarketQuoteRepository) FindLatestByHash(ctx context.Context, propID int64, source, lineHash string) (marketquote.MarketQuote, bool, error) {
	query, args, err := qb.Select(marketQuoteSelectColumns...).From("market_quotes").
		Where(
			qb.Eq("prop_id", propID),
			qb.Eq("source", source),
			qb.Eq("line_hash", lineHash),
		).
		OrderBy("last_seen_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return marketquote.MarketQuote{}, false, errors.Wrap(err, "build select market quote by hash query")
	}

	var row marketQuoteTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return marketquote.MarketQuote{}, false, nil
		}
		return marketquote.MarketQuote{}, false, errors.Wrapf(err, "select market quote prop=%d source=%s", propID, source)
	}
	return quoteFromRow(row, ""), true, nil
}

func (r *MarketQuoteRepository) Create(ctx context.Context, item *marketquote.MarketQuote) error {
	model := marketQuoteTableModel{
		PublicID:     item.PublicID,
		PropID:       item.PropID,
		Source:       item.Source,
		LineHash:     item.LineHash,
		OfferedLine:  item.OfferedLine,
		PayoutSchema: item.PayoutSchema,
		FirstSeenAt:  utc(item.FirstSeenAt),
		LastSeenAt:   utc(item.LastSeenAt),
		LastChangeAt: utc(item.LastChangeAt),
		CreatedAt:    utc(item.CreatedAt),
		UpdatedAt:    utc(item.UpdatedAt),
	}
	query, args, err := qb.InsertModel("market_quotes", model, "RETURNING id")
	if err != nil {
		return errors.Wrap(err, "build insert market quote query")
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), args...); err != nil {
		return errors.Wrapf(err, "insert market quote prop=%d source=%s", item.PropID, item.Source)
	}
	item.ID = id
	return nil
}

func (r *MarketQuoteRepository) TouchLastSeen(ctx context.Context, id int64, seenAt time.Time) error {
	query, args, err := qb.Update("market_quotes").
		Set("last_seen_at", utc(seenAt)).
		Set("updated_at", utc(seenAt)).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build touch market quote query")
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return errors.Wrapf(err, "touch market quote id=%d", id)
	}
	return expectAffected(res, "market quote", id)
}

// ListWithPayout pages through quotes that carry a payout schema, in id order.
func (r *MarketQuoteRepository) ListWithPayout(ctx context.Context, afterID int64, limit int) ([]marketquote.MarketQuote, error) {
	columns := append(qb.Columns(marketQuoteTableModel{}, "q"), "p.prop_type")
	query, args, err := qb.Select(columns...).From("market_quotes q").
		Join("JOIN props p ON p.id = q.prop_id").
		Where(
			qb.Gt("q.id", afterID),
			qb.Expr("q.payout_schema <> ''"),
		).
		OrderBy("q.id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build list market quotes query")
	}

	var rows []marketQuoteJoinedRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrapf(err, "list market quotes after id=%d", afterID)
	}

	out := make([]marketquote.MarketQuote, 0, len(rows))
	for _, row := range rows {
		out = append(out, quoteFromRow(row.marketQuoteTableModel, prop.Type(row.PropType)))
	}
	return out, nil
}

// ApplyPayoutUpdates rewrites a batch in one transaction; either every
// update lands or none does.
func (r *MarketQuoteRepository) ApplyPayoutUpdates(ctx context.Context, updates []marketquote.PayoutUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin payout update tx")
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range updates {
		query, args, err := qb.Update("market_quotes").
			Set("payout_schema", u.PayoutSchema).
			Set("line_hash", u.LineHash).
			Set("updated_at", utc(u.UpdatedAt)).
			Where(qb.Eq("id", u.QuoteID)).
			ToSQL()
		if err != nil {
			return errors.Wrap(err, "build payout update query")
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return errors.Wrapf(err, "update payout market quote id=%d", u.QuoteID)
		}
		if err := expectAffected(res, "market quote", u.QuoteID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit payout update tx")
	}
	return nil
}

func quoteFromRow(row marketQuoteTableModel, propType prop.Type) marketquote.MarketQuote {
	return marketquote.MarketQuote{
		ID:           row.ID,
		PublicID:     row.PublicID,
		PropID:       row.PropID,
		Source:       row.Source,
		LineHash:     row.LineHash,
		OfferedLine:  row.OfferedLine,
		PayoutSchema: row.PayoutSchema,
		FirstSeenAt:  row.FirstSeenAt,
		LastSeenAt:   row.LastSeenAt,
		LastChangeAt: row.LastChangeAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		PropType:     propType,
	}
}
