package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("q.id", "p.prop_type").
		From("market_quotes q").
		Join("JOIN props p ON p.id = q.prop_id").
		Where(Gt("q.id", int64(10)), IsNotNull("q.payout_schema")).
		OrderBy("q.id").
		Limit(500).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT q.id, p.prop_type FROM market_quotes q JOIN props p ON p.id = q.prop_id WHERE q.id > ? AND q.payout_schema IS NOT NULL ORDER BY q.id LIMIT 500"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != int64(10) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprAndIn(t *testing.T) {
	query, args, err := Select("id").
		From("players").
		Where(Expr("external_refs ->> ? = ?", "prizepicks", "pp-1"), In("sport", []any{"NBA", "WNBA"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM players WHERE external_refs ->> ? = ? AND sport IN (?, ?)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "prizepicks" || args[3] != "WNBA" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		PublicID string `db:"public_id"`
		Name     string `db:"name"`
		Skipped  string `db:"-"`
		internal string
	}

	query, args, err := InsertModel("players", row{PublicID: "p1", Name: "Jokic", internal: "x"}, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO players (public_id, name) VALUES (?, ?) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "p1" || args[1] != "Jokic" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := Update("props").
		Set("active", true).
		SetExpr("updated_at", "?", now).
		Where(Eq("id", int64(7))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE props SET active = ?, updated_at = ? WHERE id = ?"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != true || args[2] != int64(7) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_RequiresWhere(t *testing.T) {
	if _, _, err := Update("props").Set("active", false).ToSQL(); err == nil {
		t.Fatalf("expected error for update without where")
	}
}

func TestColumns(t *testing.T) {
	type row struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}

	got := Columns(row{}, "p")
	if len(got) != 2 || got[0] != "p.id" || got[1] != "p.name" {
		t.Fatalf("unexpected columns: %+v", got)
	}

	query, _, err := InsertModel("players", row{Name: "x"}, "")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}
	if query != "INSERT INTO players (name) VALUES (?)" {
		t.Fatalf("zero id should be omitted, got %s", query)
	}
}
