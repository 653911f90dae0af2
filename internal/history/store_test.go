package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/rvforms/internal/core"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs   []execCall
	execErr error
	rows    *fakeRows
	queries []execCall
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, execCall{sql: sql, args: args})
	return f.rows, nil
}

// fakeRows serves pre-built rows; each row holds values in selectRecent order.
type fakeRows struct {
	data   [][]any
	pos    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *pgtype.UUID:
			*p = row[i].(pgtype.UUID)
		case *pgtype.Text:
			*p = row[i].(pgtype.Text)
		case *pgtype.Timestamptz:
			*p = row[i].(pgtype.Timestamptz)
		case *string:
			*p = row[i].(string)
		case *int32:
			*p = row[i].(int32)
		case *int64:
			*p = row[i].(int64)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

func TestMigrate(t *testing.T) {
	db := &fakeDB{}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(db.execs) != 1 || !strings.Contains(db.execs[0].sql, "CREATE TABLE IF NOT EXISTS rv_runs") {
		t.Errorf("Migrate() executed %+v", db.execs)
	}

	db.execErr = errors.New("permission denied")
	if err := Migrate(context.Background(), db); err == nil {
		t.Error("Migrate() should surface exec errors")
	}
}

func TestRecordRun(t *testing.T) {
	db := &fakeDB{}
	store := New(db)
	id := uuid.New()
	started := time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)

	err := store.RecordRun(context.Background(), core.RunSummary{
		RunID:      id.String(),
		Variant:    core.VariantValve,
		Project:    "Harbour Tower",
		FileName:   "schedule.xlsx",
		Forms:      12,
		Skipped:    3,
		HeaderRow:  6,
		StartedAt:  started,
		DurationMS: 420,
	})
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if len(db.execs) != 1 {
		t.Fatalf("RecordRun() made %d exec calls, want 1", len(db.execs))
	}

	args := db.execs[0].args
	if got := args[0].(pgtype.UUID); !got.Valid || uuid.UUID(got.Bytes) != id {
		t.Errorf("id arg = %+v, want %s", got, id)
	}
	if got := args[1].(string); got != "Valve" {
		t.Errorf("variant arg = %q, want Valve", got)
	}
	if got := args[8].(pgtype.Text); got.Valid {
		t.Errorf("error arg = %+v, want NULL for a successful run", got)
	}
	if got := args[9].(pgtype.Text); got.Valid {
		t.Errorf("client_ip arg = %+v, want NULL when unknown", got)
	}
	if got := args[10].(pgtype.Timestamptz); !got.Time.Equal(started) {
		t.Errorf("started_at arg = %v, want %v", got.Time, started)
	}
}

func TestRecordRun_InvalidID(t *testing.T) {
	db := &fakeDB{}
	err := New(db).RecordRun(context.Background(), core.RunSummary{RunID: "not-a-uuid"})
	if err == nil {
		t.Fatal("RecordRun() should reject a malformed run id")
	}
	if len(db.execs) != 0 {
		t.Error("nothing should be written for a malformed run id")
	}
}

func TestRecentRuns(t *testing.T) {
	id := uuid.New()
	started := time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)
	rows := &fakeRows{data: [][]any{{
		pgtype.UUID{Bytes: id, Valid: true},
		"Instrument",
		"Harbour Tower",
		pgtype.Text{String: "schedule.xlsx", Valid: true},
		int32(2), int32(1), int32(0), int32(6),
		pgtype.Text{},
		pgtype.Text{String: "10.0.0.7", Valid: true},
		pgtype.Timestamptz{Time: started, Valid: true},
		int64(350),
	}}}
	db := &fakeDB{rows: rows}

	got, err := New(db).RecentRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}

	want := []core.RunSummary{{
		RunID:      id.String(),
		Variant:    core.VariantInstrument,
		Project:    "Harbour Tower",
		FileName:   "schedule.xlsx",
		Forms:      2,
		Skipped:    1,
		HeaderRow:  6,
		ClientIP:   "10.0.0.7",
		StartedAt:  started,
		DurationMS: 350,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RecentRuns() mismatch (-want +got):\n%s", diff)
	}
	if !rows.closed {
		t.Error("rows were not closed")
	}
	if limit := db.queries[0].args[0].(int); limit != DefaultListLimit {
		t.Errorf("limit = %d, want default %d", limit, DefaultListLimit)
	}
}
