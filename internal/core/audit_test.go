package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// recordingDB captures Exec calls. Query and QueryRow are not used by these tests.
type recordingDB struct {
	sql  []string
	args [][]interface{}
	err  error
}

func (db *recordingDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	db.sql = append(db.sql, sql)
	db.args = append(db.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), db.err
}

func (db *recordingDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, db.err
}

func (db *recordingDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

func TestPgAuditLogEnsureSchema(t *testing.T) {
	db := &recordingDB{}
	if err := NewPgAuditLog(db).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if len(db.sql) != 1 || !strings.Contains(db.sql[0], "CREATE TABLE IF NOT EXISTS layer_audit_log") {
		t.Errorf("EnsureSchema() ran %q", db.sql)
	}
}

func TestPgAuditLogRecord(t *testing.T) {
	db := &recordingDB{}
	log := NewPgAuditLog(db)

	err := log.Record(context.Background(), AuditEntry{
		Action:       ActionLayerIngest,
		LayerID:      "layer-1",
		DisplayName:  "cities.csv",
		FeatureCount: 2,
		Digest:       "00ff",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if len(db.args) != 1 {
		t.Fatalf("Exec calls = %d, want 1", len(db.args))
	}
	args := db.args[0]
	if len(args) != 9 {
		t.Fatalf("args = %d, want 9", len(args))
	}
	if id, _ := args[0].(string); id == "" {
		t.Error("Record() should mint an id")
	}
	if args[1] != "layer_ingest" || args[2] != "layer-1" || args[4] != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestPgAuditLogErrors(t *testing.T) {
	db := &recordingDB{err: errors.New("connection refused")}
	log := NewPgAuditLog(db)
	ctx := context.Background()

	if err := log.Record(ctx, AuditEntry{Action: ActionLayerDelete}); err == nil || !strings.Contains(err.Error(), "insert audit entry") {
		t.Errorf("Record() error = %v", err)
	}
	if _, err := log.Recent(ctx, 5); err == nil || !strings.Contains(err.Error(), "query audit log") {
		t.Errorf("Recent() error = %v", err)
	}
	if err := log.EnsureSchema(ctx); err == nil {
		t.Error("EnsureSchema() error = nil")
	}
}

func TestPgAuditLogPurgeBefore(t *testing.T) {
	db := &recordingDB{}
	n, err := NewPgAuditLog(db).PurgeBefore(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PurgeBefore() error = %v", err)
	}
	// recordingDB reports "INSERT 0 1", so one row affected.
	if n != 1 {
		t.Errorf("PurgeBefore() = %d, want 1", n)
	}
	if !strings.HasPrefix(db.sql[0], "DELETE FROM layer_audit_log") {
		t.Errorf("PurgeBefore() ran %q", db.sql[0])
	}
}

type purgingAudit struct {
	fakeAudit
	cutoffs []time.Time
}

func (p *purgingAudit) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	p.cutoffs = append(p.cutoffs, cutoff)
	return 3, nil
}

func TestStartAuditRetention(t *testing.T) {
	audit := &purgingAudit{}
	svc := NewService(NewStore(), Options{Audit: audit})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context still runs the initial job before returning.
	svc.StartAuditRetention(ctx, AuditRetentionConfig{RetentionDays: 7})

	if len(audit.cutoffs) != 1 {
		t.Fatalf("purge runs = %d, want 1", len(audit.cutoffs))
	}
	age := time.Since(audit.cutoffs[0])
	if age < 7*24*time.Hour || age > 7*24*time.Hour+time.Minute {
		t.Errorf("cutoff age = %v, want about 7 days", age)
	}
}

func TestStartAuditRetentionWithoutPurger(t *testing.T) {
	svc := NewService(NewStore(), Options{Audit: &fakeAudit{}})

	done := make(chan struct{})
	go func() {
		svc.StartAuditRetention(context.Background(), AuditRetentionConfig{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("StartAuditRetention should return when the recorder cannot purge")
	}
}
