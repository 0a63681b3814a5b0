package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionLayerIngest AuditAction = "layer_ingest"
	ActionLayerDelete AuditAction = "layer_delete"
)

// AuditEntry records one change to the layer store.
type AuditEntry struct {
	ID           string      `json:"id"`
	Action       AuditAction `json:"action"`
	LayerID      string      `json:"layerId"`
	DisplayName  string      `json:"displayName,omitempty"`
	FeatureCount int         `json:"featureCount"`
	Digest       string      `json:"digest,omitempty"`
	IPAddress    string      `json:"ipAddress,omitempty"`
	UserAgent    string      `json:"userAgent,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// AuditRecorder persists audit entries. Layers themselves are never persisted.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)
}

// nopAudit is used when no audit database is configured.
type nopAudit struct{}

func (nopAudit) Record(context.Context, AuditEntry) error { return nil }

func (nopAudit) Recent(context.Context, int) ([]AuditEntry, error) { return nil, nil }

const auditSchema = `
CREATE TABLE IF NOT EXISTS layer_audit_log (
	id            UUID PRIMARY KEY,
	action        TEXT NOT NULL,
	layer_id      TEXT NOT NULL,
	display_name  TEXT,
	feature_count INTEGER NOT NULL DEFAULT 0,
	digest        TEXT,
	ip_address    TEXT,
	user_agent    TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertAuditEntry = `
INSERT INTO layer_audit_log (id, action, layer_id, display_name, feature_count, digest, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const selectRecentAudit = `
SELECT id::text, action, layer_id, COALESCE(display_name, ''), feature_count, COALESCE(digest, ''),
       COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
FROM layer_audit_log
ORDER BY created_at DESC
LIMIT $1`

const deleteAuditBefore = `DELETE FROM layer_audit_log WHERE created_at < $1`

// PgAuditLog stores audit entries in PostgreSQL.
type PgAuditLog struct {
	db DBTX
}

// NewPgAuditLog creates an audit log backed by db.
func NewPgAuditLog(db DBTX) *PgAuditLog {
	return &PgAuditLog{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (a *PgAuditLog) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

// Record inserts entry. A missing ID or timestamp is filled in.
func (a *PgAuditLog) Record(ctx context.Context, entry AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := a.db.Exec(ctx, insertAuditEntry,
		entry.ID,
		string(entry.Action),
		entry.LayerID,
		entry.DisplayName,
		entry.FeatureCount,
		entry.Digest,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first.
func (a *PgAuditLog) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := a.db.Query(ctx, selectRecentAudit, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (AuditEntry, error) {
		var (
			e      AuditEntry
			action string
		)
		err := row.Scan(&e.ID, &action, &e.LayerID, &e.DisplayName, &e.FeatureCount,
			&e.Digest, &e.IPAddress, &e.UserAgent, &e.CreatedAt)
		e.Action = AuditAction(action)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	return entries, nil
}

// PurgeBefore deletes entries created before cutoff and returns how many were removed.
func (a *PgAuditLog) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := a.db.Exec(ctx, deleteAuditBefore, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}
