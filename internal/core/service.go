package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/JonMunkholm/geolayers/internal/logging"
	"github.com/JonMunkholm/geolayers/internal/metrics"
)

// Options configures a Service. Zero values fall back to package defaults.
type Options struct {
	MaxFileSize          int64
	MaxConcurrentIngests int
	MaxIngestWait        time.Duration
	SortCacheSize        int
	DefaultPageSize      int
	MaxPageSize          int

	Metrics *metrics.LayerMetrics
	Audit   AuditRecorder

	// NewID mints layer identifiers. Defaults to random UUIDs.
	NewID func() string
}

// Service provides the ingestion and query operations over a Store.
type Service struct {
	store       *Store
	limiter     *IngestLimiter
	sorts       *sortCache
	metrics     *metrics.LayerMetrics
	audit       AuditRecorder
	newID       func() string
	maxFileSize int64
	pageSize    int
	maxPageSize int
}

// NewService creates a Service over store. The store is shared, not copied:
// callers construct it once at startup and pass it where it is needed.
func NewService(store *Store, opts Options) *Service {
	if store == nil {
		store = NewStore()
	}
	if opts.Audit == nil {
		opts.Audit = nopAudit{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageSize
	}

	return &Service{
		store:       store,
		limiter:     NewIngestLimiter(opts.MaxConcurrentIngests, opts.MaxIngestWait),
		sorts:       newSortCache(opts.SortCacheSize),
		metrics:     opts.Metrics,
		audit:       opts.Audit,
		newID:       opts.NewID,
		maxFileSize: opts.MaxFileSize,
		pageSize:    opts.DefaultPageSize,
		maxPageSize: opts.MaxPageSize,
	}
}

// Store returns the underlying layer store.
func (s *Service) Store() *Store {
	return s.store
}

// Ingest parses r into a new layer named displayName. On success the layer
// is stored under a freshly minted id and the outcome carries everything a
// map view needs to render it. On failure nothing is stored.
//
// Parsing runs without touching the store; only the final put takes its lock.
func (s *Service) Ingest(ctx context.Context, displayName string, r io.Reader) (*IngestOutcome, error) {
	start := time.Now()
	log := logging.WithFields(ctx, "display_name", displayName)

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.ObserveIngest("rejected", time.Since(start), 0)
		return nil, fmt.Errorf("ingest %q: %w", displayName, err)
	}
	defer s.limiter.Release()

	data, n, err := readInput(r, s.maxFileSize)
	if err != nil {
		s.metrics.ObserveIngest(ingestResult(err), time.Since(start), n)
		log.Warn("import rejected", "error", err, "bytes", n)
		return nil, fmt.Errorf("ingest %q: %w", displayName, err)
	}

	table, err := ParseTable(string(data))
	if err != nil {
		s.metrics.ObserveIngest(ingestResult(err), time.Since(start), n)
		log.Warn("import rejected", "error", err, "bytes", n)
		return nil, fmt.Errorf("ingest %q: %w", displayName, err)
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = "untitled"
	}

	layer := Layer{
		ID:          s.newID(),
		DisplayName: displayName,
		Digest:      fmt.Sprintf("%016x", xxhash.Sum64(data)),
		Extent:      ExtentOf(table.Coordinates()),
		Table:       table,
		CreatedAt:   time.Now().UTC(),
	}
	s.store.PutLayer(layer)

	s.metrics.ObserveIngest("ok", time.Since(start), n)
	s.metrics.SetLayers(s.store.Len())

	log.Info("layer imported",
		"layer_id", layer.ID,
		"features", len(table.Rows),
		"columns", len(table.Columns),
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	s.recordAudit(ctx, AuditEntry{
		Action:       ActionLayerIngest,
		LayerID:      layer.ID,
		DisplayName:  layer.DisplayName,
		FeatureCount: len(table.Rows),
		Digest:       layer.Digest,
	})

	return &IngestOutcome{
		LayerID:     layer.ID,
		DisplayName: layer.DisplayName,
		Columns:     table.Columns,
		Features:    table.Rows,
		Extent:      layer.Extent,
		Digest:      layer.Digest,
	}, nil
}

// IngestFile imports the file at path. The display name is the file's base name.
func (s *Service) IngestFile(ctx context.Context, path string) (*IngestOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return s.Ingest(ctx, filepath.Base(path), f)
}

// Layer resolves id in the store. The returned layer is read-only.
func (s *Service) Layer(id string) (*Layer, error) {
	return s.store.Get(id)
}

// ListLayers returns summaries of all stored layers.
func (s *Service) ListLayers() []LayerInfo {
	return s.store.List()
}

// DeleteLayer evicts id. It always succeeds, including for unknown ids.
func (s *Service) DeleteLayer(ctx context.Context, id string) {
	removed := s.store.Delete(id)
	s.sorts.forget(id)
	s.metrics.ObserveQuery("delete_layer", "ok")

	if !removed {
		return
	}

	s.metrics.SetLayers(s.store.Len())
	logging.FromContext(ctx).Info("layer deleted", "layer_id", id)
	s.recordAudit(ctx, AuditEntry{Action: ActionLayerDelete, LayerID: id})
}

// AuditLog returns the newest audit entries, or nil when auditing is disabled.
func (s *Service) AuditLog(ctx context.Context, limit int) ([]AuditEntry, error) {
	return s.audit.Recent(ctx, limit)
}

// IngestLimiterStatus returns the current state of the ingest limiter.
func (s *Service) IngestLimiterStatus() IngestLimiterStatus {
	return s.limiter.Status()
}

// WaitForIngests blocks until running imports finish or ctx is done.
func (s *Service) WaitForIngests(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// recordAudit is best effort: a failing audit database never fails the operation.
func (s *Service) recordAudit(ctx context.Context, entry AuditEntry) {
	entry.IPAddress = ipAddressFromContext(ctx)
	entry.UserAgent = userAgentFromContext(ctx)
	if err := s.audit.Record(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("audit record failed",
			"action", entry.Action,
			"layer_id", entry.LayerID,
			"error", err,
		)
	}
}

func ingestResult(err error) string {
	switch {
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrFileTooLarge):
		return "too_large"
	default:
		return "error"
	}
}
