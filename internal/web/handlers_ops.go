package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/geolayers/internal/core"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// handleAuditLog returns the newest audit entries as JSON, or as a CSV
// download with ?format=csv. An empty list means auditing is disabled or
// nothing has been recorded yet.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := min(parseIntParam(r, "limit", defaultAuditLimit), maxAuditLimit)

	entries, err := s.service.AuditLog(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}

	if r.URL.Query().Get("format") == "csv" {
		writeAuditCSV(w, entries)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeAuditCSV(w http.ResponseWriter, entries []core.AuditEntry) {
	filename := fmt.Sprintf("audit_log_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	cw.Write([]string{"Timestamp", "Action", "Layer ID", "Display Name", "Features", "Digest", "IP Address", "User Agent"})
	for _, e := range entries {
		cw.Write([]string{
			e.CreatedAt.Format(time.RFC3339),
			string(e.Action),
			e.LayerID,
			e.DisplayName,
			strconv.Itoa(e.FeatureCount),
			e.Digest,
			e.IPAddress,
			e.UserAgent,
		})
	}
	cw.Flush()
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string                   `json:"status"`
	Layers int                      `json:"layers"`
	Ingest core.IngestLimiterStatus `json:"ingest"`
}

// handleHealth reports liveness plus store size and ingest slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Layers: s.service.Store().Len(),
		Ingest: s.service.IngestLimiterStatus(),
	})
}
