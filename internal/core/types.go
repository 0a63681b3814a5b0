package core

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Coordinate is a longitude/latitude pair. Ranges are not validated.
type Coordinate struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Column describes one attribute column of a layer.
type Column struct {
	Title   string `json:"title"`
	Numeric bool   `json:"numeric"` // every data value parsed as an unsigned integer
}

// Feature is one data row: a coordinate plus its attribute values in column order.
type Feature struct {
	Coordinate
	Attributes []string `json:"attributes"`
}

// Table is a parsed layer. Row order is file order.
type Table struct {
	Columns []Column  `json:"columns"`
	Rows    []Feature `json:"rows"`
}

// Titles returns the column titles in column order.
func (t Table) Titles() []string {
	titles := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		titles[i] = c.Title
	}
	return titles
}

// Coordinates returns the coordinate of every row in row order.
func (t Table) Coordinates() []Coordinate {
	coords := make([]Coordinate, len(t.Rows))
	for i, f := range t.Rows {
		coords[i] = f.Coordinate
	}
	return coords
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{
		Columns: make([]Column, len(t.Columns)),
		Rows:    make([]Feature, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)
	for i, f := range t.Rows {
		attrs := make([]string, len(f.Attributes))
		copy(attrs, f.Attributes)
		out.Rows[i] = Feature{Coordinate: f.Coordinate, Attributes: attrs}
	}
	return out
}

// Extent is the bounding box of a layer's coordinates.
// The empty extent has West/South = +Inf and East/North = -Inf.
type Extent struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// EmptyExtent returns the identity of the extent fold.
func EmptyExtent() Extent {
	return Extent{
		West:  math.Inf(1),
		South: math.Inf(1),
		East:  math.Inf(-1),
		North: math.Inf(-1),
	}
}

// IsEmpty reports whether the extent encloses no coordinates.
func (e Extent) IsEmpty() bool {
	return e.West > e.East || e.South > e.North
}

// Field is one (column title, attribute value) pair of a feature.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SortDirection orders attribute matrix rows.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// ParseSortDirection accepts "asc"/"ascending" and "desc"/"descending" (case-insensitive).
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	default:
		return "", invalidArgument("sort direction %q must be ascending or descending", s)
	}
}

// LayerInfo summarizes a stored layer for listings.
type LayerInfo struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	Columns      []Column  `json:"columns"`
	FeatureCount int       `json:"featureCount"`
	Extent       Extent    `json:"extent"`
	Digest       string    `json:"digest"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IngestOutcome is returned to the caller after a successful import.
type IngestOutcome struct {
	LayerID     string    `json:"layerId"`
	DisplayName string    `json:"displayName"`
	Columns     []Column  `json:"columns"`
	Features    []Feature `json:"features"`
	Extent      Extent    `json:"extent"`
	Digest      string    `json:"digest"`
}

// AttributePage is one page of a sorted attribute matrix.
type AttributePage struct {
	Header     []string   `json:"header"`
	Rows       [][]string `json:"rows"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalRows  int        `json:"totalRows"`
	TotalPages int        `json:"totalPages"`
}

// MarshalJSON encodes an empty extent as null, since JSON has no infinities.
func (e Extent) MarshalJSON() ([]byte, error) {
	if e.IsEmpty() {
		return []byte("null"), nil
	}
	type plain Extent
	return json.Marshal(plain(e))
}
