package core

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/JonMunkholm/geolayers/internal/logging"
)

// DefaultPageSize is the page size used when a caller does not ask for one.
const DefaultPageSize = 50

// AttributeMatrix returns the layer's attribute values as a matrix whose first
// row is the column titles. Data rows are ordered by sortColumn in the given
// direction; coordinates are not included.
//
// Ascending order is stable. Descending order is the exact reverse of the
// ascending order, so rows with equal keys appear in reverse file order.
func (s *Service) AttributeMatrix(ctx context.Context, id string, sortColumn int, direction string) ([][]string, error) {
	layer, order, err := s.sortedRows(ctx, "attribute_matrix", id, sortColumn, direction)
	if err != nil {
		return nil, err
	}

	matrix := make([][]string, 0, len(order)+1)
	matrix = append(matrix, layer.Table.Titles())
	for _, i := range order {
		matrix = append(matrix, copyStrings(layer.Table.Rows[i].Attributes))
	}

	s.metrics.ObserveQuery("attribute_matrix", "ok")
	return matrix, nil
}

// AttributePage returns one page of the ordering produced by AttributeMatrix.
// page is 1-indexed; out-of-range pages are clamped to the nearest valid page.
func (s *Service) AttributePage(ctx context.Context, id string, sortColumn int, direction string, page, pageSize int) (*AttributePage, error) {
	layer, order, err := s.sortedRows(ctx, "attribute_page", id, sortColumn, direction)
	if err != nil {
		return nil, err
	}

	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if s.maxPageSize > 0 && pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	total := len(order)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	rows := make([][]string, 0, end-start)
	for _, i := range order[start:end] {
		rows = append(rows, copyStrings(layer.Table.Rows[i].Attributes))
	}

	s.metrics.ObserveQuery("attribute_page", "ok")
	return &AttributePage{
		Header:     layer.Table.Titles(),
		Rows:       rows,
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  total,
		TotalPages: totalPages,
	}, nil
}

// FeatureFields pairs each column title with the feature's value, in column order.
func (s *Service) FeatureFields(ctx context.Context, id string, featureIndex int) ([]Field, error) {
	layer, err := s.store.Get(id)
	if err != nil {
		s.metrics.ObserveQuery("feature_fields", "not_found")
		return nil, err
	}

	rows := layer.Table.Rows
	if featureIndex < 0 || featureIndex >= len(rows) {
		s.metrics.ObserveQuery("feature_fields", "out_of_range")
		return nil, indexOutOfRange("feature index", featureIndex, len(rows))
	}

	attrs := rows[featureIndex].Attributes
	fields := make([]Field, len(layer.Table.Columns))
	for i, col := range layer.Table.Columns {
		fields[i] = Field{Name: col.Title, Value: attrs[i]}
	}

	s.metrics.ObserveQuery("feature_fields", "ok")
	return fields, nil
}

// sortedRows validates a sort request and returns the layer with its row order.
// The store lock is released before any sorting happens.
func (s *Service) sortedRows(ctx context.Context, op, id string, sortColumn int, direction string) (*Layer, []int, error) {
	layer, err := s.store.Get(id)
	if err != nil {
		s.metrics.ObserveQuery(op, "not_found")
		return nil, nil, err
	}

	if sortColumn < 0 || sortColumn >= len(layer.Table.Columns) {
		s.metrics.ObserveQuery(op, "out_of_range")
		return nil, nil, indexOutOfRange("sort column", sortColumn, len(layer.Table.Columns))
	}

	dir, err := ParseSortDirection(direction)
	if err != nil {
		s.metrics.ObserveQuery(op, "invalid_argument")
		return nil, nil, err
	}

	asc, err := s.ascendingOrder(layer, sortColumn)
	if err != nil {
		var se *SortError
		if errors.As(err, &se) {
			logging.FromContext(ctx).Error("numeric column failed to sort",
				"layer_id", se.LayerID,
				"column", se.Column,
				"value", se.Value,
				"error", err,
			)
		}
		s.metrics.ObserveQuery(op, "sort_error")
		return nil, nil, err
	}

	if dir == SortAscending {
		return layer, asc, nil
	}

	desc := make([]int, len(asc))
	for i, idx := range asc {
		desc[len(asc)-1-i] = idx
	}
	return layer, desc, nil
}

// ascendingOrder returns row indexes in stable ascending order of column col.
// The returned slice is shared with the cache and must not be modified.
func (s *Service) ascendingOrder(l *Layer, col int) ([]int, error) {
	if order, ok := s.sorts.get(l, col); ok {
		s.metrics.SortCacheLookup(true)
		return order, nil
	}
	s.metrics.SortCacheLookup(false)

	order, err := stableOrder(l, col)
	if err != nil {
		return nil, err
	}
	s.sorts.add(l, col, order)
	return order, nil
}

func stableOrder(l *Layer, col int) ([]int, error) {
	rows := l.Table.Rows
	column := l.Table.Columns[col]

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}

	if !column.Numeric {
		sort.SliceStable(order, func(a, b int) bool {
			return rows[order[a]].Attributes[col] < rows[order[b]].Attributes[col]
		})
		return order, nil
	}

	keys := make([]uint64, len(rows))
	for i, row := range rows {
		v, err := strconv.ParseUint(row.Attributes[col], 10, 64)
		if err != nil {
			return nil, &SortError{LayerID: l.ID, Column: column.Title, Value: row.Attributes[col], Err: err}
		}
		keys[i] = v
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] < keys[order[b]]
	})
	return order, nil
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
