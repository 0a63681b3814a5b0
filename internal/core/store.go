package core

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Layer is an immutable stored table plus its metadata.
// Callers must treat Table as read-only.
type Layer struct {
	ID          string
	DisplayName string
	Digest      string
	Extent      Extent
	Table       Table
	CreatedAt   time.Time

	// generation changes every time an id is written, so cached sort
	// orders computed for an older table are never reused.
	generation uint64
}

// Info returns the listing summary of the layer.
func (l *Layer) Info() LayerInfo {
	cols := make([]Column, len(l.Table.Columns))
	copy(cols, l.Table.Columns)
	return LayerInfo{
		ID:           l.ID,
		DisplayName:  l.DisplayName,
		Columns:      cols,
		FeatureCount: len(l.Table.Rows),
		Extent:       l.Extent,
		Digest:       l.Digest,
		CreatedAt:    l.CreatedAt,
	}
}

// Store maps layer ids to layers. It is safe for concurrent use.
//
// The lock is held only for the duration of a single map operation. Put
// clones the table before locking and Get hands out the stored snapshot,
// which is never modified after insertion.
type Store struct {
	mu     sync.RWMutex
	layers map[string]*Layer

	generation atomic.Uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{layers: make(map[string]*Layer)}
}

// Put inserts or overwrites the layer stored under id. It always succeeds;
// callers are responsible for minting fresh ids.
func (s *Store) Put(id string, table Table) {
	s.PutLayer(Layer{ID: id, Table: table, Extent: ExtentOf(table.Coordinates())})
}

// PutLayer stores l under l.ID, last writer wins.
func (s *Store) PutLayer(l Layer) {
	l.Table = l.Table.Clone()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	l.generation = s.generation.Add(1)

	s.mu.Lock()
	s.layers[l.ID] = &l
	s.mu.Unlock()
}

// Get returns the layer stored under id, or ErrNotFound.
func (s *Store) Get(id string) (*Layer, error) {
	s.mu.RLock()
	l, ok := s.layers[id]
	s.mu.RUnlock()

	if !ok {
		return nil, notFound(id)
	}
	return l, nil
}

// Delete removes id. Deleting an absent id is a no-op.
// It reports whether an entry was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.layers[id]
	delete(s.layers, id)
	s.mu.Unlock()
	return ok
}

// Len returns the number of stored layers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// List returns summaries of all layers, oldest first, ties broken by id.
func (s *Store) List() []LayerInfo {
	s.mu.RLock()
	layers := make([]*Layer, 0, len(s.layers))
	for _, l := range s.layers {
		layers = append(layers, l)
	}
	s.mu.RUnlock()

	sort.Slice(layers, func(i, j int) bool {
		if !layers[i].CreatedAt.Equal(layers[j].CreatedAt) {
			return layers[i].CreatedAt.Before(layers[j].CreatedAt)
		}
		return layers[i].ID < layers[j].ID
	})

	infos := make([]LayerInfo, len(layers))
	for i, l := range layers {
		infos[i] = l.Info()
	}
	return infos
}
