package core

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSortCacheSize is the number of sort orders kept when no size is configured.
const DefaultSortCacheSize = 256

type sortKey struct {
	layerID    string
	generation uint64
	column     int
}

// sortCache remembers the ascending row order of a (layer, column) pair.
// Stored tables never change, and an overwrite bumps the generation, so an
// entry stays valid for as long as its key can be produced.
type sortCache struct {
	lru *lru.Cache[sortKey, []int]
}

func newSortCache(size int) *sortCache {
	if size <= 0 {
		size = DefaultSortCacheSize
	}
	c, _ := lru.New[sortKey, []int](size)
	return &sortCache{lru: c}
}

func (c *sortCache) get(l *Layer, column int) ([]int, bool) {
	return c.lru.Get(sortKey{layerID: l.ID, generation: l.generation, column: column})
}

func (c *sortCache) add(l *Layer, column int, order []int) {
	c.lru.Add(sortKey{layerID: l.ID, generation: l.generation, column: column}, order)
}

// forget drops every cached order for layerID.
func (c *sortCache) forget(layerID string) {
	for _, k := range c.lru.Keys() {
		if k.layerID == layerID {
			c.lru.Remove(k)
		}
	}
}

func (c *sortCache) len() int {
	return c.lru.Len()
}
