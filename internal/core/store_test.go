package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func sampleTable() Table {
	return Table{
		Columns: []Column{{Title: "name"}, {Title: "count", Numeric: true}},
		Rows: []Feature{
			{Coordinate: Coordinate{Lng: 1, Lat: 2}, Attributes: []string{"alpha", "5"}},
			{Coordinate: Coordinate{Lng: 3, Lat: -1}, Attributes: []string{"beta", "10"}},
		},
	}
}

func TestStorePutGet(t *testing.T) {
	s := NewStore()
	s.Put("a", sampleTable())

	l, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if l.ID != "a" {
		t.Errorf("ID = %q, want %q", l.ID, "a")
	}
	if len(l.Table.Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2", len(l.Table.Rows))
	}
	want := Extent{West: 1, South: -1, East: 3, North: 2}
	if l.Extent != want {
		t.Errorf("Extent = %+v, want %+v", l.Extent, want)
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := NewStore()
	_, err := s.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStorePutOverwrites(t *testing.T) {
	s := NewStore()
	s.Put("a", sampleTable())
	first, _ := s.Get("a")

	replacement := Table{
		Columns: []Column{{Title: "only"}},
		Rows:    []Feature{{Attributes: []string{"x"}}},
	}
	s.Put("a", replacement)

	second, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if second.Table.Columns[0].Title != "only" {
		t.Errorf("Columns[0] = %q, want %q", second.Table.Columns[0].Title, "only")
	}
	if second.generation == first.generation {
		t.Error("overwrite should change generation")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStorePutClonesTable(t *testing.T) {
	s := NewStore()
	table := sampleTable()
	s.Put("a", table)

	table.Rows[0].Attributes[0] = "mutated"
	table.Columns[0].Title = "mutated"

	l, _ := s.Get("a")
	if l.Table.Rows[0].Attributes[0] != "alpha" {
		t.Errorf("stored attribute changed to %q", l.Table.Rows[0].Attributes[0])
	}
	if l.Table.Columns[0].Title != "name" {
		t.Errorf("stored column changed to %q", l.Table.Columns[0].Title)
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	s := NewStore()
	s.Put("a", sampleTable())

	if !s.Delete("a") {
		t.Error("first Delete() = false, want true")
	}
	if s.Delete("a") {
		t.Error("second Delete() = true, want false")
	}
	if s.Delete("never-existed") {
		t.Error("Delete(unknown) = true, want false")
	}
	if _, err := s.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestStoreList(t *testing.T) {
	s := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.PutLayer(Layer{ID: "c", Table: sampleTable(), CreatedAt: base.Add(time.Minute)})
	s.PutLayer(Layer{ID: "b", Table: sampleTable(), CreatedAt: base})
	s.PutLayer(Layer{ID: "a", Table: sampleTable(), CreatedAt: base})

	infos := s.List()
	var ids []string
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	want := []string{"a", "b", "c"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("List() ids = %v, want %v", ids, want)
	}
	if infos[0].FeatureCount != 2 {
		t.Errorf("FeatureCount = %d, want 2", infos[0].FeatureCount)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		id := fmt.Sprintf("layer-%d", i%5)
		go func() {
			defer wg.Done()
			s.Put(id, sampleTable())
		}()
		go func() {
			defer wg.Done()
			if l, err := s.Get(id); err == nil && len(l.Table.Rows) != 2 {
				t.Errorf("Get(%s) returned partial table", id)
			}
		}()
		go func() {
			defer wg.Done()
			s.Delete(id)
			_ = s.List()
		}()
	}
	wg.Wait()

	if s.Len() > 5 {
		t.Errorf("Len() = %d, want at most 5", s.Len())
	}
}
