package core

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection renders a layer as GeoJSON points for a map view.
// Each feature's id and "featureIndex" property hold its row index, so a click
// on the map can be resolved with FeatureFields. Attribute values are nested
// under "attributes" in column order; column titles are free text and may
// repeat or shadow "featureIndex".
func (s *Service) FeatureCollection(ctx context.Context, id string) (*geojson.FeatureCollection, error) {
	layer, err := s.store.Get(id)
	if err != nil {
		s.metrics.ObserveQuery("feature_collection", "not_found")
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for i, row := range layer.Table.Rows {
		attrs := make([]Field, len(layer.Table.Columns))
		for c, col := range layer.Table.Columns {
			attrs[c] = Field{Name: col.Title, Value: row.Attributes[c]}
		}

		f := geojson.NewFeature(orb.Point{row.Lng, row.Lat})
		f.ID = i
		f.Properties["featureIndex"] = i
		f.Properties["attributes"] = attrs
		fc.Append(f)
	}

	if b, ok := layer.Extent.Bound(); ok {
		fc.BBox = geojson.NewBBox(b)
	}

	s.metrics.ObserveQuery("feature_collection", "ok")
	return fc, nil
}
