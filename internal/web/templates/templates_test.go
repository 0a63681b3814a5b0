package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/geolayers/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestErrorAlertEscapes(t *testing.T) {
	out := render(t, ErrorAlert("<b>bad</b>", "retry", "LAYER001"))

	if strings.Contains(out, "<b>bad</b>") {
		t.Errorf("message was not escaped: %q", out)
	}
	if !strings.Contains(out, "&lt;b&gt;bad&lt;/b&gt;") || !strings.Contains(out, "Code: LAYER001") {
		t.Errorf("output = %q", out)
	}
}

func TestLayerTable(t *testing.T) {
	out := render(t, LayerTable(LayerTableView{
		LayerID:     "abc",
		DisplayName: "cities.csv",
		Headers: []HeaderCell{
			{Index: 0, Title: "name", NextDir: "asc"},
			{Index: 1, Title: "count", Numeric: true, Sorted: true, NextDir: "asc"},
		},
		Rows:       [][]string{{"beta", "10"}, {"alpha", "5"}},
		SortColumn: 1,
		Direction:  "desc",
		Page:       2,
		TotalPages: 3,
		TotalRows:  6,
	}))

	checks := []string{
		"<title>cities.csv</title>",
		`aria-sort="descending"`,
		`/layers/abc/table?dir=asc&amp;page=1&amp;sort=1`,
		"<td>beta</td><td>10</td>",
		`rel="prev"`,
		`rel="next"`,
		"Page 2 of 3",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Index(out, "beta") > strings.Index(out, "alpha") {
		t.Error("rows rendered out of order")
	}
}

func TestDashboard(t *testing.T) {
	empty := render(t, Dashboard(nil))
	if !strings.Contains(empty, "No layers imported yet.") {
		t.Errorf("empty dashboard = %q", empty)
	}

	out := render(t, Dashboard([]core.LayerInfo{
		{ID: "abc", DisplayName: "cities.csv", FeatureCount: 2, Columns: []core.Column{{Title: "name"}}},
	}))
	if !strings.Contains(out, "cities.csv") || !strings.Contains(out, "2 features, 1 columns") {
		t.Errorf("dashboard = %q", out)
	}
}
