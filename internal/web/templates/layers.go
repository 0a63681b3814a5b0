package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/geolayers/internal/core"
)

// HeaderCell is one sortable column header of the attribute table.
type HeaderCell struct {
	Index   int
	Title   string
	Numeric bool
	Sorted  bool
	NextDir string // direction applied when the header is clicked
}

// LayerTableView is everything the attribute table page renders.
type LayerTableView struct {
	LayerID     string
	DisplayName string
	Headers     []HeaderCell
	Rows        [][]string
	SortColumn  int
	Direction   string
	Page        int
	TotalPages  int
	TotalRows   int
}

// tableURL links back to the table page with the given sort and page.
func tableURL(layerID string, column int, dir string, page int) string {
	q := url.Values{}
	q.Set("sort", strconv.Itoa(column))
	q.Set("dir", dir)
	q.Set("page", strconv.Itoa(page))
	return "/layers/" + url.PathEscape(layerID) + "/table?" + q.Encode()
}

// LayerTable renders the attribute table viewer. Clicking a header sorts by
// that column, toggling the direction when it is already the sort column.
func LayerTable(v LayerTableView) templ.Component {
	return page(v.DisplayName, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		pw := &writer{w: w}
		pw.raw(`<main class="p-4"><h1 class="text-xl">`)
		pw.text(v.DisplayName)
		pw.raw(`</h1><p class="text-sm">`)
		pw.textf("%d features", v.TotalRows)
		pw.raw(`</p><table class="attribute-table"><thead><tr>`)

		for _, h := range v.Headers {
			pw.raw(`<th`)
			if h.Numeric {
				pw.raw(` class="numeric"`)
			}
			if h.Sorted {
				pw.raw(` aria-sort="`)
				if v.Direction == string(core.SortDescending) {
					pw.raw(`descending`)
				} else {
					pw.raw(`ascending`)
				}
				pw.raw(`"`)
			}
			pw.raw(`><a href="`)
			pw.text(tableURL(v.LayerID, h.Index, h.NextDir, 1))
			pw.raw(`">`)
			pw.text(h.Title)
			pw.raw(`</a></th>`)
		}
		pw.raw(`</tr></thead><tbody>`)

		for _, row := range v.Rows {
			pw.raw(`<tr>`)
			for _, cell := range row {
				pw.raw(`<td>`)
				pw.text(cell)
				pw.raw(`</td>`)
			}
			pw.raw(`</tr>`)
		}
		pw.raw(`</tbody></table>`)

		if v.TotalPages > 1 {
			pw.raw(`<nav class="pagination">`)
			if v.Page > 1 {
				pw.raw(`<a rel="prev" href="`)
				pw.text(tableURL(v.LayerID, v.SortColumn, v.Direction, v.Page-1))
				pw.raw(`">Previous</a>`)
			}
			pw.raw(`<span>`)
			pw.textf("Page %d of %d", v.Page, v.TotalPages)
			pw.raw(`</span>`)
			if v.Page < v.TotalPages {
				pw.raw(`<a rel="next" href="`)
				pw.text(tableURL(v.LayerID, v.SortColumn, v.Direction, v.Page+1))
				pw.raw(`">Next</a>`)
			}
			pw.raw(`</nav>`)
		}

		pw.raw(`</main>`)
		return pw.err
	}))
}

// Dashboard renders the layer list with an import form.
func Dashboard(layers []core.LayerInfo) templ.Component {
	return page("Layers", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		pw := &writer{w: w}
		pw.raw(`<main class="p-4"><h1 class="text-xl">Layers</h1>`)
		pw.raw(`<form method="post" action="/api/layers" enctype="multipart/form-data">`)
		pw.raw(`<input type="file" name="file" required><button type="submit">Import</button></form>`)

		if len(layers) == 0 {
			pw.raw(`<p class="empty">No layers imported yet.</p></main>`)
			return pw.err
		}

		pw.raw(`<ul class="layer-list">`)
		for _, l := range layers {
			pw.raw(`<li><a href="`)
			pw.text(tableURL(l.ID, 0, string(core.SortAscending), 1))
			pw.raw(`">`)
			pw.text(l.DisplayName)
			pw.raw(`</a> <span class="text-sm">`)
			pw.textf("%d features, %d columns", l.FeatureCount, len(l.Columns))
			pw.raw(`</span></li>`)
		}
		pw.raw(`</ul></main>`)
		return pw.err
	}))
}
