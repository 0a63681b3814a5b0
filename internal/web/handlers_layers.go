package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/geolayers/internal/core"
	"github.com/JonMunkholm/geolayers/internal/web/templates"
)

// errNoFile is reported when a multipart import has no "file" part.
var errNoFile = errors.New("no file provided")

// handleImportLayer imports a ';'-delimited file. The body is either a
// multipart form with a "file" part or the raw file with ?name= as the
// display name.
func (s *Server) handleImportLayer(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Ingest.MaxFileSize

	var (
		name string
		body io.Reader
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if maxSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			if err := tooLarge(err); err != nil {
				s.respondError(w, r, err, http.StatusRequestEntityTooLarge)
				return
			}
			s.respondError(w, r, fmt.Errorf("invalid form: %w", err), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			s.respondError(w, r, errNoFile, http.StatusBadRequest)
			return
		}
		defer file.Close()

		name, body = header.Filename, file
	} else {
		// One byte over the limit is enough for the engine to detect it.
		if maxSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxSize+1)
		}
		name, body = r.URL.Query().Get("name"), r.Body
	}

	ctx := WithRequestMetadata(r.Context(), r)
	outcome, err := s.service.Ingest(ctx, name, body)
	if err != nil {
		if tl := tooLarge(err); tl != nil {
			err = tl
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}

	// Browser form posts land on the table view.
	if !isHTMX(r) && acceptsHTML(r) {
		http.Redirect(w, r, layerPageURL(outcome.LayerID), http.StatusSeeOther)
		return
	}

	w.Header().Set("Location", "/api/layers/"+outcome.LayerID)
	writeJSON(w, http.StatusCreated, outcome)
}

// handleListLayers returns summaries of all stored layers.
func (s *Server) handleListLayers(w http.ResponseWriter, r *http.Request) {
	layers := s.service.ListLayers()
	if layers == nil {
		layers = []core.LayerInfo{}
	}
	writeJSON(w, http.StatusOK, layers)
}

// handleAttributes returns the sorted attribute matrix. With page or
// page_size present the response is a single page instead.
func (s *Server) handleAttributes(w http.ResponseWriter, r *http.Request) {
	layerID := chi.URLParam(r, "layerID")

	col, dir, err := sortParams(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if hasParam(r, "page", "page_size") {
		page, err := s.service.AttributePage(r.Context(), layerID, col, dir,
			parseIntParam(r, "page", 1), parseIntParam(r, "page_size", 0))
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, page)
		return
	}

	matrix, err := s.service.AttributeMatrix(r.Context(), layerID, col, dir)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}

// handleFeatureFields returns the (title, value) pairs of one feature.
func (s *Server) handleFeatureFields(w http.ResponseWriter, r *http.Request) {
	layerID := chi.URLParam(r, "layerID")

	idx, err := parseIndex("feature index", chi.URLParam(r, "featureIndex"), 0)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	fields, err := s.service.FeatureFields(r.Context(), layerID, idx)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

// handleGeoJSON returns the layer as a GeoJSON FeatureCollection of points.
func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	layerID := chi.URLParam(r, "layerID")

	fc, err := s.service.FeatureCollection(r.Context(), layerID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// handleDeleteLayer evicts a layer. Unknown ids are not an error.
func (s *Server) handleDeleteLayer(w http.ResponseWriter, r *http.Request) {
	layerID := chi.URLParam(r, "layerID")

	ctx := WithRequestMetadata(r.Context(), r)
	s.service.DeleteLayer(ctx, layerID)

	w.WriteHeader(http.StatusNoContent)
}

// handleDashboard renders the import form and the list of layers.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, templates.Dashboard(s.service.ListLayers()))
}

// handleLayerTable renders one page of a layer's sorted attribute table.
// A layer without attribute columns renders an empty table, since there is
// nothing to sort by.
func (s *Server) handleLayerTable(w http.ResponseWriter, r *http.Request) {
	layerID := chi.URLParam(r, "layerID")

	layer, err := s.service.Layer(layerID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	view := templates.LayerTableView{
		LayerID:     layer.ID,
		DisplayName: layer.DisplayName,
		Direction:   string(core.SortAscending),
		Page:        1,
		TotalPages:  1,
		TotalRows:   len(layer.Table.Rows),
	}
	if len(layer.Table.Columns) == 0 {
		s.render(w, r, templates.LayerTable(view))
		return
	}

	col, dirParam, err := sortParams(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	page, err := s.service.AttributePage(r.Context(), layerID, col, dirParam,
		parseIntParam(r, "page", 1), s.cfg.Query.DefaultPageSize)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	// AttributePage already accepted the direction.
	dir, _ := core.ParseSortDirection(dirParam)

	headers := make([]templates.HeaderCell, len(layer.Table.Columns))
	for i, c := range layer.Table.Columns {
		next := core.SortAscending
		if i == col && dir == core.SortAscending {
			next = core.SortDescending
		}
		headers[i] = templates.HeaderCell{
			Index:   i,
			Title:   c.Title,
			Numeric: c.Numeric,
			Sorted:  i == col,
			NextDir: string(next),
		}
	}

	view.Headers = headers
	view.Rows = page.Rows
	view.SortColumn = col
	view.Direction = string(dir)
	view.Page = page.Page
	view.TotalPages = page.TotalPages
	view.TotalRows = page.TotalRows
	s.render(w, r, templates.LayerTable(view))
}

// render writes an HTML component.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}

// tooLarge converts a request body overflow into ErrFileTooLarge, or
// returns nil when err is not one.
func tooLarge(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return fmt.Errorf("%w: %w", core.ErrFileTooLarge, err)
	}
	return nil
}

func layerPageURL(layerID string) string {
	return "/layers/" + url.PathEscape(layerID) + "/table"
}

// acceptsHTML reports whether the client is a browser expecting a page.
func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
