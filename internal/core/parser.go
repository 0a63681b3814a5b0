package core

// parser.go turns `;`-delimited text into a typed Table.
//
// The first line is the header; its first two fields label the coordinate
// columns and are ignored. Every data row carries longitude and latitude in
// its first two fields followed by attribute values in header order.

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Delimiter separates fields within a line.
const Delimiter = ";"

// coordinateFields is the number of leading fields holding the coordinate pair.
const coordinateFields = 2

// ParseTable parses raw text into a Table. It never returns a partial table:
// any malformed row fails the whole input with a *ParseError.
func ParseTable(text string) (Table, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return Table{}, parseErrorf(0, "file must contain at least a header line")
	}

	header := strings.Split(lines[0], Delimiter)
	if len(header) < coordinateFields {
		return Table{}, parseErrorf(1, "header must name the longitude and latitude columns, got %d field(s)", len(header))
	}

	titles := header[coordinateFields:]
	rows := make([]Feature, 0, len(lines)-1)

	for i, line := range lines[1:] {
		lineNum := i + 2 // 1-indexed, after header

		if strings.TrimSpace(line) == "" {
			continue
		}

		feature, err := parseRow(line, len(header), lineNum)
		if err != nil {
			return Table{}, err
		}
		rows = append(rows, feature)
	}

	if len(rows) == 0 {
		return Table{}, parseErrorf(0, "file must contain at least a header line and one data row, found no data rows")
	}

	columns := make([]Column, len(titles))
	for i, title := range titles {
		columns[i] = Column{Title: title, Numeric: inferNumeric(rows, i)}
	}

	return Table{Columns: columns, Rows: rows}, nil
}

func parseRow(line string, width, lineNum int) (Feature, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != width {
		return Feature{}, parseErrorf(lineNum, "expected %d fields, got %d", width, len(fields))
	}

	lng, err := parseCoordinate(fields[0])
	if err != nil {
		return Feature{}, parseErrorf(lineNum, "invalid longitude %q", fields[0])
	}
	lat, err := parseCoordinate(fields[1])
	if err != nil {
		return Feature{}, parseErrorf(lineNum, "invalid latitude %q", fields[1])
	}

	attrs := make([]string, width-coordinateFields)
	copy(attrs, fields[coordinateFields:])

	return Feature{Coordinate: Coordinate{Lng: lng, Lat: lat}, Attributes: attrs}, nil
}

var errNotDecimal = errors.New("not a finite decimal number")

// parseCoordinate accepts finite decimal floats only. ParseFloat alone would
// also take NaN, Inf and hex floats, none of which can place a point.
func parseCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX") {
		return 0, errNotDecimal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotDecimal
	}
	return v, nil
}

// inferNumeric folds every row's value at col into a single flag. The column
// stays numeric only while each value parses as an unsigned integer; once it
// drops to text the remaining rows cannot change the result.
func inferNumeric(rows []Feature, col int) bool {
	numeric := true
	for _, row := range rows {
		numeric = numeric && isUnsigned(row.Attributes[col])
	}
	return numeric
}

func isUnsigned(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

// splitLines splits text the way a line reader would: "\n" separates lines,
// a trailing "\r" is dropped, and a final newline does not start a new line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
