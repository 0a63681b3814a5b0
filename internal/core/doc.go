// Package core provides the ingestion-and-query engine for geocoded tables.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Parser: [ParseTable] turns ';'-delimited text into a typed [Table].
//   - Store: [Store] maps layer ids to immutable [Layer] snapshots.
//   - Service: The main entry point for all operations (import, query, delete).
//   - Audit: Optional PostgreSQL record of imports and deletions.
//
// # Input Format
//
// The first line is the header. Its first two fields label the coordinate
// columns; the remaining fields are column titles. Each data row holds a
// longitude, a latitude and one value per column:
//
//	lng;lat;name;population
//	10.75;59.91;Oslo;709000
//	18.07;59.33;Stockholm;984000
//
// A column is numeric when every value parses as an unsigned integer.
// Numeric columns sort by value, all others by byte order.
//
// # Import Flow
//
//  1. Client calls [Service.Ingest] with an io.Reader
//  2. Service waits for a slot in the [IngestLimiter]
//  3. Reader is wrapped with BOM skipping and UTF-8 sanitization
//  4. Text is parsed; any malformed row rejects the whole file
//  5. The layer is stored under a fresh id and the outcome returned
//
// # Error Handling
//
// Errors carry a kind matched with errors.Is: [ErrParse], [ErrNotFound],
// [ErrIndexOutOfRange], [ErrInvalidArgument] and [ErrSort]. [MapError]
// converts them to user-facing messages with support codes:
//
//   - PARSE001-PARSE004: Malformed files
//   - FILE001, FILE004, ING001: Import limits
//   - LAYER001, IDX001, ARG001, SORT001: Query errors
package core
