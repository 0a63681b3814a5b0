package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "empty file",
			err:         parseErrorf(0, "file must contain at least a header line"),
			wantCode:    "PARSE001",
			wantMessage: "The file is empty",
		},
		{
			name:        "header only",
			err:         parseErrorf(0, "file must contain at least a header line and one data row, found no data rows"),
			wantCode:    "PARSE001",
			wantMessage: "The file has a header but no data rows",
		},
		{
			name:        "field count mismatch",
			err:         parseErrorf(3, "expected 4 fields, got 3"),
			wantCode:    "PARSE002",
			wantMessage: "A row has a different number of fields than the header",
		},
		{
			name:        "bad latitude",
			err:         parseErrorf(2, "invalid latitude %q", "north"),
			wantCode:    "PARSE003",
			wantMessage: "A latitude value is not a number",
		},
		{
			name:        "other parse error",
			err:         parseErrorf(1, "header must name the longitude and latitude columns, got 1 field(s)"),
			wantCode:    "PARSE004",
			wantMessage: "The file could not be read as a ';'-separated table",
		},
		{
			name:        "wrapped file too large",
			err:         fmt.Errorf("ingest %q: %w", "big.csv", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "too many ingests",
			err:         fmt.Errorf("ingest %q: %w", "a.csv", ErrTooManyIngests),
			wantCode:    "ING001",
			wantMessage: "Too many imports in progress",
		},
		{
			name:        "layer not found",
			err:         notFound("abc"),
			wantCode:    "LAYER001",
			wantMessage: "Layer not found",
		},
		{
			name:        "index out of range",
			err:         indexOutOfRange("sort column", 9, 2),
			wantCode:    "IDX001",
			wantMessage: "Column or feature index is out of range",
		},
		{
			name:        "invalid argument",
			err:         invalidArgument("sort direction %q must be ascending or descending", "up"),
			wantCode:    "ARG001",
			wantMessage: "Invalid request argument",
		},
		{
			name:        "sort error",
			err:         &SortError{LayerID: "l", Column: "pop", Value: "x", Err: errors.New("invalid syntax")},
			wantCode:    "SORT001",
			wantMessage: "The table could not be sorted",
		},
		{
			name:        "deadline exceeded",
			err:         fmt.Errorf("acquire: %w", context.DeadlineExceeded),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit case insensitive",
			err:         errors.New("Rate Limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(notFound("abc"))

	expected := "Layer not found (Code: LAYER001). The layer may have been deleted. Import the file again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrNotFound,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := notFound("abc")
		userErr := NewUserError(techErr)

		if userErr.Error() != "Layer not found" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrNotFound) {
			t.Error("Unwrap() should expose the original error")
		}
	})
}
