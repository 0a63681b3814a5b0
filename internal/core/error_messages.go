package core

// error_messages.go maps engine errors to user-facing messages with codes
// that users can quote to support staff.
//
// # Import Errors (PARSE001-PARSE099, FILE001-FILE099, ING001-ING099)
//
//	PARSE001 - Missing header: The file has no header line or no data rows
//	PARSE002 - Field count: A row has a different number of fields than the header
//	PARSE003 - Bad coordinate: A longitude or latitude is not a decimal number
//	PARSE004 - Malformed file: Any other parse failure
//	FILE001  - File too large: File exceeds the configured size limit
//	FILE004  - No file: No file was provided
//	ING001   - System busy: Too many imports in progress
//
// # Query Errors (LAYER001, IDX001, ARG001, SORT001)
//
//	LAYER001 - Layer not found: The layer id does not exist (it may have been deleted)
//	IDX001   - Index out of range: Sort column or feature index is outside the table
//	ARG001   - Invalid argument: Sort direction is not ascending or descending
//	SORT001  - Internal sort failure: A numeric column held a non-numeric value
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	REQ002 - Request timeout
//
// # Default Error (ERR000)
//
// Sentinel errors are matched with errors.Is in table order; the first match
// wins. Errors that carry no sentinel fall back to case-insensitive substring
// patterns.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern maps an error to a user message, either by sentinel or by substring.
type errorPattern struct {
	target  error
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Import errors
	// =========================================================================
	{
		pattern: "found no data rows",
		msg: UserMessage{
			Message: "The file has a header but no data rows",
			Action:  "Add at least one data row below the header",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "at least a header line",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Add a header line and at least one data row",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "fields, got",
		msg: UserMessage{
			Message: "A row has a different number of fields than the header",
			Action:  "Check that every row has one value per header column, separated by ';'",
			Code:    "PARSE002",
		},
	},
	{
		pattern: "invalid longitude",
		msg: UserMessage{
			Message: "A longitude value is not a number",
			Action:  "The first column must hold decimal longitudes such as 12.5",
			Code:    "PARSE003",
		},
	},
	{
		pattern: "invalid latitude",
		msg: UserMessage{
			Message: "A latitude value is not a number",
			Action:  "The second column must hold decimal latitudes such as -33.9",
			Code:    "PARSE003",
		},
	},
	{
		target: ErrParse,
		msg: UserMessage{
			Message: "The file could not be read as a ';'-separated table",
			Action:  "Check the header line and the delimiter",
			Code:    "PARSE004",
		},
	},
	{
		target: ErrFileTooLarge,
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to import",
			Code:    "FILE004",
		},
	},
	{
		target: ErrTooManyIngests,
		msg: UserMessage{
			Message: "Too many imports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "ING001",
		},
	},

	// =========================================================================
	// Query errors
	// =========================================================================
	{
		target: ErrNotFound,
		msg: UserMessage{
			Message: "Layer not found",
			Action:  "The layer may have been deleted. Import the file again",
			Code:    "LAYER001",
		},
	},
	{
		target: ErrIndexOutOfRange,
		msg: UserMessage{
			Message: "Column or feature index is out of range",
			Action:  "Refresh the table and try again",
			Code:    "IDX001",
		},
	},
	{
		target: ErrInvalidArgument,
		msg: UserMessage{
			Message: "Invalid request argument",
			Action:  "Use 'asc' or 'desc' as the sort direction",
			Code:    "ARG001",
		},
	},
	{
		target: ErrSort,
		msg: UserMessage{
			Message: "The table could not be sorted",
			Action:  "This is a bug. Please contact support with this code",
			Code:    "SORT001",
		},
	},

	// =========================================================================
	// Request errors
	// =========================================================================
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error into a user-friendly message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if ep.target != nil && errors.Is(err, ep.target) {
			return ep.msg
		}
		if ep.pattern != "" && strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError returns a single-line message suitable for display.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than the default.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown for it.
// Error returns the user message; Unwrap returns the original error for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
