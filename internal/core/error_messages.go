package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Users can quote the code when reporting a failed run.
//
// # Setup Errors (HDR, MAP, TPL)
//
//	HDR001 - Header not found: No header row in the first rows of the sheet
//	         Action: Enter the header row number in the fallback field
//	MAP001 - Required column missing: The tag column could not be identified
//	         Action: Make sure the schedule has a "Tag" column
//	TPL001 - Template missing: The workbook has no matching template sheet
//	         Action: Add the "RV Instrument" or "RV Valve" template sheet
//	TPL002 - Unknown template type
//	         Action: Choose Instrument or Valve
//
// # Output Errors (SAVE)
//
//	SAVE001 - Save failed: The generated workbook could not be written
//	          Action: Close the output file if it is open in Excel and retry
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing form field: A required form field is empty
//	VAL002 - Invalid header row: The fallback header row is not a number
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Invalid workbook: The file could not be opened as a workbook
//	FILE003 - No file selected
//	FILE004 - Empty workbook
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Too many generation runs in progress
//	RUN002 - Run not found: The run has expired or never existed
//	RUN003 - No output: The run did not produce a workbook
//	RUN004 - Timed out: The run exceeded the configured run timeout
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application log for the
// technical error.
//
// # Matching
//
// Typed errors are matched first with errors.Is. Remaining errors are
// matched case-insensitively against text patterns with strings.Contains;
// the first matching pattern wins.

import (
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

var (
	msgHeaderNotFound = UserMessage{
		Message: "Header row not found",
		Action:  "Enter the header row number in the fallback field",
		Code:    "HDR001",
	}
	msgRequiredField = UserMessage{
		Message: "A required column could not be identified",
		Action:  "Make sure the schedule has a \"Tag\" column",
		Code:    "MAP001",
	}
	msgTemplateMissing = UserMessage{
		Message: "Template sheet not found in the workbook",
		Action:  "Add the RV Instrument or RV Valve template sheet to the workbook",
		Code:    "TPL001",
	}
	msgSaveFailed = UserMessage{
		Message: "The generated workbook could not be saved",
		Action:  "Close the output file if it is open and try again",
		Code:    "SAVE001",
	}
	msgTooManyRuns = UserMessage{
		Message: "Too many runs in progress",
		Action:  "Please wait a moment and try again",
		Code:    "RUN001",
	}
	msgRunTimeout = UserMessage{
		Message: "The run took too long and was stopped",
		Action:  "Check the schedule for stray rows far below the data, or raise RUN_TIMEOUT",
		Code:    "RUN004",
	}
	msgEmptyWorkbook = UserMessage{
		Message: "The workbook has no sheets",
		Action:  "Upload the equipment schedule workbook",
		Code:    "FILE004",
	}
)

// typedErrors maps sentinel errors to user messages, checked before patterns.
var typedErrors = []struct {
	target error
	msg    UserMessage
}{
	{ErrHeaderNotFound, msgHeaderNotFound},
	{ErrRequiredFieldMissing, msgRequiredField},
	{ErrTemplateNotFound, msgTemplateMissing},
	{ErrSaveFailed, msgSaveFailed},
	{ErrTooManyRuns, msgTooManyRuns},
	{ErrNoDataSheet, msgEmptyWorkbook},
	{ErrRunTimeout, msgRunTimeout},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// More specific patterns must come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "unknown template",
		msg: UserMessage{
			Message: "Unknown template type",
			Action:  "Choose Instrument or Valve",
			Code:    "TPL002",
		},
	},
	{
		pattern: "is required",
		msg: UserMessage{
			Message: "Please fill in all fields and select files",
			Action:  "Complete the project, client, reference and revision fields",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid header row",
		msg: UserMessage{
			Message: "The fallback header row must be a whole number",
			Action:  "Leave the field empty or enter a row number such as 6",
			Code:    "VAL002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Remove unused sheets from the workbook and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The file could not be opened as a workbook",
			Action:  "Upload an .xlsx or .xlsm file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an input workbook",
			Code:    "FILE003",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "Run not found",
			Action:  "The run may have expired. Please start a new run",
			Code:    "RUN002",
		},
	},
	{
		pattern: "no output",
		msg: UserMessage{
			Message: "The run did not produce a workbook",
			Action:  "Check the run result for the failure reason",
			Code:    "RUN003",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := gen.Run(ctx, req)
//	msg := MapError(err)
//	// msg.Code == "HDR001" when no header row was found
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, te := range typedErrors {
		if errors.Is(err, te.target) {
			return te.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
