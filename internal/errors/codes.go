// Package errors provides structured error handling for nativecore.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors (ConfigurationError)
//   - 2XX: IO errors (file, disk)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
//   - 6XX: Native load errors (LoadError)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
	// CategoryLoad indicates a shared library could not be loaded or bound.
	CategoryLoad Category = "LOAD"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound      = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid       = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission    = "ERR_103_CONFIG_PERMISSION"
	ErrCodePlatformUnsupported = "ERR_104_PLATFORM_UNSUPPORTED"
	ErrCodeLogLevelInvalid     = "ERR_105_LOG_LEVEL_INVALID"
	ErrCodeOverrideInvalid     = "ERR_106_OVERRIDE_INVALID"
	ErrCodeUnknownComponent    = "ERR_107_UNKNOWN_COMPONENT"

	// IO errors (200-299)
	ErrCodeFileNotFound = "ERR_201_FILE_NOT_FOUND"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeInvalidState = "ERR_502_INVALID_STATE"

	// Load errors (600-699)
	ErrCodeLibraryNotFound  = "ERR_601_LIBRARY_NOT_FOUND"
	ErrCodeLibraryInvalid   = "ERR_602_LIBRARY_INVALID"
	ErrCodeSymbolMissing    = "ERR_603_SYMBOL_MISSING"
	ErrCodeContractMismatch = "ERR_604_CONTRACT_MISMATCH"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	numStr := code[4:7]

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	case '6':
		return CategoryLoad
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodePlatformUnsupported, ErrCodeContractMismatch:
		return SeverityFatal
	}
	return SeverityError
}

// isRetryableCode checks if an error code represents a failure that may
// succeed after the caller corrects configuration and retries explicitly.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeLibraryNotFound, ErrCodeLibraryInvalid, ErrCodeOverrideInvalid, ErrCodeLogLevelInvalid:
		return true
	default:
		return false
	}
}
