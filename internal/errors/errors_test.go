package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with NativeError
	nativeErr := New(ErrCodeLibraryNotFound, "libtbdex.so not found", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, nativeErr)
	assert.Equal(t, originalErr, errors.Unwrap(nativeErr))
	assert.True(t, errors.Is(nativeErr, originalErr))
}

func TestNativeError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigInvalid,
			message:  "bad yaml",
			expected: "[ERR_102_CONFIG_INVALID] bad yaml",
		},
		{
			name:     "platform error",
			code:     ErrCodePlatformUnsupported,
			message:  "linux/386 has no conventional path",
			expected: "[ERR_104_PLATFORM_UNSUPPORTED] linux/386 has no conventional path",
		},
		{
			name:     "load error",
			code:     ErrCodeSymbolMissing,
			message:  "missing symbols",
			expected: "[ERR_603_SYMBOL_MISSING] missing symbols",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestNativeError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeLibraryNotFound, "a not found", nil)
	err2 := New(ErrCodeLibraryNotFound, "b not found", nil)

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, New(ErrCodeLibraryInvalid, "x", nil)))
}

func TestNativeError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodePlatformUnsupported, CategoryConfig},
		{ErrCodeLogLevelInvalid, CategoryConfig},
		{ErrCodeOverrideInvalid, CategoryConfig},
		{ErrCodeUnknownComponent, CategoryConfig},
		{ErrCodeFileNotFound, CategoryIO},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{ErrCodeInvalidState, CategoryInternal},
		{ErrCodeLibraryNotFound, CategoryLoad},
		{ErrCodeLibraryInvalid, CategoryLoad},
		{ErrCodeSymbolMissing, CategoryLoad},
		{ErrCodeContractMismatch, CategoryLoad},
		{"BAD", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestNativeError_SeverityAndRetryable(t *testing.T) {
	assert.Equal(t, SeverityFatal, New(ErrCodePlatformUnsupported, "", nil).Severity)
	assert.Equal(t, SeverityFatal, New(ErrCodeContractMismatch, "", nil).Severity)
	assert.Equal(t, SeverityError, New(ErrCodeLibraryNotFound, "", nil).Severity)

	assert.True(t, New(ErrCodeLibraryNotFound, "", nil).Retryable)
	assert.True(t, New(ErrCodeOverrideInvalid, "", nil).Retryable)
	assert.False(t, New(ErrCodeSymbolMissing, "", nil).Retryable)
}

func TestLoadError_CarriesComponentPathAndDiagnostic(t *testing.T) {
	// Given: a dlopen diagnostic
	diag := "/opt/x/libtbdex.so: cannot open shared object file: No such file or directory"

	// When: building a load error
	err := LoadError(ErrCodeLibraryNotFound, "tbdex", "/opt/x/libtbdex.so", diag, nil)

	// Then: message and details carry everything verbatim
	assert.Equal(t, CategoryLoad, err.Category)
	assert.Contains(t, err.Error(), `"tbdex"`)
	assert.Contains(t, err.Error(), "/opt/x/libtbdex.so")
	assert.Contains(t, err.Error(), diag)
	assert.Equal(t, "tbdex", err.Detail("component"))
	assert.Equal(t, "/opt/x/libtbdex.so", err.Detail("path"))
	assert.Equal(t, diag, err.Detail("diagnostic"))
}

func TestLoadError_CoercesNonLoadCode(t *testing.T) {
	err := LoadError(ErrCodeConfigInvalid, "tbdex", "/p", "", nil)
	assert.Equal(t, ErrCodeLibraryInvalid, err.Code)
}

func TestConfigurationError_CoercesNonConfigCode(t *testing.T) {
	err := ConfigurationError(ErrCodeSymbolMissing, "bad", nil)
	assert.Equal(t, ErrCodeConfigInvalid, err.Code)

	err = ConfigurationError(ErrCodeLogLevelInvalid, "bad level", nil)
	assert.Equal(t, ErrCodeLogLevelInvalid, err.Code)
}

func TestKindHelpers_SeeThroughWrapping(t *testing.T) {
	// Given: errors wrapped with fmt.Errorf
	loadErr := fmt.Errorf("probe: %w", LoadError(ErrCodeLibraryInvalid, "tbdex", "/p", "bad ELF", nil))
	cfgErr := fmt.Errorf("probe: %w", ConfigurationError(ErrCodePlatformUnsupported, "nope", nil))

	// Then: kind helpers still classify them
	assert.True(t, IsLoadError(loadErr))
	assert.False(t, IsConfigurationError(loadErr))
	assert.True(t, IsConfigurationError(cfgErr))
	assert.False(t, IsLoadError(cfgErr))
	assert.Equal(t, ErrCodeLibraryInvalid, GetCode(loadErr))
	assert.True(t, IsFatal(cfgErr))
	assert.True(t, IsRetryable(loadErr))
}

func TestKindHelpers_PlainErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.False(t, IsLoadError(plain))
	assert.False(t, IsConfigurationError(plain))
	assert.False(t, IsRetryable(plain))
	assert.False(t, IsFatal(plain))
	assert.Equal(t, "", GetCode(plain))
	assert.Equal(t, Category(""), GetCategory(nil))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}
