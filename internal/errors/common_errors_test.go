package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{"missing input", ErrTypeMissingInput, "MISSING_INPUT"},
		{"missing column", ErrTypeMissingColumn, "MISSING_COLUMN"},
		{"parsing", ErrTypeParsing, "PARSING"},
		{"storage", ErrTypeStorage, "STORAGE"},
		{"render", ErrTypeRender, "RENDER"},
		{"config", ErrTypeConfig, "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    &AppError{Type: ErrTypeParsing, Message: "workbook has no rows"},
			wantMessage: "[PARSING] workbook has no rows",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeStorage,
				Message: "write workbook",
				Cause:   fmt.Errorf("disk full"),
			},
			wantMessage: "[STORAGE] write workbook: disk full",
		},
		{
			name:        "error with empty message",
			appError:    &AppError{Type: ErrTypeConfig},
			wantMessage: "[CONFIG] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := os.ErrNotExist
	err := NewMissingInputError("in.xlsx", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, os.ErrNotExist))

	wrapped := fmt.Errorf("load: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeMissingInput, appErr.Type)
	assert.Equal(t, "in.xlsx", appErr.Context["path"])
}

func TestNewMissingColumnError(t *testing.T) {
	err := NewMissingColumnError([]string{"Saldo Insoluto T-12", "Saldo Insoluto T-01"})

	assert.Equal(t, ErrTypeMissingColumn, err.Type)
	assert.Contains(t, err.Error(), `"Saldo Insoluto T-12"`)
	assert.Contains(t, err.Error(), `"Saldo Insoluto T-01"`)
	assert.Equal(t, []string{"Saldo Insoluto T-12", "Saldo Insoluto T-01"}, err.Context["columns"])
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeRender, Message: "svg"}
	err.WithContext("chart", "box").WithContext("variant", "interactive")

	assert.Equal(t, "box", err.Context["chart"])
	assert.Equal(t, "interactive", err.Context["variant"])
}

func TestIsTypeAndTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		errType  ErrorType
		expected bool
	}{
		{"direct match", NewConfigError("bad", nil), ErrTypeConfig, true},
		{"wrapped match", fmt.Errorf("ctx: %w", NewRenderError("svg", nil)), ErrTypeRender, true},
		{"type mismatch", NewParsingError("x", nil), ErrTypeStorage, false},
		{"plain error", errors.New("plain"), ErrTypeParsing, false},
		{"nil error", nil, ErrTypeParsing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsType(tt.err, tt.errType))
		})
	}

	assert.Equal(t, ErrTypeStorage, TypeOf(fmt.Errorf("x: %w", NewStorageError("y", nil))))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}
