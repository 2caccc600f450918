package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/shared/testutil"
)

func TestFileValidator_ValidateInputWorkbook(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
	}{
		{
			name: "valid workbook",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "cartera.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.xlsx")
			},
			wantType: apperrors.ErrTypeMissingInput,
		},
		{
			name: "directory instead of file",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantType: apperrors.ErrTypeMissingInput,
		},
		{
			name: "wrong extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "cartera.csv")
				require.NoError(t, os.WriteFile(path, []byte("a,b"), 0644))
				return path
			},
			wantType: apperrors.ErrTypeParsing,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$cartera.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			wantType: apperrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			err := v.ValidateInputWorkbook(tt.setupFunc(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestFileValidator_MissingInputLogsPath(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	path := filepath.Join(t.TempDir(), "absent.xlsx")

	err := v.ValidateFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.xlsx")
	testutil.AssertLogAttr(t, handler, "file", path)
}

func TestFileValidator_ValidateOutputWorkbook(t *testing.T) {
	v := NewFileValidator(nil)

	t.Run("creates nested directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "resultadoS.xlsx")
		require.NoError(t, v.ValidateOutputWorkbook(path))

		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file must be removed")
	})

	t.Run("rejects non xlsx", func(t *testing.T) {
		err := v.ValidateOutputWorkbook(filepath.Join(t.TempDir(), "out.csv"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})

	t.Run("parent is a file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		err := v.ValidateOutputWorkbook(filepath.Join(blocker, "out.xlsx"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})
}

func TestFileValidator_MissingInputListsCandidates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cartera_agosto.xlsx"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$cartera_agosto.xlsx"), []byte("x"), 0644))

	logger, handler := testutil.NewTestLogger(t)
	err := NewFileValidator(logger).ValidateInputWorkbook(filepath.Join(dir, "absent.xlsx"))

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeMissingInput, appErr.Type)
	assert.Equal(t, []string{"cartera_agosto.xlsx"}, appErr.Context["candidates"])
	assert.True(t, handler.ContainsMessage("Workbooks found next to the missing input"))
}
