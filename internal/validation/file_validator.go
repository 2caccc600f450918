package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
	"github.com/DieMov/PYTHOM/internal/files"
)

// FileValidator checks the workbook locations of a run before any work starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks that path exists, is a regular file and is readable.
// Failures are MISSING_INPUT errors.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewMissingInputError(path, err)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewMissingInputError(path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewMissingInputError(path, fmt.Errorf("%s is a directory", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewMissingInputError(path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputWorkbook checks that path is a readable .xlsx workbook
// A missing input lists the workbooks found in its directory.
func (v *FileValidator) ValidateInputWorkbook(path string) error {
	if err := v.ValidateFile(path); err != nil {
		if candidates := v.nearbyWorkbooks(path); len(candidates) > 0 {
			v.logger.Info("Workbooks found next to the missing input",
				slog.String("directory", filepath.Dir(path)),
				slog.Any("candidates", candidates))
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				appErr.WithContext("candidates", candidates)
			}
		}
		return err
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Input is a temporary Excel lock file",
			slog.String("file", path))
		return apperrors.NewParsingError(fmt.Sprintf("%s is a temporary Excel file", base), nil).
			WithContext("path", path)
	}

	if err := checkWorkbookExtension(path); err != nil {
		v.logger.Error("Input is not an xlsx workbook",
			slog.String("file", path))
		return apperrors.NewParsingError(err.Error(), nil).WithContext("path", path)
	}

	return nil
}

// ValidateOutputWorkbook checks that path names an .xlsx file whose
// directory exists or can be created and is writable.
func (v *FileValidator) ValidateOutputWorkbook(path string) error {
	if err := checkWorkbookExtension(path); err != nil {
		return apperrors.NewStorageError(err.Error(), nil).WithContext("path", path)
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a probe file
	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

func (v *FileValidator) nearbyWorkbooks(path string) []string {
	found, err := files.NewDiscovery(filepath.Dir(path)).FindWorkbooks(".")
	if err != nil {
		return nil
	}
	return files.Names(found)
}

func checkWorkbookExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" {
		return fmt.Errorf("file %s is not an xlsx workbook (extension: %q)", filepath.Base(path), ext)
	}
	return nil
}
