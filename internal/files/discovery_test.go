package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFindWorkbooks(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 8, 11, 9, 0, 0, 0, time.UTC)
	touch(t, dir, "cartera_julio.xlsx", base)
	touch(t, dir, "cartera_agosto.XLSX", base.Add(time.Hour))
	touch(t, dir, "~$cartera_agosto.xlsx", base.Add(2*time.Hour))
	touch(t, dir, "antiguo.xls", base)
	touch(t, dir, "notas.csv", base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0755))

	found, err := NewDiscovery(dir).FindWorkbooks(".")
	require.NoError(t, err)

	assert.Equal(t, []string{"cartera_agosto.XLSX", "cartera_julio.xlsx"}, Names(found), "newest first, lock files and .xls skipped")
	assert.Equal(t, filepath.Join(dir, "cartera_agosto.XLSX"), found[0].Path)
	assert.Equal(t, int64(1), found[0].Size)
}

func TestFindWorkbooks_AbsoluteDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.xlsx", time.Now())

	found, err := NewDiscovery("/no/such/base").FindWorkbooks(dir)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestFindWorkbooks_MissingDir(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindWorkbooks("absent")
	assert.Error(t, err)
}

