package service

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveAndPath(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("Plan.PDF", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(name))

	path, err := store.Path(name)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content))

	_, err = store.Path("../" + name)
	assert.ErrorIs(t, err, ErrInvalidFileName)
	_, err = store.Path("missing.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDiskStore_SaveFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	broken := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("partial upload"), iotest.ErrReader(broken))
	_, err = store.Save("plan.pdf", r)
	assert.ErrorIs(t, err, broken)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
