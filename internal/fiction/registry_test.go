package fiction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistry_LoadsEmbeddedMarvel(t *testing.T) {
	registry, err := NewRegistry("")
	require.NoError(t, err)

	f, ok := registry.Load("marvel")
	require.True(t, ok)
	require.Equal(t, "marvel", f.Name)
	require.NotEmpty(t, f.Properties)
}

func TestLoad_UnknownFictionNotServable(t *testing.T) {
	registry, err := NewRegistry("")
	require.NoError(t, err)

	_, ok := registry.Load("narnia")
	require.False(t, ok)
}

func TestResolve_NameAndIDAreBidirectional(t *testing.T) {
	registry, err := NewRegistry("")
	require.NoError(t, err)

	byName, err := registry.Resolve("marvel", "Iron Man")
	require.NoError(t, err)
	require.Equal(t, "tt0371746", byName)

	byID, err := registry.Resolve("marvel", "tt0371746")
	require.NoError(t, err)
	require.Equal(t, byName, byID)
}

func TestResolve_IsCaseSensitive(t *testing.T) {
	registry, err := NewRegistry("")
	require.NoError(t, err)

	_, err = registry.Resolve("marvel", "iron man")
	require.ErrorIs(t, err, ErrUnknownProperty)
}

func TestResolve_Errors(t *testing.T) {
	registry, err := NewRegistry("")
	require.NoError(t, err)

	_, err = registry.Resolve("narnia", "Iron Man")
	require.ErrorIs(t, err, ErrUnknownFiction)

	_, err = registry.Resolve("marvel", "Unknown Movie")
	require.ErrorIs(t, err, ErrUnknownProperty)
}

func TestNewRegistry_DatasetsDirAddsFictions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "middle-earth.yaml"), []byte(`
name: middle-earth
properties:
  - name: "The Fellowship of the Ring"
    imdb_id: "tt0120737"
`), 0o644))

	registry, err := NewRegistry(dir)
	require.NoError(t, err)

	// Embedded datasets still present.
	_, ok := registry.Load("marvel")
	require.True(t, ok)

	id, err := registry.Resolve("middle-earth", "The Fellowship of the Ring")
	require.NoError(t, err)
	require.Equal(t, "tt0120737", id)

	require.Equal(t, []string{"marvel", "middle-earth"}, registry.Names())
}

func TestNewRegistry_RejectsMalformedDataset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(`
name: broken
properties:
  - name: "No ID"
`), 0o644))

	_, err := NewRegistry(dir)
	require.Error(t, err)
}
