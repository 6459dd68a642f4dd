package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jchantrell/uasset/internal/asset"
	"github.com/jchantrell/uasset/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedPayload(order asset.ByteOrder, name string, content []byte) []byte {
	w := stream.NewWriter()
	w.SetOrder(order.Binary())
	w.WriteLenString(name)
	w.WriteUint32(uint32(len(content)))
	w.WriteBytes(content)
	return w.Bytes()
}

func testContainer(t *testing.T) *asset.File {
	t.Helper()
	f, err := asset.NewFile(asset.FormatVersion21, "2021.3.16f1", asset.LittleEndian)
	require.NoError(t, err)
	f.AddObject(1, asset.FlagNamed, namedPayload(asset.LittleEndian, "sounds/step.wav", []byte("wav bytes")))
	f.AddObject(2, 0, []byte("raw bytes"))
	return f
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()
	f := testContainer(t)

	var calls int
	written, err := NewExporter(f, dir).ExportAll(func(current, total int, description string) {
		calls++
		assert.Equal(t, calls, current)
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	// Bytes written counts the content on disk, not the named object's
	// payload with its name prefix.
	assert.Equal(t, int64(len("wav bytes")+len("raw bytes")), written)

	named, err := os.ReadFile(filepath.Join(dir, "sounds@step.wav"))
	require.NoError(t, err)
	assert.Equal(t, []byte("wav bytes"), named)

	unnamed, err := os.ReadFile(filepath.Join(dir, "object_1_type2.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte("raw bytes"), unnamed)
}

func TestExportObjectsSubset(t *testing.T) {
	dir := t.TempDir()
	f := testContainer(t)

	written, err := NewExporter(f, dir).ExportObjects([]uint64{1}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len("raw bytes")), written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "object_1_type2.bin", entries[0].Name())
}

func TestExportObjectsUnknownID(t *testing.T) {
	f := testContainer(t)
	_, err := NewExporter(f, t.TempDir()).ExportObjects([]uint64{99}, nil)
	require.ErrorIs(t, err, asset.ErrObjectNotFound)
}

func TestExportObjectsEmpty(t *testing.T) {
	// No ids means no directory is created.
	dir := filepath.Join(t.TempDir(), "never-created")
	written, err := NewExporter(testContainer(t), dir).ExportObjects(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, written)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestOutputName(t *testing.T) {
	f := testContainer(t)

	named, err := f.Object(0)
	require.NoError(t, err)
	name, err := OutputName(named)
	require.NoError(t, err)
	assert.Equal(t, "sounds@step.wav", name)

	unnamed, err := f.Object(1)
	require.NoError(t, err)
	name, err = OutputName(unnamed)
	require.NoError(t, err)
	assert.Equal(t, "object_1_type2.bin", name)

	// A named object with an empty name falls back to the synthetic form.
	id := f.AddObject(3, asset.FlagNamed, namedPayload(asset.LittleEndian, "", nil))
	blank, err := f.Object(id)
	require.NoError(t, err)
	name, err = OutputName(blank)
	require.NoError(t, err)
	assert.Equal(t, "object_2_type3.bin", name)
}
