package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jchantrell/uasset/internal/asset"
	"github.com/jchantrell/uasset/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(DefaultDatabaseOptions(filepath.Join(t.TempDir(), "uasset.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.CreateSchema(context.Background()))
	return db
}

func metadataContainer(t *testing.T) *asset.File {
	t.Helper()
	f, err := asset.NewFile(asset.FormatVersion21, "2021.3.16f1", asset.LittleEndian)
	require.NoError(t, err)

	w := stream.NewWriter()
	w.SetOrder(asset.LittleEndian.Binary())
	w.WriteLenString("level/terrain.bin")
	w.WriteUint32(4)
	w.WriteBytes([]byte("dirt"))
	f.AddObject(7, asset.FlagNamed, w.Bytes())
	f.AddObject(9, 0, []byte("unnamed"))

	// Populate the derived header fields and descriptor offsets.
	_, err = asset.Encode(f)
	require.NoError(t, err)
	return f
}

func TestInsertContainer(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)
	f := metadataContainer(t)

	containerID, err := db.InsertContainer(ctx, "/data/level.assets", f)
	require.NoError(t, err)
	assert.Positive(t, containerID)

	var path, toolVersion, byteOrder string
	var objectCount int
	row := db.QueryRow(ctx,
		`SELECT path, tool_version, byte_order, object_count FROM containers WHERE container_id = ?`,
		containerID)
	require.NoError(t, row.Scan(&path, &toolVersion, &byteOrder, &objectCount))
	assert.Equal(t, "/data/level.assets", path)
	assert.Equal(t, "2021.3.16f1", toolVersion)
	assert.Equal(t, "little", byteOrder)
	assert.Equal(t, 2, objectCount)

	var name string
	row = db.QueryRow(ctx,
		`SELECT name FROM objects WHERE container_id = ? AND object_id = 0`, containerID)
	require.NoError(t, row.Scan(&name))
	assert.Equal(t, "level/terrain.bin", name)

	// Unnamed objects store a NULL name.
	var unnamed int
	row = db.QueryRow(ctx,
		`SELECT COUNT(*) FROM objects WHERE container_id = ? AND name IS NULL`, containerID)
	require.NoError(t, row.Scan(&unnamed))
	assert.Equal(t, 1, unnamed)
}

func TestHasContainer(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	exists, err := db.HasContainer(ctx, "/data/level.assets")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = db.InsertContainer(ctx, "/data/level.assets", metadataContainer(t))
	require.NoError(t, err)

	exists, err = db.HasContainer(ctx, "/data/level.assets")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateSchemaIdempotent(t *testing.T) {
	db := openTestDatabase(t)
	require.NoError(t, db.CreateSchema(context.Background()))
}

func TestNewDatabaseValidation(t *testing.T) {
	_, err := NewDatabase(nil)
	require.Error(t, err)

	_, err = NewDatabase(&DatabaseOptions{})
	require.Error(t, err)
}
