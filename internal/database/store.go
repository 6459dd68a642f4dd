package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jchantrell/uasset/internal/asset"
)

// DDL for the metadata schema. One row per exported container, one row
// per object in it.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS containers (
	container_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	path           TEXT NOT NULL,
	format_version INTEGER NOT NULL,
	tool_version   TEXT NOT NULL,
	byte_order     TEXT NOT NULL,
	metadata_size  INTEGER NOT NULL,
	file_size      INTEGER NOT NULL,
	data_offset    INTEGER NOT NULL,
	object_count   INTEGER NOT NULL,
	exported_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS objects (
	container_id INTEGER NOT NULL REFERENCES containers(container_id) ON DELETE CASCADE,
	object_id    INTEGER NOT NULL,
	name         TEXT,
	type_id      INTEGER NOT NULL,
	flags        INTEGER NOT NULL,
	byte_offset  INTEGER NOT NULL,
	byte_length  INTEGER NOT NULL,
	PRIMARY KEY (container_id, object_id)
);

CREATE INDEX IF NOT EXISTS idx_objects_name ON objects(name);
CREATE INDEX IF NOT EXISTS idx_objects_type ON objects(type_id);
`

// CreateSchema creates the metadata tables if they do not exist
func (d *Database) CreateSchema(ctx context.Context) error {
	if _, err := d.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("creating metadata schema: %w", err)
	}
	return nil
}

// InsertContainer stores a container's header and object table in a
// single transaction and returns the new container row id.
func (d *Database) InsertContainer(ctx context.Context, path string, f *asset.File) (int64, error) {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	h := f.Header
	res, err := tx.ExecContext(ctx,
		`INSERT INTO containers
			(path, format_version, tool_version, byte_order, metadata_size, file_size, data_offset, object_count, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path, h.FormatVersion, h.ToolVersion, h.ByteOrder.String(),
		h.MetadataSize, h.FileSize, h.DataOffset, f.Len(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting container row: %w", err)
	}

	containerID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting container row id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO objects
			(container_id, object_id, name, type_id, flags, byte_offset, byte_length)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing object insert: %w", err)
	}
	defer stmt.Close()

	for _, obj := range f.Objects() {
		var name interface{}
		if obj.Named() {
			n, err := obj.Name()
			if err != nil {
				slog.Warn("Skipping unreadable object name", "id", obj.ID, "error", err)
			} else {
				name = n
			}
		}

		if _, err := stmt.ExecContext(ctx,
			containerID, obj.ID, name, obj.TypeID, obj.Flags, obj.ByteOffset, obj.ByteLength,
		); err != nil {
			return 0, fmt.Errorf("inserting object %d: %w", obj.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing container export: %w", err)
	}

	slog.Debug("Exported container metadata", "path", path, "objects", f.Len(), "container_id", containerID)

	return containerID, nil
}

// HasContainer reports whether a container with the given path has
// already been exported
func (d *Database) HasContainer(ctx context.Context, path string) (bool, error) {
	var count int
	row := d.QueryRow(ctx, `SELECT COUNT(*) FROM containers WHERE path = ?`, path)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("checking for existing container: %w", err)
	}
	return count > 0, nil
}
