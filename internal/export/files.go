package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jchantrell/uasset/internal/asset"
)

// ObjectSource defines the interface for loading objects from a container
type ObjectSource interface {
	Objects() []*asset.Object
	Object(id uint64) (*asset.Object, error)
}

// Exporter handles exporting object payloads from a container to disk
type Exporter struct {
	source    ObjectSource
	outputDir string
}

// NewExporter creates a new payload exporter
func NewExporter(source ObjectSource, outputDir string) *Exporter {
	return &Exporter{
		source:    source,
		outputDir: outputDir,
	}
}

// ProgressCallback is called to report export progress
type ProgressCallback func(current int, total int, description string)

// ExportAll exports every object in the container to the output
// directory and returns the number of bytes written.
func (e *Exporter) ExportAll(progressCallback ProgressCallback) (int64, error) {
	objects := e.source.Objects()
	ids := make([]uint64, len(objects))
	for i, o := range objects {
		ids[i] = o.ID
	}
	return e.ExportObjects(ids, progressCallback)
}

// ExportObjects exports the specified objects to the output directory
// and returns the number of bytes written. Named objects are written
// under their embedded name; unnamed objects get a synthetic name
// derived from their id and type. The byte count covers the content
// written to disk, which for named objects excludes the embedded
// name prefix.
func (e *Exporter) ExportObjects(ids []uint64, progressCallback ProgressCallback) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	// Create output directory
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	var written int64
	total := len(ids)
	for i, id := range ids {
		obj, err := e.source.Object(id)
		if err != nil {
			return written, fmt.Errorf("loading object %d: %w", id, err)
		}

		name, err := OutputName(obj)
		if err != nil {
			return written, fmt.Errorf("naming object %d: %w", id, err)
		}

		content, err := obj.Content()
		if err != nil {
			return written, fmt.Errorf("loading content of object %d: %w", id, err)
		}

		outputPath := filepath.Join(e.outputDir, name)
		if err := os.WriteFile(outputPath, content, 0644); err != nil {
			return written, fmt.Errorf("writing object %d to %s: %w", id, outputPath, err)
		}
		written += int64(len(content))

		slog.Debug("Exported object", "id", id, "output", outputPath, "bytes", len(content))

		if progressCallback != nil {
			progressCallback(i+1, total, name)
		}
	}

	return written, nil
}

// OutputName returns the on-disk file name for an object: the sanitized
// embedded name for named objects, a synthetic one otherwise.
func OutputName(obj *asset.Object) (string, error) {
	if obj.Named() {
		name, err := obj.Name()
		if err != nil {
			return "", err
		}
		if name != "" {
			return sanitizeName(name), nil
		}
	}
	return fmt.Sprintf("object_%d_type%d.bin", obj.ID, obj.TypeID), nil
}

// sanitizeName sanitizes an embedded object name for use as a filename
// Replaces path separators with @ symbols
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "@")
	name = strings.ReplaceAll(name, string(filepath.Separator), "@")
	return name
}
