package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jchantrell/uasset/internal/asset"
	"github.com/jchantrell/uasset/internal/backup"
	"github.com/jchantrell/uasset/internal/utils"
	"github.com/spf13/cobra"
)

var (
	packSet     []string
	packSetName []string
	packAdd     []string
	packAddType uint32
	packRemove  []int64
	packOut     string
	packNoBack  bool
)

var packCmd = &cobra.Command{
	Use:   "pack <container>",
	Short: "Apply edits to a container and rewrite it",
	Long: `Pack reads a container, applies the requested edits, and rewrites the
file with every offset, length, and padding byte recomputed.

Edits:
  --set id=path        replace an object's content with a file's bytes
  --set-name id=name   rename a named object
  --add path           add a new named object holding a file's bytes
  --remove id          remove an object

Output is written to a temporary file and atomically renamed into place.
When rewriting in place, the original is backed up first unless
--no-backup or keep_backups: false is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		startTime := time.Now()

		f, err := openContainer(path)
		if err != nil {
			return err
		}

		edits := len(packSet) + len(packSetName) + len(packAdd) + len(packRemove)
		slog.Info("Starting pack...", "container", path, "objects", f.Len(), "edits", edits)

		if err := applyEdits(f); err != nil {
			return err
		}

		dest := packOut
		inPlace := dest == "" || dest == path
		if inPlace {
			dest = path
			if cfg.KeepBackups && !packNoBack {
				mgr := backup.NewManager(cfg.BackupDir)
				backupPath, err := mgr.Backup(path)
				if err != nil {
					return fmt.Errorf("backing up container: %w", err)
				}
				slog.Info("Backed up container", "backup", backupPath)
			}
		}

		written, err := writeContainerAtomic(f, dest)
		if err != nil {
			return err
		}

		duration := time.Since(startTime)
		fmt.Printf("Edits applied: %d\n", edits)
		fmt.Printf("Objects in output: %d\n", f.Len())
		fmt.Printf("Bytes written: %s\n", utils.Bytes(written))
		fmt.Printf("Duration: %s\n", utils.Duration(duration))

		return nil
	},
}

// applyEdits runs removals, replacements, renames, then additions.
func applyEdits(f *asset.File) error {
	for _, id := range packRemove {
		if id < 0 {
			return fmt.Errorf("invalid object id %d", id)
		}
		if err := f.RemoveObject(uint64(id)); err != nil {
			return fmt.Errorf("removing object: %w", err)
		}
		slog.Debug("Removed object", "id", id)
	}

	for _, spec := range packSet {
		id, value, err := splitEditSpec(spec)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(value)
		if err != nil {
			return fmt.Errorf("reading replacement for object %d: %w", id, err)
		}
		obj, err := f.Object(id)
		if err != nil {
			return fmt.Errorf("replacing content: %w", err)
		}
		if err := obj.SetContent(content); err != nil {
			return fmt.Errorf("replacing content of object %d: %w", id, err)
		}
		slog.Debug("Replaced object content", "id", id, "bytes", len(content))
	}

	for _, spec := range packSetName {
		id, name, err := splitEditSpec(spec)
		if err != nil {
			return err
		}
		obj, err := f.Object(id)
		if err != nil {
			return fmt.Errorf("renaming object: %w", err)
		}
		if err := obj.SetName(name); err != nil {
			return fmt.Errorf("renaming object %d: %w", id, err)
		}
		slog.Debug("Renamed object", "id", id, "name", name)
	}

	for _, addPath := range packAdd {
		content, err := os.ReadFile(addPath)
		if err != nil {
			return fmt.Errorf("reading file to add: %w", err)
		}
		name := filepath.Base(addPath)

		id := f.AddObject(packAddType, asset.FlagNamed, nil)
		obj, err := f.Object(id)
		if err != nil {
			return fmt.Errorf("adding object: %w", err)
		}
		// A fresh named object needs its name/content prefix built
		// before the views work; seed it with an empty named payload.
		obj.SetPayload(emptyNamedPayload())
		if err := obj.SetName(name); err != nil {
			return fmt.Errorf("naming added object %d: %w", id, err)
		}
		if err := obj.SetContent(content); err != nil {
			return fmt.Errorf("filling added object %d: %w", id, err)
		}
		slog.Debug("Added object", "id", id, "name", name, "bytes", len(content))
	}

	return nil
}

// emptyNamedPayload is the smallest valid named payload: zero-length
// name and zero-length content. Both length prefixes are zero in either
// byte order.
func emptyNamedPayload() []byte {
	return make([]byte, 8)
}

// splitEditSpec parses an "id=value" edit flag.
func splitEditSpec(spec string) (uint64, string, error) {
	idStr, value, found := strings.Cut(spec, "=")
	if !found {
		return 0, "", fmt.Errorf("invalid edit %q (expected id=value)", spec)
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid object id in edit %q: %w", spec, err)
	}
	return id, value, nil
}

// writeContainerAtomic serializes the container to a temp file next to
// dest and renames it into place. Returns the number of bytes written.
func writeContainerAtomic(f *asset.File, dest string) (int64, error) {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".uasset-")
	if err != nil {
		return 0, fmt.Errorf("creating temporary container: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := asset.Write(f, tmp); err != nil {
		return 0, fmt.Errorf("serializing container: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("syncing container: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temporary container: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return 0, fmt.Errorf("renaming container into place: %w", err)
	}
	success = true

	return int64(f.Header.FileSize), nil
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringSliceVar(&packSet, "set", []string{}, "replace object content: id=path")
	packCmd.Flags().StringSliceVar(&packSetName, "set-name", []string{}, "rename a named object: id=name")
	packCmd.Flags().StringSliceVar(&packAdd, "add", []string{}, "add a named object from a file")
	packCmd.Flags().Uint32Var(&packAddType, "add-type", 0, "type id for added objects")
	packCmd.Flags().Int64SliceVar(&packRemove, "remove", []int64{}, "remove an object by id")
	packCmd.Flags().StringVar(&packOut, "out", "", "output path (default: rewrite in place)")
	packCmd.Flags().BoolVar(&packNoBack, "no-backup", false, "skip backing up the original container")
}
