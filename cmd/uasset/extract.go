package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jchantrell/uasset/internal/export"
	"github.com/jchantrell/uasset/internal/utils"
	"github.com/spf13/cobra"
)

var extractIDs []int64

var extractCmd = &cobra.Command{
	Use:   "extract <container>",
	Short: "Extract object payloads from a container to disk",
	Long: `Extract parses a container and writes each object's content to the
output directory. Named objects are written under their embedded name;
unnamed objects get a synthetic name derived from their id and type.

By default every object is extracted. Use --id to select specific
objects.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		startTime := time.Now()

		f, err := openContainer(path)
		if err != nil {
			return err
		}

		slog.Info("Starting extract...", "container", path, "objects", f.Len(), "output", cfg.Output)

		ids := make([]uint64, 0, f.Len())
		if len(extractIDs) > 0 {
			for _, id := range extractIDs {
				if id < 0 {
					return fmt.Errorf("invalid object id %d", id)
				}
				ids = append(ids, uint64(id))
			}
		} else {
			for _, obj := range f.Objects() {
				ids = append(ids, obj.ID)
			}
		}

		if len(ids) == 0 {
			slog.Info("No objects to extract")
			return nil
		}

		for _, id := range ids {
			if _, err := f.Object(id); err != nil {
				return fmt.Errorf("selecting objects: %w", err)
			}
		}

		progress := utils.NewProgress(len(ids), progressEnabled())

		exporter := export.NewExporter(f, cfg.Output)
		totalBytes, err := exporter.ExportObjects(ids, func(current, total int, description string) {
			progress.Update(current, description)
		})
		progress.Finish()
		if err != nil {
			return fmt.Errorf("extracting objects: %w", err)
		}

		duration := time.Since(startTime)
		fmt.Printf("Objects extracted: %d\n", len(ids))
		fmt.Printf("Bytes written: %s\n", utils.Bytes(totalBytes))
		fmt.Printf("Duration: %s\n", utils.Duration(duration))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().Int64SliceVar(&extractIDs, "id", []int64{}, "object ids to extract (default all)")
}
