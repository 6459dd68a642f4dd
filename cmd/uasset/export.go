package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jchantrell/uasset/internal/database"
	"github.com/jchantrell/uasset/internal/utils"
	"github.com/spf13/cobra"
)

var exportForce bool

var exportCmd = &cobra.Command{
	Use:   "export <container>",
	Short: "Export container metadata into the SQLite database",
	Long: `Export parses a container and writes its header fields and object table
into the metadata database, where they can be inspected with the query
command. Payload bytes are not stored, only structural metadata.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		path := args[0]
		startTime := time.Now()

		f, err := openContainer(path)
		if err != nil {
			return err
		}

		slog.Info("Starting export...", "container", path, "objects", f.Len(), "database", cfg.Database)

		db, err := database.NewDatabase(database.DefaultDatabaseOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		if err := db.CreateSchema(ctx); err != nil {
			return err
		}

		if !exportForce {
			exists, err := db.HasContainer(ctx, path)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("container %s already exported (use --force to export again)", path)
			}
		}

		containerID, err := db.InsertContainer(ctx, path, f)
		if err != nil {
			return fmt.Errorf("exporting container metadata: %w", err)
		}

		duration := time.Since(startTime)
		fmt.Printf("Container id: %d\n", containerID)
		fmt.Printf("Objects exported: %s\n", utils.Number(int64(f.Len())))
		fmt.Printf("Duration: %s\n", utils.Duration(duration))
		fmt.Println("Try running: uasset query --tables")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "export even if the container is already in the database")
}
