package main

import (
	"fmt"
	"os"

	"github.com/jchantrell/uasset/internal/asset"
	"github.com/jchantrell/uasset/internal/export"
	"github.com/jchantrell/uasset/internal/utils"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <container>",
	Short: "Show container header fields and the object table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		f, err := openContainer(path)
		if err != nil {
			return err
		}

		h := f.Header
		fmt.Printf("Container: %s\n", path)
		fmt.Printf("  Format version: %d\n", h.FormatVersion)
		fmt.Printf("  Tool version:   %s\n", h.ToolVersion)
		fmt.Printf("  Byte order:     %s\n", h.ByteOrder)
		fmt.Printf("  Metadata size:  %s\n", utils.Bytes(int64(h.MetadataSize)))
		fmt.Printf("  File size:      %s\n", utils.Bytes(int64(h.FileSize)))
		fmt.Printf("  Data offset:    %d\n", h.DataOffset)
		fmt.Printf("  Objects:        %s\n", utils.Number(int64(f.Len())))

		if f.Len() == 0 {
			return nil
		}

		fmt.Printf("\n%-8s %-10s %-10s %-10s %-8s %s\n", "ID", "Offset", "Length", "Type", "Flags", "Name")
		for _, obj := range f.Objects() {
			name, err := export.OutputName(obj)
			if err != nil {
				name = fmt.Sprintf("<unreadable: %v>", err)
			}
			fmt.Printf("%-8d %-10d %-10d %-10d 0x%-6x %s\n",
				obj.ID, obj.ByteOffset, obj.ByteLength, obj.TypeID, obj.Flags, name)
		}

		return nil
	},
}

// openContainer reads and parses a container file
func openContainer(path string) (*asset.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening container: %w", err)
	}
	defer file.Close()

	f, err := asset.Read(file)
	if err != nil {
		return nil, fmt.Errorf("parsing container %s: %w", path, err)
	}
	return f, nil
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
