package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tesh254/chatmd/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Prints an archived export",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := loadConfig()
		st := openStorage(cfg, log)
		defer st.Close()

		e, err := newAPI(cfg, st, false, log).GetExport(args[0])
		if errors.Is(err, storage.ErrNotFound) {
			log.Fatalf("No export with id '%s'", args[0])
		}
		if err != nil {
			log.Fatalf("Failed to get export: %v", err)
		}

		fmt.Print(e.Markdown)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
