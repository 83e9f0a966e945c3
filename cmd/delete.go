package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tesh254/chatmd/internal/storage"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id|source-prefix]",
	Short: "Deletes an export by id, or every export whose source starts with the prefix",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := args[0]

		cfg, log := loadConfig()
		st := openStorage(cfg, log)
		defer st.Close()

		n, err := newAPI(cfg, st, false, log).DeleteExport(target)
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Printf("Nothing matched '%s'.\n", target)
			return
		}
		if err != nil {
			log.Fatalf("Failed to delete export: %v", err)
		}

		fmt.Printf("Deleted %d export(s) matching '%s'.\n", n, target)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
