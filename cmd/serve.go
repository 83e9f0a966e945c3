package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tesh254/chatmd/internal/core"
	"github.com/tesh254/chatmd/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the MCP server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := loadConfig()
		transport := viper.GetString("transport")

		st := openStorage(cfg, log)
		defer st.Close()

		chatAPI := newAPI(cfg, st, false, log)
		mcpCore := core.New(chatAPI, log)
		server := mcpCore.NewServer(version.GetVersion())

		var err error
		switch transport {
		case "http":
			err = mcpCore.ServeHTTP(server, cfg.HTTPAddress)
		case "stdio":
			err = mcpCore.ServeStdio(cmd.Context(), server)
		default:
			log.Fatalf("Unknown transport %q: must be stdio or http", transport)
		}
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("http-address", "", "HTTP address to listen on (default from config, :8080)")
	serveCmd.Flags().String("transport", "stdio", "Transport type (stdio or http)")
	viper.BindPFlag("http_address", serveCmd.Flags().Lookup("http-address"))
	viper.BindPFlag("transport", serveCmd.Flags().Lookup("transport"))
}
