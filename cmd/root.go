package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tesh254/chatmd/internal/api"
	"github.com/tesh254/chatmd/internal/config"
	"github.com/tesh254/chatmd/internal/conversation"
	"github.com/tesh254/chatmd/internal/export"
	"github.com/tesh254/chatmd/internal/logger"
	"github.com/tesh254/chatmd/internal/markdown"
	"github.com/tesh254/chatmd/internal/platform"
	"github.com/tesh254/chatmd/internal/scraper"
	"github.com/tesh254/chatmd/internal/storage"
	"github.com/tesh254/chatmd/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "chatmd",
	Short: "chatmd exports AI chat conversations to Markdown.",
	Long: `chatmd reads saved or shared ChatGPT, Claude and Gemini pages and writes the
conversation as clean Markdown, keeping code blocks, tables, lists, quotes and math
intact. Exports can be archived locally and served to agents over MCP.`,
	Version: version.GetVersion(),
}

// Version command with multiple output formats
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		shortFlag, _ := cmd.Flags().GetBool("short")

		switch {
		case jsonFlag:
			fmt.Println(version.GetJSONVersion())
		case shortFlag:
			fmt.Println(version.GetShortVersion())
		default:
			fmt.Println(version.GetDetailedVersion())
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chatmd/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to the archive database")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	versionCmd.Flags().Bool("json", false, "Output version information in JSON format")
	versionCmd.Flags().BoolP("short", "s", false, "Output short version only")
	rootCmd.AddCommand(versionCmd)

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configPath := config.Dir()
		viper.AddConfigPath(configPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Create config file if it doesn't exist
		if err := os.MkdirAll(configPath, os.ModePerm); err != nil {
			fmt.Println("Error creating config directory:", err)
			os.Exit(1)
		}
		configFile := filepath.Join(configPath, "config.yaml")
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			if err := viper.SafeWriteConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileAlreadyExistsError); !ok {
					fmt.Println("Error writing config file:", err)
					os.Exit(1)
				}
			}
		}
	}

	viper.SetEnvPrefix("CHATMD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Println("Error reading config file:", err)
			os.Exit(1)
		}
	}
}

// loadConfig decodes the layered configuration or exits.
func loadConfig() (*config.Config, *logger.Logger) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Stderr("info").Fatalf("Failed to load config: %v", err)
	}
	return cfg, logger.Stderr(cfg.LogLevel)
}

func openStorage(cfg *config.Config, log *logger.Logger) *storage.Storage {
	st, err := storage.NewStorage(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	return st
}

func exportOptions(cfg *config.Config) export.Options {
	opts := export.DefaultOptions()
	opts.Labels = map[string]string{
		"user":      cfg.Labels.User,
		"assistant": cfg.Labels.Assistant,
	}
	opts.Numbering = cfg.Numbering
	return opts
}

func registry(cfg *config.Config) (*platform.Registry, error) {
	reg, err := platform.Builtin()
	if err != nil {
		return nil, err
	}
	if cfg.PlatformsFile == "" {
		return reg, nil
	}
	custom, err := platform.LoadFile(cfg.PlatformsFile)
	if err != nil {
		return nil, err
	}
	return platform.NewRegistry(reg.All(), custom), nil
}

// newAPI wires the conversion pipeline. st may be nil.
func newAPI(cfg *config.Config, st *storage.Storage, verbose bool, log *logger.Logger) *api.API {
	reg, err := registry(cfg)
	if err != nil {
		log.Fatalf("Failed to load platforms: %v", err)
	}

	serializer := markdown.New(
		markdown.WithLogger(log.Component("markdown")),
		markdown.WithMaxDepth(cfg.MaxDepth),
	)
	extractor := conversation.NewExtractor(reg, serializer,
		conversation.WithLogger(log.Component("conversation")),
		conversation.WithWorkers(cfg.Workers),
		conversation.WithEngine(cfg.Engine),
	)

	loader := scraper.DefaultConfig()
	loader.UserAgent = cfg.UserAgent
	loader.Timeout = cfg.Timeout
	loader.Verbose = verbose

	return api.NewAPI(st, extractor,
		api.WithLoaderConfig(loader),
		api.WithExportOptions(exportOptions(cfg)),
		api.WithLogger(log.Component("api")),
	)
}
