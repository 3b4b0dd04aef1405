package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/soyeahso/ebirdmcp/internal/config"
	"github.com/soyeahso/ebirdmcp/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ebird-mcp",
		Short: "eBird tools for MCP clients",
		Long:  "ebird-mcp serves the eBird API 2.0 and a local species taxonomy as MCP tools, and ships a small Gemini chat client to try them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.ebirdmcp/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newTaxonomyCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig reads and validates the config file and replaces the startup
// logger with one built from the logging section. The --log-level flag wins
// over the file. The returned closer releases the log file, if any.
func loadConfig() (config.Config, io.Closer, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, nil, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	if cfg.Logging.File == "" {
		log = logging.New(nil, cfg.Logging.Level)
		return cfg, noFile{}, nil
	}
	l, closer, err := logging.Open(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return cfg, nil, fmt.Errorf("opening log file: %w", err)
	}
	log = l
	return cfg, closer, nil
}

type noFile struct{}

func (noFile) Close() error { return nil }
