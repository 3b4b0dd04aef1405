package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tillberg/autorestart"

	"github.com/soyeahso/ebirdmcp/internal/config"
	"github.com/soyeahso/ebirdmcp/internal/ebird"
	"github.com/soyeahso/ebirdmcp/internal/mcp"
	"github.com/soyeahso/ebirdmcp/internal/taxonomy"
	"github.com/soyeahso/ebirdmcp/internal/tools"
	"github.com/soyeahso/ebirdmcp/internal/version"
)

func newServeCmd() *cobra.Command {
	var (
		transport string
		addr      string
		warm      bool
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the eBird MCP tool server",
		Long: `Run the MCP tool server. The stdio transport reads one JSON-RPC message
per line on stdin; the http transport serves POST /mcp on --addr.
EBIRD_API_KEY must be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := loadConfig()
			if err != nil {
				return err
			}
			defer closer.Close()

			if transport != "" {
				cfg.Server.Transport = transport
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if warm {
				cfg.Server.Warm = true
			}
			if issues := config.Validate(&cfg); len(issues) > 0 {
				return fmt.Errorf("%s", issues[0])
			}

			if err := cfg.RequireCredential(); err != nil {
				log.Error().Err(err).Msg("refusing to start")
				return err
			}

			if watch {
				go autorestart.RestartOnChange()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, cache, err := buildServer(cfg)
			if err != nil {
				return err
			}

			if cfg.Server.Warm {
				warmTaxonomy(ctx, cache)
			}

			log.Info().
				Str("transport", cfg.Server.Transport).
				Int("tools", len(srv.Tools())).
				Str("version", version.Version).
				Msg("ebird-mcp starting")

			switch cfg.Server.Transport {
			case "http":
				return srv.ListenAndServe(ctx, cfg.Server.Addr, mcp.HTTPOptions{
					Token:       cfg.Server.AuthToken,
					CORSOrigins: cfg.Server.CORSOrigins,
				})
			default:
				return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "transport to serve (stdio, http)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport")
	cmd.Flags().BoolVar(&warm, "warm", false, "load the species taxonomy before accepting requests")
	cmd.Flags().BoolVar(&watch, "restart-on-change", false, "re-exec when the binary is rebuilt (development)")

	return cmd
}

// buildServer wires the eBird client, the taxonomy cache and the tool set.
func buildServer(cfg config.Config) (*mcp.Server, *taxonomy.Cache, error) {
	client := newEBirdClient(cfg)
	cache := newTaxonomyCache(cfg, client)

	srv := mcp.NewServer(version.Name, version.Version, log)
	if err := tools.Register(srv, tools.Deps{EBird: client, Taxonomy: cache}); err != nil {
		return nil, nil, fmt.Errorf("registering tools: %w", err)
	}
	return srv, cache, nil
}

func newEBirdClient(cfg config.Config) *ebird.Client {
	return ebird.NewClient(cfg.EBird.APIKey,
		ebird.WithBaseURL(cfg.EBird.BaseURL),
		ebird.WithTimeout(cfg.EBird.Timeout),
		ebird.WithLogger(log),
	)
}

func newTaxonomyCache(cfg config.Config, client *ebird.Client) *taxonomy.Cache {
	return taxonomy.New(client, taxonomy.Options{
		SnapshotPath: cfg.EBird.TaxonomyCache,
		Locale:       cfg.EBird.Locale,
		FetchTimeout: cfg.EBird.Timeout,
		Logger:       log,
	})
}

// warmTaxonomy preloads the index. A failure is logged, not fatal: lookups
// retry an unreachable upstream and report a corrupt snapshot themselves.
func warmTaxonomy(ctx context.Context, cache *taxonomy.Cache) {
	err := cache.Warm(ctx)
	switch {
	case err == nil:
		log.Info().Int("indexKeys", cache.Len()).Msg("taxonomy ready")
	case errors.Is(err, taxonomy.ErrCorruptCache):
		log.Error().Err(err).Msg("taxonomy snapshot is corrupt; delete it to refetch")
	default:
		log.Warn().Err(err).Msg("taxonomy warm-up failed; will retry on first lookup")
	}
}
