package cli

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soyeahso/ebirdmcp/internal/chat"
	"github.com/soyeahso/ebirdmcp/internal/llm"
	"github.com/soyeahso/ebirdmcp/internal/mcp"
)

func newChatCmd() *cobra.Command {
	var (
		serverURL string
		model     string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask Gemini about birds using a running ebird-mcp http server",
		Long: `Start an interactive chat with Gemini. The model is given the tools of the
MCP server at --server (start one with "ebird-mcp serve --transport http").
GOOGLE_API_KEY must be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := loadConfig()
			if err != nil {
				return err
			}
			defer closer.Close()

			if serverURL != "" {
				cfg.Chat.ServerURL = serverURL
			}
			if model != "" {
				cfg.Chat.Model = model
			}
			if err := cfg.RequireChatCredential(); err != nil {
				log.Error().Err(err).Msg("refusing to start chat")
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			client := mcp.NewClient(cfg.Chat.ServerURL, mcp.WithBearerToken(cfg.Server.AuthToken))
			info, err := client.Initialize(ctx)
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", cfg.Chat.ServerURL, err)
			}
			log.Debug().Str("server", info.ServerInfo.Name).Str("version", info.ServerInfo.Version).Msg("connected")

			gemini := llm.NewGeminiAPIClient(cfg.Chat.APIKey, cfg.Chat.Model, "")
			session, err := chat.NewSession(ctx, gemini, client, chat.Options{
				MaxRounds: cfg.Chat.MaxRounds,
				Logger:    log,
			})
			if err != nil {
				return err
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			rl, err := chat.NewReadline(filepath.Join(paths.Base, "chat_history"))
			if err != nil {
				return err
			}
			defer rl.Close()

			return chat.NewREPL(session, rl, rl.Stdout()).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "MCP endpoint (default http://127.0.0.1:8000/mcp)")
	cmd.Flags().StringVar(&model, "model", "", "Gemini model name")

	return cmd
}
