package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BridgeTech-DC/AtlasAI/internal/api"
	"github.com/BridgeTech-DC/AtlasAI/internal/config"
	"github.com/BridgeTech-DC/AtlasAI/internal/cookies"
	"github.com/BridgeTech-DC/AtlasAI/internal/email"
	"github.com/BridgeTech-DC/AtlasAI/internal/repl"
	"github.com/BridgeTech-DC/AtlasAI/internal/session"
	"github.com/BridgeTech-DC/AtlasAI/internal/view"
)

var (
	flagBaseURL        string
	flagConversationID string
	flagPageSize       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "atlas",
		Short: "Chat with the Atlas assistant and send emails on your behalf",
		RunE:  run,
	}
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "backend base URL (overrides ATLAS_BASE_URL)")
	rootCmd.Flags().StringVar(&flagConversationID, "conversation", "", "conversation id to resume")
	rootCmd.Flags().IntVar(&flagPageSize, "page-size", 0, "history page size (overrides HISTORY_PAGE_SIZE)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg := config.Load()
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagPageSize > 0 {
		cfg.HistoryPageSize = flagPageSize
	}

	// Setup logger
	logger := cfg.SetupLogger()

	// The Authorization cookie survives restarts in the cookie file
	store, err := cookies.NewStore(cfg.CookieFile)
	if err != nil {
		return fmt.Errorf("open cookie store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout()}
	client := api.New(cfg.BaseURL, httpClient, store, logger)

	state := view.NewState()
	sess := session.New(client, state, cfg.HistoryPageSize, logger)
	workflow := email.NewWorkflow(client, sess, state, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Activate the assistant persona; a failure is not fatal, the backend
	// falls back to the default persona
	if err := client.SelectPersona(ctx, cfg.PersonaID); err != nil {
		logger.Warn().Err(err).Int("persona_id", cfg.PersonaID).Msg("failed to select persona")
	}

	// Keep the bearer token fresh for long-running sessions
	sess.StartTokenRefresh(ctx, cfg.RefreshInterval())

	app := repl.NewApp(client, sess, workflow, state, os.Stdout, logger)

	// Deep link: resume a conversation passed on the command line
	if flagConversationID != "" {
		if err := sess.Restore(ctx, "conversation_id="+flagConversationID); err != nil {
			logger.Error().Err(err).Msg("failed to resume conversation")
		} else {
			renderer := view.NewRenderer(os.Stdout)
			renderer.RenderTranscript(&state.Transcript)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	app.Run(ctx, scanner)
	return nil
}
