// Package main is a command-line client for the chat service.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/internal/config"
	"github.com/capitalize-ai/claude-web-client/internal/service"
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
)

// chatClient is what the commands need from *claude.Client.
type chatClient interface {
	service.ChatClient
	ResetAll(ctx context.Context) error
}

// clientFactory opens a session from the loaded configuration.
type clientFactory func(ctx context.Context, cfg *config.Config, log *logger.Logger) (chatClient, error)

func newSession(ctx context.Context, cfg *config.Config, log *logger.Logger) (chatClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := claude.New(ctx, cfg.Cookie(), cfg.ClientConfig(log))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newSession).ExecuteContext(ctx); err != nil {
		if errors.Is(err, claude.ErrAuthentication) {
			color.Red("Error: session cookie rejected, refresh SESSION_KEY (%v)\n", err)
		} else {
			color.Red("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app carries state shared by every command.
type app struct {
	newClient clientFactory
	client    chatClient
	log       *logger.Logger
	verbose   bool
}

func newRootCmd(newClient clientFactory) *cobra.Command {
	a := &app{newClient: newClient}

	root := &cobra.Command{
		Use:           "chat",
		Short:         "Talk to the chat service with a browser session cookie",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `chat manages conversations and sends prompts using the session cookie
found in SESSION_ID and SESSION_KEY (or CLAUDE_COOKIE). Variables are also
read from a .env file in the working directory.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.connect(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log service calls to stderr")

	root.AddCommand(
		a.listCmd(),
		a.createCmd(),
		a.historyCmd(),
		a.deleteCmd(),
		a.renameCmd(),
		a.sendCmd(),
		a.resetCmd(),
	)
	return root
}

// connect builds the logger and opens the session once per invocation.
func (a *app) connect(cmd *cobra.Command) error {
	cfg := config.Load()

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return err
	}
	a.log = log

	client, err := a.newClient(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	a.client = client
	a.log.Debug("session ready", zap.String("command", cmd.Name()))
	return nil
}
