// Command mochi manages conversation sessions and system prompts from
// the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mochi-chat/mochi/observability"
	"github.com/mochi-chat/mochi/service"
)

var (
	configFile string
	logFile    string
	verbose    bool

	svc      *service.Service
	eventLog *os.File
)

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupService(cmd *cobra.Command, _ []string) error {
	cfg := service.DefaultConfig()
	if configFile != "" {
		loaded, err := service.LoadConfig(configFile)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	level := logLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	observer := buildObserver(cfg, level)

	var err error
	svc, err = service.New(&cfg, service.WithObserver(observer))
	return err
}

// buildObserver emits events to stderr, and mirrors them to a JSON log
// file when one is configured.
func buildObserver(cfg service.Config, level slog.Level) observability.Observer {
	stderrObs := observability.NewSlogObserver(slog.Default())

	path := cfg.LogFile
	if logFile != "" {
		path = logFile
	}
	if path == "" {
		return stderrObs
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open event log %s: %v\n", path, err)
		return stderrObs
	}
	eventLog = f

	fileObs := observability.NewSlogObserver(slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: level,
	})))
	return observability.NewMultiObserver(stderrObs, fileObs)
}

func main() {
	root := &cobra.Command{
		Use:               "mochi",
		Short:             "Manage chat sessions and system prompts",
		SilenceUsage:      true,
		PersistentPreRunE: setupService,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if eventLog != nil {
				eventLog.Close()
			}
			if svc != nil {
				return svc.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (JSON or YAML)")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "mirror events to this JSON log file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newSessionsCmd())
	root.AddCommand(newPromptsCmd())
	root.AddCommand(newStatusCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
