package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"spendlens/internal/bus"
	"spendlens/internal/chatbot"
	"spendlens/internal/config"
	"spendlens/internal/daemon"
	"spendlens/internal/server"
	"spendlens/internal/store"
)

var (
	flagServeAddr  string
	flagServeDB    string
	flagServeWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the spendlens backend server",
	RunE:  runServe,
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a local user account directly in the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&flagServeDB, "db", "", "SQLite database path (overrides config)")
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", false, "Also run the alert watcher against this server")
	registerCmd.Flags().StringVar(&flagServeDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(registerCmd)
}

func openStore(cfg config.Config) (*store.Store, error) {
	path := config.DBPath(cfg)
	if flagServeDB != "" {
		path = flagServeDB
	}
	return store.Open(path)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = st.Close() }()

	remote := chatbot.NewRemoteIntent(cfg.Assistant.BaseURL, cfg.Assistant.APIKey, cfg.Assistant.Model)
	chat := chatbot.NewEngine(st, remote, currencySymbol(cfg), log)

	addr := cfg.Server.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	changes := bus.New()
	srv := server.New(server.Config{Addr: addr}, st, chat, changes, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watchErr := make(chan error, 1)
	if flagServeWatch {
		token := config.GetToken(cfg)
		if token == "" {
			log.Warn().Msg("watch mode has no API token; run `spendlens login` first")
		}
		watcher := daemon.New(daemon.Config{
			BaseURL:  localBaseURL(addr),
			Token:    token,
			Interval: time.Duration(cfg.Alerts.PollIntervalSec) * time.Second,
			Bus:      changes,
		}, log)
		go func() { watchErr <- watcher.Run(ctx) }()
	}

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if flagServeWatch {
		if err := <-watchErr; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

// localBaseURL turns a listen address into a URL the in-process watcher can
// reach, defaulting the host when only a port was given.
func localBaseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://127.0.0.1" + addr
	}
	return "http://" + addr
}

func runRegister(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var password string
	if err := promptPassword(&password); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = st.Close() }()

	if _, err := st.CreateUser(context.Background(), args[0], password); err != nil {
		return err
	}

	fmt.Printf("  Created user %s\n", args[0])
	return nil
}
