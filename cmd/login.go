package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"spendlens/internal/api"
	"spendlens/internal/config"
)

var flagLoginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store an API token in the config file",
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&flagLoginUsername, "username", "u", "", "Username (prompted if omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	username := flagLoginUsername
	var password string

	var fields []huh.Field
	if username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(&username))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&password))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	client := api.NewClient(cfg.Server.BaseURL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	token, err := client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	cfg.Server.Token = token
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Printf("  Signed in as %s\n", username)
	fmt.Printf("  Token saved to %s\n", config.ConfigPath())
	return nil
}

// promptPassword asks for a password without echoing it.
func promptPassword(out *string) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(out),
	)).Run()
}
