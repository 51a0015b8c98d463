package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	authServer   string
	authUsername string
	authEmail    string
)

var loginCmd = &cobra.Command{
	Use:          "login",
	Short:        "authenticate and save the session locally",
	Long:         `Authenticate against the server and store the token in ~/.equipctl/config.json for subsequent commands.`,
	SilenceUsage: true,
	RunE:         runLogin,
}

var registerCmd = &cobra.Command{
	Use:          "register",
	Short:        "create an account and save the session locally",
	SilenceUsage: true,
	RunE:         runRegister,
}

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVarP(&authServer, "server", "s", "", "Server address (defaults to the saved one)")
		cmd.Flags().StringVarP(&authUsername, "username", "u", "", "Username")
	}
	registerCmd.Flags().StringVarP(&authEmail, "email", "e", "", "Email address (optional)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, username, password, err := promptCredentials()
	if err != nil {
		return err
	}

	client, err := NewAPIClient(cfg.Server, "")
	if err != nil {
		return err
	}

	result, err := Run("Logging in...", func() (*AuthResult, error) {
		return client.Login(username, password)
	})
	if err != nil {
		return err
	}

	return saveSession(cfg, result)
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, username, password, err := promptCredentials()
	if err != nil {
		return err
	}

	client, err := NewAPIClient(cfg.Server, "")
	if err != nil {
		return err
	}

	result, err := Run("Registering...", func() (*AuthResult, error) {
		return client.Register(username, password, authEmail)
	})
	if err != nil {
		return err
	}

	return saveSession(cfg, result)
}

func promptCredentials() (*Config, string, string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, "", "", err
	}
	if authServer != "" {
		cfg.Server = authServer
	}

	username := authUsername
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, "", "", err
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return nil, "", "", errors.New("username is required")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read password: %w", err)
	}
	password := string(raw)
	if password == "" {
		return nil, "", "", errors.New("password is required")
	}

	return cfg, username, password, nil
}

func saveSession(cfg *Config, result *AuthResult) error {
	cfg.Token = result.Token
	cfg.Username = result.Username
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", result.Username, cfg.Server)
	return nil
}
