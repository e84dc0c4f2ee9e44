package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pingpanel/pingpanel/client/internal/apiclient"
)

const (
	envHome   = "PINGPANEL_HOME"
	envServer = "PINGPANEL_SERVER"
	envToken  = "PINGPANEL_TOKEN"

	defaultServer = "http://localhost:8080"
)

// credentials is what `pingpanel login` persists between invocations.
type credentials struct {
	Server   string `json:"server"`
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
}

// homeDir returns the client state directory (~/.pingpanel/).
func homeDir() string {
	if dir := os.Getenv(envHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pingpanel"
	}
	return filepath.Join(home, ".pingpanel")
}

func credentialsPath() string {
	return filepath.Join(homeDir(), "credentials.json")
}

func loadCredentials() (credentials, error) {
	var c credentials
	data, err := os.ReadFile(credentialsPath())
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("read credentials: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse credentials: %w", err)
	}
	return c, nil
}

func saveCredentials(c credentials) error {
	if err := os.MkdirAll(homeDir(), 0700); err != nil {
		return fmt.Errorf("create client dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(credentialsPath(), data, 0600)
}

// resolve picks the flag value, then the env var, then the saved value.
func resolve(cmd *cobra.Command, flag, env, saved string) string {
	if f := cmd.Flag(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return saved
}

// newClient builds an API client from flags, environment and saved credentials.
func newClient(cmd *cobra.Command) (*apiclient.Client, error) {
	creds, err := loadCredentials()
	if err != nil {
		return nil, err
	}
	token := resolve(cmd, "token", envToken, creds.Token)
	return apiclient.New(serverURL(cmd, creds), token, nil), nil
}

func serverURL(cmd *cobra.Command, creds credentials) string {
	if server := resolve(cmd, "server", envServer, creds.Server); server != "" {
		return server
	}
	return defaultServer
}
