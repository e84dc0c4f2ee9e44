package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/pingpanel/pingpanel/server/internal/config"
	"github.com/pingpanel/pingpanel/server/internal/store"
)

func writeTestConfig(t *testing.T) (path, dsn string) {
	t.Helper()
	dir := t.TempDir()
	dsn = filepath.Join(dir, "pingpanel.db")
	cfg := map[string]any{
		"server":  map[string]any{"addr": "127.0.0.1:0"},
		"auth":    map[string]any{"provider": "builtin", "jwt_secret": "test-secret-at-least-32-chars-long"},
		"storage": map[string]any{"driver": "sqlite", "dsn": dsn},
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	path = filepath.Join(dir, "server.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path, dsn
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	out := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "pingpanel-server test" {
		t.Errorf("version output = %q", out)
	}
}

func TestInitDefaults(t *testing.T) {
	t.Setenv(config.EnvStorageDriver, "")
	t.Setenv(config.EnvAuthProvider, "")
	output := filepath.Join(t.TempDir(), "generated.json")

	if _, err := execute(t, "", "init", "--defaults", "-o", output); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := config.Load(output); err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
}

func TestUserLifecycle(t *testing.T) {
	cfgPath, dsn := writeTestConfig(t)

	out, err := execute(t, "password123\n", "-c", cfgPath, "user", "create", "alice", "--plan", "pro")
	if err != nil {
		t.Fatalf("user create: %v", err)
	}
	if !strings.Contains(out, "Created alice (user, PRO)") {
		t.Errorf("create output = %q", out)
	}

	if _, err := execute(t, "password123\n", "-c", cfgPath, "user", "create", "alice"); err == nil {
		t.Error("expected duplicate user error")
	}

	out, err = execute(t, "", "-c", cfgPath, "user", "set-plan", "alice", "free")
	if err != nil {
		t.Fatalf("set-plan: %v", err)
	}
	if !strings.Contains(out, "PRO -> FREE") {
		t.Errorf("set-plan output = %q", out)
	}

	st, err := store.New(config.StorageConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = st.Close() }()
	user, err := st.GetUser(context.Background(), "alice")
	if err != nil || user == nil {
		t.Fatalf("GetUser: %v, %v", user, err)
	}
	if user.Plan != "FREE" {
		t.Errorf("plan = %q, want FREE", user.Plan)
	}

	out, err = execute(t, "", "-c", cfgPath, "user", "audit", "alice")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !strings.HasPrefix(out, "TIME") {
		t.Errorf("audit output = %q", out)
	}
}

func TestUserCommandErrors(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"invalid plan", "password123\n", []string{"user", "create", "bob", "--plan", "gold"}},
		{"short password", "pw\n", []string{"user", "create", "bob"}},
		{"set-plan unknown user", "", []string{"user", "set-plan", "nobody", "pro"}},
		{"set-plan invalid plan", "", []string{"user", "set-plan", "bob", "enterprise"}},
		{"audit unknown user", "", []string{"user", "audit", "nobody"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-c", cfgPath}, tt.args...)
			if _, err := execute(t, tt.stdin, args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunMissingConfig(t *testing.T) {
	if _, err := execute(t, "", "run", filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestResolveConfigPath(t *testing.T) {
	newCmd := func() *cobra.Command {
		root := &cobra.Command{Use: "root"}
		root.PersistentFlags().StringP("config", "c", "", "")
		child := &cobra.Command{Use: "child"}
		root.AddCommand(child)
		return child
	}

	cmd := newCmd()
	if got := resolveConfigPath(cmd, nil, "default.json"); got != "default.json" {
		t.Errorf("default: got %q", got)
	}
	if got := resolveConfigPath(cmd, []string{"arg.json"}, "default.json"); got != "arg.json" {
		t.Errorf("positional: got %q", got)
	}

	_ = cmd.Root().PersistentFlags().Set("config", "flag.json")
	if got := resolveConfigPath(cmd, nil, "default.json"); got != "flag.json" {
		t.Errorf("flag: got %q", got)
	}
	if got := resolveConfigPath(cmd, []string{"arg.json"}, "default.json"); got != "arg.json" {
		t.Errorf("positional wins over flag: got %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newLogger(config.LoggingConfig{Level: "warn", Format: "text"}, buf)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("text logger output = %q", buf.String())
	}

	buf.Reset()
	logger = newLogger(config.LoggingConfig{}, buf)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("default level should be info")
	}
	logger.Info("hello")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("default format should be json: %v", err)
	}
}
