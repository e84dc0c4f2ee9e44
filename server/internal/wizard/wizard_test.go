package wizard

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pingpanel/pingpanel/pkg/cli"
	"github.com/pingpanel/pingpanel/server/internal/config"
)

func readConfig(t *testing.T, path string) config.Config {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	return cfg
}

func TestWizard_BuiltinSQLite(t *testing.T) {
	input := strings.Join([]string{
		":9090",        // listen address
		"1",            // auth: builtin
		"myadmin",      // admin username
		"secretpass",   // admin password
		"pro",          // admin plan
		"1",            // storage: sqlite
		"./data/pp.db", // sqlite path
		"5",            // free quota
		"",             // pro quota (default)
		"",             // pricing url (default)
		"y",            // metrics
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	p := &cli.Prompter{In: strings.NewReader(input), Out: out}
	outputPath := filepath.Join(t.TempDir(), "server.json")

	if err := New(p).Run(outputPath); err != nil {
		t.Fatalf("wizard.Run() error: %v", err)
	}
	cfg := readConfig(t, outputPath)

	if cfg.Server.Addr != ":9090" {
		t.Errorf("server.addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Auth.Provider != "builtin" {
		t.Errorf("auth.provider = %q, want builtin", cfg.Auth.Provider)
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		t.Errorf("auth.jwt_secret length = %d, want >= 32", len(cfg.Auth.JWTSecret))
	}
	if cfg.Auth.InitialAdmin == nil {
		t.Fatal("auth.initial_admin is nil")
	}
	if cfg.Auth.InitialAdmin.Username != "myadmin" || cfg.Auth.InitialAdmin.Password != "secretpass" {
		t.Errorf("admin = %+v", cfg.Auth.InitialAdmin)
	}
	if cfg.Auth.InitialAdmin.Plan != "PRO" {
		t.Errorf("admin plan = %q, want PRO", cfg.Auth.InitialAdmin.Plan)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "./data/pp.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Quota.Free.MaxEventCategories != 5 {
		t.Errorf("free quota = %d, want 5", cfg.Quota.Free.MaxEventCategories)
	}
	if cfg.Quota.Pro.MaxEventCategories != 10 {
		t.Errorf("pro quota = %d, want 10", cfg.Quota.Pro.MaxEventCategories)
	}
	if cfg.Billing.PricingURL == "" {
		t.Error("billing.pricing_url is empty")
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics.enabled = false, want true")
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
	if !strings.Contains(out.String(), "pingpanel-server run") {
		t.Error("output missing next steps")
	}
}

func TestWizard_ClerkPostgres(t *testing.T) {
	input := strings.Join([]string{
		"",                                 // listen address (default)
		"2",                                // auth: clerk
		"http://insecure",                  // rejected issuer
		"https://foo.clerk.accounts.dev",   // issuer
		"2",                                // storage: postgres
		"postgres://u:p@db:5432/pingpanel", // dsn
		"abc",                              // rejected quota
		"",                                 // free quota (default)
		"25",                               // pro quota
		"https://example.com/pricing",      // pricing url
		"",                                 // metrics (default no)
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	p := &cli.Prompter{In: strings.NewReader(input), Out: out}
	outputPath := filepath.Join(t.TempDir(), "server.json")

	if err := New(p).Run(outputPath); err != nil {
		t.Fatalf("wizard.Run() error: %v", err)
	}
	cfg := readConfig(t, outputPath)

	if cfg.Server.Addr != ":8080" {
		t.Errorf("server.addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Auth.Provider != "clerk" || cfg.Auth.ClerkIssuer != "https://foo.clerk.accounts.dev" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Auth.InitialAdmin != nil {
		t.Error("clerk config should not carry an initial admin")
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN != "postgres://u:p@db:5432/pingpanel" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Quota.Free.MaxEventCategories != 3 || cfg.Quota.Pro.MaxEventCategories != 25 {
		t.Errorf("quota = %+v", cfg.Quota)
	}
	if cfg.Billing.PricingURL != "https://example.com/pricing" {
		t.Errorf("pricing url = %q", cfg.Billing.PricingURL)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics.enabled = true, want false")
	}
	if !strings.Contains(out.String(), "https:// URL") {
		t.Error("expected issuer validation message")
	}
}

func TestWizard_InputEnds(t *testing.T) {
	// The clerk issuer has no usable default, so running out of input fails.
	p := &cli.Prompter{In: strings.NewReader(":8080\n2\n"), Out: &bytes.Buffer{}}
	err := New(p).Run(filepath.Join(t.TempDir(), "server.json"))
	if err != cli.ErrNoInput {
		t.Fatalf("Run: got %v, want ErrNoInput", err)
	}
}

func TestWizard_GeneratedConfigLoads(t *testing.T) {
	input := strings.Join([]string{":8081", "1", "admin", "a-long-password", "", "1", "pp.db", "", "", "", ""}, "\n") + "\n"
	p := &cli.Prompter{In: strings.NewReader(input), Out: &bytes.Buffer{}}
	outputPath := filepath.Join(t.TempDir(), "server.json")
	if err := New(p).Run(outputPath); err != nil {
		t.Fatalf("Run: %v", err)
	}

	cfg, err := config.Load(outputPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if cfg.Auth.InitialAdmin.Plan != "FREE" {
		t.Errorf("admin plan = %q, want FREE", cfg.Auth.InitialAdmin.Plan)
	}
}

func TestRunDefaults(t *testing.T) {
	t.Setenv(config.EnvAddr, ":7070")
	t.Setenv(config.EnvJWTSecret, "")
	t.Setenv(config.EnvAuthProvider, "")
	t.Setenv(EnvAdminUser, "root")
	t.Setenv(EnvAdminPassword, "")
	t.Setenv(EnvAdminPlan, "pro")
	t.Setenv(config.EnvStorageDriver, "")
	t.Setenv(config.EnvStorageDSN, "./x.db")

	out := &bytes.Buffer{}
	p := &cli.Prompter{In: strings.NewReader(""), Out: out}
	outputPath := filepath.Join(t.TempDir(), "server.json")

	if err := New(p).RunDefaults(outputPath); err != nil {
		t.Fatalf("RunDefaults: %v", err)
	}
	cfg := readConfig(t, outputPath)

	if cfg.Server.Addr != ":7070" {
		t.Errorf("server.addr = %q, want :7070", cfg.Server.Addr)
	}
	if cfg.Auth.InitialAdmin == nil || cfg.Auth.InitialAdmin.Username != "root" {
		t.Fatalf("initial admin = %+v", cfg.Auth.InitialAdmin)
	}
	if cfg.Auth.InitialAdmin.Plan != "PRO" {
		t.Errorf("admin plan = %q, want PRO", cfg.Auth.InitialAdmin.Plan)
	}
	if cfg.Auth.InitialAdmin.Password == "" {
		t.Error("admin password was not generated")
	}
	if !strings.Contains(out.String(), "Generated admin password") {
		t.Error("generated password should be printed")
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "./x.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Quota.Free.MaxEventCategories != 3 || cfg.Quota.Pro.MaxEventCategories != 10 {
		t.Errorf("quota = %+v", cfg.Quota)
	}
}

func TestRunDefaults_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without dsn", map[string]string{config.EnvStorageDriver: "postgres"}},
		{"unknown driver", map[string]string{config.EnvStorageDriver: "mysql"}},
		{"clerk without issuer", map[string]string{config.EnvAuthProvider: "clerk"}},
		{"unknown provider", map[string]string{config.EnvAuthProvider: "ldap"}},
		{"bad admin plan", map[string]string{EnvAdminPlan: "GOLD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{config.EnvStorageDriver, config.EnvStorageDSN, config.EnvAuthProvider, config.EnvClerkIssuer, EnvAdminPlan} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			p := &cli.Prompter{In: strings.NewReader(""), Out: &bytes.Buffer{}}
			if err := New(p).RunDefaults(filepath.Join(t.TempDir(), "server.json")); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
