// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file — `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `DOCFORGE_`, where `__` maps to “.”
     (e.g., `DOCFORGE_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
secret references are resolved, the result is validated, enriched with
the runtime root path, and cached in an `atomic.Pointer` for lock-free
reads.  `Reload()` simply calls `Load()` again and swaps the pointer.

Secret references
-----------------
Any string value of the form `vault:<path>#<key>` is replaced through
the resolver installed with `SetSecretResolver` before validation.  With
no resolver installed such values abort the load, which is the right
failure mode: a deployment that references Vault must have Vault.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, secret resolution,
    validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

// SecretResolver turns a `vault:` reference into its plain value.
type SecretResolver func(ref string) (string, error)

var resolveSecret atomic.Pointer[SecretResolver]

// SetSecretResolver installs the resolver used for `vault:` references.
// Call before Load(); safe to call again before Reload().
func SetSecretResolver(fn SecretResolver) {
	resolveSecret.Store(&fn)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves DOCFORGE_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to executable heuristic for
// production layout.
func rootDir() string {
	if r := os.Getenv("DOCFORGE_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: DOCFORGE_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("DOCFORGE_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(&cfg); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"base_url", cfg.HTTP.BaseURL,
		"force_https", cfg.HTTP.ForceHTTPS,
		"admin_emails", len(cfg.Admin.Emails),
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────── secret resolution ───────────────────────────────*/

// resolveSecrets rewrites every `vault:`-prefixed string field in place.
// Only the fields that may legitimately hold secrets are walked; adding a
// new secret-bearing field means adding it here.
func resolveSecrets(cfg *Config) error {
	fields := []*string{
		&cfg.Database.Password,
		&cfg.Identity.ServiceKey,
		&cfg.AI.GroqKey,
		&cfg.AI.DeepSeekKey,
		&cfg.AI.OpenRouterKey,
		&cfg.Billing.APIKey,
		&cfg.Billing.WebhookSecret,
	}
	for _, f := range fields {
		if !strings.HasPrefix(*f, "vault:") {
			continue
		}
		fnp := resolveSecret.Load()
		if fnp == nil {
			return fmt.Errorf("config: %q needs a secret resolver and none is installed", *f)
		}
		val, err := (*fnp)(strings.TrimPrefix(*f, "vault:"))
		if err != nil {
			return fmt.Errorf("config: resolve %q: %w", *f, err)
		}
		*f = val
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
