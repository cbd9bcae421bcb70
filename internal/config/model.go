// internal/config/model.go
//
// Typed configuration model for DocForge.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `DOCFORGE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so the rest of the app
// never sees Vault URIs—only plain strings.
//
// Validation happens immediately after secret resolution; the app fails
// fast if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.  BaseURL is the public origin used in
// redirects and checkout return links.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	BaseURL    string `koanf:"base_url"    validate:"required,url"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host,
// port, or flags without touching Vault.  The *secret* portion
// (`Password`) is stored in Vault and injected at runtime, keeping
// credentials out of flat files and git history.  The DSN carries one
// `%s` verb where the password lands.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

//
// Identity section
//

// Identity points at the GoTrue-compatible auth service.  ServiceKey is
// privileged (admin user API) and belongs in Vault; AnonKey is public.
type Identity struct {
	BaseURL    string `koanf:"base_url" validate:"required,url"`
	AnonKey    string `koanf:"anon_key"`
	ServiceKey string `koanf:"service_key"`
}

//
// Admin section
//

// Admin lists the always-admin account emails.  Membership here is
// config-sourced and cannot be revoked at runtime.
type Admin struct {
	Emails []string `koanf:"emails" validate:"dive,email"`
}

//
// AI section
//

// AI holds provider keys and model names for the generation chain.
// Providers with an empty key are skipped, in chain order.
type AI struct {
	GroqKey         string `koanf:"groq_key"`
	GroqModel       string `koanf:"groq_model"`
	DeepSeekKey     string `koanf:"deepseek_key"`
	DeepSeekModel   string `koanf:"deepseek_model"`
	OpenRouterKey   string `koanf:"openrouter_key"`
	OpenRouterModel string `koanf:"openrouter_model"`
}

//
// Billing section
//

// Billing configures the Lemon Squeezy store integration.
type Billing struct {
	APIKey        string `koanf:"api_key"`
	StoreID       string `koanf:"store_id"`
	WebhookSecret string `koanf:"webhook_secret"`
}

//
// Geo section
//

// Geo locates the optional MaxMind database used for request
// enrichment.  An empty path disables geo lookups.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or DOCFORGE_ROOT override) so later code
// can build absolute file paths, e.g. conf/locales.
type Paths struct {
	Root string // DOCFORGE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Identity Identity `koanf:"identity"`
	Admin    Admin    `koanf:"admin"`
	AI       AI       `koanf:"ai"`
	Billing  Billing  `koanf:"billing"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
