// cmd/web/main.go
//
// DocForge – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (server-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Connect Vault when VAULT_ADDR is set and install its resolver so
//     `vault:` references in conf/global.yaml resolve during Load().
//
//  4. Load and validate configuration.
//
//  5. Open the MySQL pool shared by the settings, profile, and document
//     repositories.
//
//  6. Build the identity client, admin roster, AI provider chain, and
//     billing integration.
//
//  7. Assemble the routing pipeline and the chi router, wrap them with
//     request enrichment, security headers, and optional HTTPS
//     enforcement, then serve until SIGINT/SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/docforge/docforge/internal/ai"
	"github.com/docforge/docforge/internal/billing"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/database"
	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/i18n"
	"github.com/docforge/docforge/internal/identity"
	"github.com/docforge/docforge/internal/logger"
	"github.com/docforge/docforge/internal/middleware"
	"github.com/docforge/docforge/internal/pipeline"
	"github.com/docforge/docforge/internal/profile"
	"github.com/docforge/docforge/internal/requestinfo"
	"github.com/docforge/docforge/internal/roster"
	"github.com/docforge/docforge/internal/server"
	"github.com/docforge/docforge/internal/settings"
	"github.com/docforge/docforge/internal/vault"
	"github.com/docforge/docforge/internal/web"
)

const serverEnvPath = "/usr/local/etc/docforge/global.env"

// loadEnv prefers the server-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Vault (optional) + configuration ───────────────────────────
	//
	if os.Getenv("VAULT_ADDR") != "" {
		vcli, err := vault.New(ctx, logOut.Infof)
		if err != nil {
			logOut.Fatalf("vault connect: %v", err)
		}
		config.SetSecretResolver(vcli.Resolver())
		logOut.Infow("vault online")
	}

	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Database pool ───────────────────────────────────────────────
	//
	db, err := database.Open(database.DSN(cfg.Database.DSN, cfg.Database.Password))
	if err != nil {
		logOut.Fatalf("connect database: %v", err)
	}
	defer db.Close()
	logOut.Infow("database online")

	settingsStore := settings.NewStore(db)
	profiles := profile.NewRepository(db)
	documents := document.NewRepository(db)

	//
	// ── 3.  Identity, roster, AI, billing ───────────────────────────────
	//
	idc := identity.New(cfg.Identity.BaseURL, cfg.Identity.AnonKey,
		identity.WithServiceKey(cfg.Identity.ServiceKey))
	admins := roster.New(cfg.Admin.Emails, idc)

	var providers []ai.Provider
	if cfg.AI.GroqKey != "" {
		providers = append(providers, ai.NewGroq(cfg.AI.GroqKey, modelOpt(cfg.AI.GroqModel)...))
	}
	if cfg.AI.DeepSeekKey != "" {
		providers = append(providers, ai.NewDeepSeek(cfg.AI.DeepSeekKey, modelOpt(cfg.AI.DeepSeekModel)...))
	}
	if cfg.AI.OpenRouterKey != "" {
		providers = append(providers,
			ai.NewOpenRouter(cfg.AI.OpenRouterKey, cfg.HTTP.BaseURL, modelOpt(cfg.AI.OpenRouterModel)...))
	}
	generator := ai.NewGenerator(providers...)
	logOut.Infow("generation chain ready", "providers", len(providers))

	var checkout web.CheckoutClient
	var webhook http.Handler
	if cfg.Billing.APIKey != "" {
		checkout = billing.NewCheckout(cfg.Billing.APIKey, cfg.Billing.StoreID)
	}
	if cfg.Billing.WebhookSecret != "" {
		webhook = billing.NewWebhook(cfg.Billing.WebhookSecret, profiles, logOut.Desugar())
	}

	//
	// ── 4.  Request enrichment extras ───────────────────────────────────
	//
	_ = requestinfo.InitGeo(cfg.Geo.DBPath)
	catalog := i18n.NewCatalog(rootDir + "/conf/locales")

	//
	// ── 5.  Pipeline + router ───────────────────────────────────────────
	//
	pipe := pipeline.New(idc, settingsStore, admins)

	router := web.New(web.Deps{
		Log:       logOut,
		BaseURL:   cfg.HTTP.BaseURL,
		Pipeline:  pipe.Middleware,
		Catalog:   catalog,
		Generator: generator,
		Profiles:  profiles,
		Documents: documents,
		Roster:    admins,
		Settings:  settingsStore,
		Checkout:  checkout,
		Webhook:   webhook,
		DB:        db,
	})

	handler := middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS,
		middleware.Security(requestinfo.Enrich(router)))

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, handler)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logOut.Fatalf("http server: %v", err)
		}
	case <-ctx.Done():
		logOut.Infow("shutting down")
		if err := server.Shutdown(srv, 30*time.Second); err != nil {
			logOut.Errorw("shutdown incomplete", "err", err)
		}
	}
}

// modelOpt wraps an optional model override for a provider constructor.
func modelOpt(model string) []ai.Option {
	if model == "" {
		return nil
	}
	return []ai.Option{ai.WithModel(model)}
}
