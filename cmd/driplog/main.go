package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/clearbrook/driplog/internal/api"
	"github.com/clearbrook/driplog/internal/db"
	"github.com/clearbrook/driplog/internal/health"
	"github.com/clearbrook/driplog/internal/security"
	"github.com/clearbrook/driplog/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

type config struct {
	Port           string `envconfig:"PORT" default:"8080"`
	DBPath         string `envconfig:"DB_PATH" default:"data/driplog.db"`
	SecretKey      string `envconfig:"SECRET_KEY"`
	AccessPassword string `envconfig:"ACCESS_PASSWORD"`
	Timezone       string `envconfig:"TZ" default:"UTC"`
	HealthVaultURL string `envconfig:"HEALTH_VAULT_URL"`
	CookieSecure   bool   `envconfig:"COOKIE_SECURE" default:"false"`
}

func main() {
	generateSecret := flag.Bool("generate-secret", false, "print a fresh SECRET_KEY value and exit")
	flag.Parse()
	if *generateSecret {
		secret, err := security.GenerateSecretKey()
		if err != nil {
			log.Fatalf("secret generation failed: %v", err)
		}
		fmt.Println(secret)
		return
	}

	_ = godotenv.Load()

	cfg := config{}
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("config init failed: %v", err)
	}
	if err := validateSecretKey(cfg.SecretKey); err != nil {
		log.Fatalf("config init failed: %v", err)
	}
	if strings.TrimSpace(cfg.AccessPassword) == "" {
		log.Fatal("config init failed: ACCESS_PASSWORD must be set")
	}

	location := mustLoadLocation(cfg.Timezone)
	time.Local = location

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AccessPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("password hash failed: %v", err)
	}

	store := db.NewStore(database)
	gateway := health.NewVaultGateway(cfg.HealthVaultURL)
	tracking := services.NewTrackingService(store, gateway, location)
	handler := api.NewHandler(tracking, gateway, location, cfg.SecretKey, passwordHash, cfg.CookieSecure)

	app := fiber.New(fiber.Config{
		AppName:               "Driplog",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(handler.LanguageMiddleware)
	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	vaultState := "disabled"
	if gateway.Available() {
		vaultState = cfg.HealthVaultURL
	}
	log.Printf("Driplog listening on http://0.0.0.0:%s (db: %s, tz: %s, vault: %s)",
		cfg.Port, filepath.Clean(cfg.DBPath), location.String(), vaultState)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func validateSecretKey(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return fmt.Errorf("SECRET_KEY must be set")
	}
	if trimmed == "change_me_in_production" {
		return fmt.Errorf("SECRET_KEY uses an insecure placeholder")
	}
	if len(trimmed) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters")
	}
	return nil
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}
