// Command createadmin bootstraps an operator account. Admin registration over
// HTTP needs an existing admin session, so the first one is created here.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"custodial-wallet/config"
	"custodial-wallet/internal/app"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/logger"
)

func main() {
	username := flag.String("username", "", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", os.Getenv("CW_ADMIN_PASSWORD"), "admin password (default $CW_ADMIN_PASSWORD)")
	role := flag.String("role", string(domain.AdminRoleAdmin), "admin or super_admin")
	flag.Parse()

	if *username == "" || *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !domain.AdminRole(*role).IsValid() {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(os.Getenv("CW_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	// The command never serves traffic.
	cfg.Storage.RedisOptional = true

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	ctx := context.Background()

	application, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	admin, err := application.Identity.RegisterAdmin(ctx, ports.RegisterAdminRequest{
		Username: *username,
		Email:    *email,
		Password: *password,
		Role:     domain.AdminRole(*role),
	})
	if err != nil {
		log.Error().Err(err).Str("username", *username).Msg("Failed to create admin")
		application.Close()
		os.Exit(1)
	}

	log.Info().
		Str("admin_id", admin.ID.String()).
		Str("username", admin.Username).
		Str("role", string(admin.Role)).
		Msg("Admin created")
}
