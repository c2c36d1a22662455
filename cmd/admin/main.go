// Command admin manages administrator accounts directly against the database.
//
// Usage:
//
//	admin create         --email=ops@example.com --password=...
//	admin reset-password --email=ops@example.com --password=...
//	admin deactivate     --email=ops@example.com
//	admin activate       --email=ops@example.com
//
// The password may also come from ADMIN_PASSWORD.  Database settings are the
// same environment variables the server reads.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iliyamo/opportunity-hub/internal/config"
	"github.com/iliyamo/opportunity-hub/internal/database"
	"github.com/iliyamo/opportunity-hub/internal/logger"
	"github.com/iliyamo/opportunity-hub/internal/repository"
	"github.com/iliyamo/opportunity-hub/internal/service"
	"github.com/iliyamo/opportunity-hub/internal/utils"
)

const usage = "Usage: admin <create|reset-password|deactivate|activate> --email=EMAIL [--password=PASSWORD]"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	email := fs.String("email", "", "admin email address")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "new password (create, reset-password)")
	_ = fs.Parse(os.Args[2:])

	if *email == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL(), cfg.AdminTTL())
	policy := utils.PasswordPolicy{MinLength: cfg.MinPasswordLength, RequireComplexity: cfg.RequirePasswordComplexity}
	admins := service.NewAdminService(repository.NewAdminRepo(db), tokens, policy, cfg.BcryptCost, logger.Nop())

	if err := run(ctx, admins, cmd, *email, *password); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, admins *service.AdminService, cmd, email, password string) error {
	switch cmd {
	case "create":
		if password == "" {
			return errors.New("--password or ADMIN_PASSWORD is required")
		}
		a, err := admins.Create(ctx, email, password)
		if err != nil {
			return err
		}
		fmt.Printf("Admin %q created (id %d).\n", a.Email, a.ID)
	case "reset-password":
		if password == "" {
			return errors.New("--password or ADMIN_PASSWORD is required")
		}
		if err := admins.ResetPassword(ctx, email, password); err != nil {
			return err
		}
		fmt.Printf("Password for %q reset.\n", email)
	case "deactivate", "activate":
		active := cmd == "activate"
		if err := admins.SetActive(ctx, email, active); err != nil {
			return err
		}
		fmt.Printf("Admin %q %sd.\n", email, cmd)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}
