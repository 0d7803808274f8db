package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-trace-service/config"
	"github.com/fekuna/omnipos-trace-service/internal/database"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/seed"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(cfg).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	in := seed.AdminInput{
		Email:       cfg.Seed.AdminEmail,
		Name:        cfg.Seed.AdminName,
		Password:    cfg.Seed.AdminPassword,
		AccessLevel: seed.DefaultAccessLevel,
	}

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Create the first administrator account",
		Long:          `Creates a user with the admin role and its admin profile in one transaction. Values default to the SEED_ADMIN_* environment variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, in)
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", in.Email, "admin email")
	cmd.Flags().StringVar(&in.Name, "name", in.Name, "admin display name")
	cmd.Flags().StringVar(&in.Password, "password", in.Password, "admin password (prefer SEED_ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&in.AccessLevel, "access-level", in.AccessLevel, "admin access level")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, in seed.AdminInput) error {
	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment: cfg.IsDevelopment(),
		Encoding:      cfg.Logger.Encoding,
		Level:         cfg.Logger.Level,
	})
	defer appLogger.Sync()

	db, err := database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		appLogger.Error("Could not connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	user, err := seed.SeedAdmin(ctx, db, in, time.Now())
	switch {
	case errors.Is(err, seed.ErrAlreadySeeded):
		appLogger.Info("Admin already exists, nothing to do", zap.String("email", in.Email))
		return nil
	case err != nil:
		appLogger.Error("Admin seeding failed", zap.Error(err))
		return fmt.Errorf("seed admin: %w", err)
	}

	appLogger.Info("Admin created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return nil
}
