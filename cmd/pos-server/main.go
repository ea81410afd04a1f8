package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/softlink/pharmacy-pos/internal/checkout"
	"github.com/softlink/pharmacy-pos/internal/config"
	"github.com/softlink/pharmacy-pos/internal/domain/catalog"
	"github.com/softlink/pharmacy-pos/internal/domain/inventory"
	"github.com/softlink/pharmacy-pos/internal/domain/order"
	"github.com/softlink/pharmacy-pos/internal/domain/patient"
	"github.com/softlink/pharmacy-pos/internal/domain/prescriber"
	"github.com/softlink/pharmacy-pos/internal/domain/prescription"
	"github.com/softlink/pharmacy-pos/internal/domain/register"
	"github.com/softlink/pharmacy-pos/internal/domain/staff"
	"github.com/softlink/pharmacy-pos/internal/platform/auth"
	"github.com/softlink/pharmacy-pos/internal/platform/db"
	"github.com/softlink/pharmacy-pos/internal/platform/draft"
	"github.com/softlink/pharmacy-pos/internal/platform/events"
	"github.com/softlink/pharmacy-pos/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pos-server",
		Short: "Pharmacy point-of-sale API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the POS API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			pool, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(context.Background())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			pool, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func connect() (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	rdb := draft.New(cfg.RedisAddr)
	defer rdb.Close()
	drafts := draft.NewStore(rdb)

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 256)
		producer.Start(ctx)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("event producer started")
	} else {
		logger.Warn().Msg("KAFKA_BROKERS not set, events disabled")
	}

	// Repositories and services
	cs := cfg.Checkout()
	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	prescriberSvc := prescriber.NewService(prescriber.NewRepoPG(pool))
	catalogSvc := catalog.NewService(catalog.NewRepoPG(pool))
	inventorySvc := inventory.NewService(inventory.NewRepoPG(pool), cfg.WarnNearExpiry, cfg.NearExpiryDays)
	prescriptionSvc := prescription.NewService(prescription.NewRepoPG(pool))
	staffSvc := staff.NewService(staff.NewUserRepoPG(pool), staff.NewSessionRepoPG(pool),
		cs.StaffRolesEnabled, cs.RequirePharmacistApproval)
	registerSvc := register.NewService(register.NewRepoPG(pool))

	orderDeps := order.Deps{
		Orders:        order.NewRepoPG(pool),
		Register:      registerSvc,
		Prescriptions: prescriptionSvc,
		Staff:         staffSvc,
		Patients:      patientSvc,
		Prescribers:   prescriberSvc,
		Stock:         inventorySvc,
		Drafts:        drafts,
		RunTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		Log: logger,
	}
	if producer != nil {
		orderDeps.Publisher = producer
	}
	orderSvc := order.NewService(orderDeps)

	checkoutHandler := checkout.NewHandler(
		checkout.NewStaffDirectory(staffSvc),
		checkout.NewPatientDirectory(patientSvc),
		drafts,
		checkout.Settings{
			RequirePrescriptionValidation: cs.RequirePrescriptionValidation,
			BlockExpiredProducts:          cs.BlockExpiredProducts,
		},
		func(ctx context.Context, o *checkout.Order) error {
			_, err := orderSvc.Finalize(ctx, o)
			return err
		},
	)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	e.GET("/health", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	prescriber.NewHandler(prescriberSvc).RegisterRoutes(apiV1)
	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)
	inventory.NewHandler(inventorySvc).RegisterRoutes(apiV1)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(apiV1)
	staff.NewHandler(staffSvc).RegisterRoutes(apiV1)
	register.NewHandler(registerSvc).RegisterRoutes(apiV1)
	order.NewHandler(orderSvc).RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
	logger.Info().Msg("server stopped")
	return nil
}
