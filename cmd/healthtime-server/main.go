package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/healthtime/healthtime/internal/config"
	"github.com/healthtime/healthtime/internal/domain/consultation"
	"github.com/healthtime/healthtime/internal/domain/emergency"
	"github.com/healthtime/healthtime/internal/domain/reference"
	"github.com/healthtime/healthtime/internal/domain/stats"
	"github.com/healthtime/healthtime/internal/domain/surgery"
	"github.com/healthtime/healthtime/internal/ingest"
	"github.com/healthtime/healthtime/internal/platform/db"
	"github.com/healthtime/healthtime/internal/platform/httpx"
	"github.com/healthtime/healthtime/internal/platform/middleware"
)

func main() {
	root := &cobra.Command{
		Use:           "healthtime-server",
		Short:         "HealthTime waiting-times statistics API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			cancel()
			if err != nil {
				return err
			}
			defer pool.Close()

			// Repositories and services.
			refRepo := reference.NewPostgresRepository(pool)
			emergencyRepo := emergency.NewPostgresRepository(pool)
			consultationRepo := consultation.NewPostgresRepository(pool)
			surgeryRepo := surgery.NewPostgresRepository(pool)

			directory := reference.NewDirectory(refRepo)
			emergencySvc := emergency.NewService(emergencyRepo, directory)
			consultationSvc := consultation.NewService(consultationRepo, directory)
			surgerySvc := surgery.NewService(surgeryRepo, directory)
			statsSvc := stats.NewService(refRepo, emergencyRepo, consultationRepo, surgeryRepo)
			normalizer := ingest.NewNormalizer(refRepo, emergencyRepo, consultationRepo, surgeryRepo, logger)

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true
			e.HTTPErrorHandler = httpx.ErrorHandler(logger, cfg.IsDev())
			e.Use(middleware.Recovery(logger))
			e.Use(middleware.RequestID())
			e.Use(middleware.Logger(logger))
			e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))

			e.GET("/", indexHandler)
			e.GET("/health", db.HealthHandler(pool))

			api := e.Group("/api/v1")
			reference.NewHandler(directory).RegisterRoutes(api)
			emergency.NewHandler(emergencySvc).RegisterRoutes(api)
			consultation.NewHandler(consultationSvc).RegisterRoutes(api)
			surgery.NewHandler(surgerySvc).RegisterRoutes(api)
			stats.NewHandler(statsSvc).RegisterRoutes(api)
			ingest.NewHandler(normalizer).RegisterRoutes(api)

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
				errCh <- e.Start(":" + cfg.Port)
			}()

			stop, cancelStop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancelStop()
			select {
			case err := <-errCh:
				return err
			case <-stop.Done():
			}

			logger.Info().Msg("shutting down")
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelShutdown()
			return e.Shutdown(shutdownCtx)
		},
	}
}

func indexHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"name":    "HealthTime API",
		"endpoints": []string{
			"GET  /health",
			"GET  /api/v1/hospitals",
			"GET  /api/v1/hospitals/nearby",
			"GET  /api/v1/hospitals/:id",
			"GET  /api/v1/services",
			"GET  /api/v1/services/:id",
			"GET  /api/v1/emergencies",
			"GET  /api/v1/emergencies/average-wait",
			"GET  /api/v1/emergencies/triage-percentages",
			"GET  /api/v1/emergencies/pediatric-average-wait",
			"GET  /api/v1/emergencies/top-hospitals-pediatric",
			"GET  /api/v1/emergencies/time-evolution",
			"GET  /api/v1/emergencies/:id",
			"POST /api/v1/emergencies/submit",
			"GET  /api/v1/consultations",
			"GET  /api/v1/consultations/oncology-gap",
			"POST /api/v1/consultations/submit",
			"GET  /api/v1/surgeries",
			"GET  /api/v1/surgeries/specialty-average-wait",
			"POST /api/v1/surgeries/submit",
			"GET  /api/v1/stats/overview",
			"GET  /api/v1/stats/consultation-surgery-discrepancy",
		},
	})
}

func migrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "migrations", "migrations directory")

	withMigrator := func(run func(ctx context.Context, m *db.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			return run(ctx, db.NewMigrator(pool, dir))
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator) error {
			n, err := m.Up(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", n)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		}),
	})

	return cmd
}

// seedHospital and seedService mirror the registry extract files the seed
// command loads.
type seedHospital struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Typology    string   `json:"typology"`
	District    string   `json:"district"`
	Region      string   `json:"region"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type seedService struct {
	Key             int    `json:"key"`
	Name            string `json:"name"`
	Speciality      string `json:"speciality"`
	Priority        string `json:"priority"` // raw text, leading digit encodes the tier
	TypeCode        string `json:"typeCode"`
	TypeDescription string `json:"typeDescription"`
}

func seedCmd() *cobra.Command {
	var hospitalsPath, servicesPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load registry hospitals and services from JSON extracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hospitalsPath == "" && servicesPath == "" {
				return fmt.Errorf("nothing to seed: pass --hospitals and/or --services")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			directory := reference.NewDirectory(reference.NewPostgresRepository(pool))

			if hospitalsPath != "" {
				var rows []seedHospital
				if err := readJSONFile(hospitalsPath, &rows); err != nil {
					return err
				}
				hospitals := make([]*reference.Hospital, 0, len(rows))
				for _, r := range rows {
					hospitals = append(hospitals, &reference.Hospital{
						ID:          r.ID,
						Name:        r.Name,
						Description: r.Description,
						Typology:    r.Typology,
						District:    r.District,
						Region:      r.Region,
						Address:     r.Address,
						Phone:       r.Phone,
						Email:       r.Email,
						Latitude:    r.Latitude,
						Longitude:   r.Longitude,
					})
				}
				n, err := directory.LoadHospitals(ctx, hospitals)
				if err != nil {
					return err
				}
				logger.Info().Int("count", n).Str("file", hospitalsPath).Msg("hospitals seeded")
			}

			if servicesPath != "" {
				var rows []seedService
				if err := readJSONFile(servicesPath, &rows); err != nil {
					return err
				}
				services := make([]*reference.Service, 0, len(rows))
				for _, r := range rows {
					services = append(services, &reference.Service{
						Key:                 r.Key,
						Name:                r.Name,
						Speciality:          r.Speciality,
						PriorityCode:        reference.PriorityCodeFromRaw(r.Priority),
						PriorityDescription: r.Priority,
						TypeCode:            r.TypeCode,
						TypeDescription:     r.TypeDescription,
					})
				}
				n, err := directory.LoadServices(ctx, services)
				if err != nil {
					return err
				}
				logger.Info().Int("count", n).Str("file", servicesPath).Msg("services seeded")
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&hospitalsPath, "hospitals", "", "path to hospitals JSON extract")
	cmd.Flags().StringVar(&servicesPath, "services", "", "path to services JSON extract")
	return cmd
}

func readJSONFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
