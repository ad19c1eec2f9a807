package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/procurement-api/internal/config"
	"github.com/jwalitptl/procurement-api/internal/email"
	"github.com/jwalitptl/procurement-api/internal/repository/postgres"
	"github.com/jwalitptl/procurement-api/internal/service/alert"
	"github.com/jwalitptl/procurement-api/internal/worker"
	"github.com/jwalitptl/procurement-api/pkg/logger"
	"github.com/jwalitptl/procurement-api/pkg/metrics"
)

var configPath string

// deps is everything a deadline check needs
type deps struct {
	cfg       *config.Config
	db        *sqlx.DB
	logger    *logger.Logger
	registry  *prometheus.Registry
	scheduler *worker.DeadlineScheduler
}

func main() {
	root := &cobra.Command{
		Use:           "worker",
		Short:         "Background jobs for the procurement tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yml")

	root.AddCommand(serveCmd(), checkDeadlinesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the deadline check on the configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			defer d.db.Close()

			srv := healthServer(d)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					d.logger.Error(err, "Health check server failed")
				}
			}()

			d.scheduler.Start()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan
			d.logger.Info("Shutting down...")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			d.scheduler.Stop(ctx)
			return srv.Shutdown(ctx)
		},
	}
}

func checkDeadlinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-deadlines",
		Short: "Run one deadline check now and print the counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			defer d.db.Close()

			result, err := d.scheduler.RunOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("deadline check failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "approaching alerts created: %d\noverdue alerts created: %d\nfailed: %d\n",
				result.ApproachingAlertsCreated, result.OverdueAlertsCreated, result.Failed)
			return nil
		},
	}
}

func setup() (*deps, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Log.Format == "json",
	})

	loc, err := cfg.Alerts.Location()
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New("procurement")
	if err := m.Register(registry); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	base := postgres.NewBaseRepository(db)
	mailer := email.NewAlertMailer(email.NewSMTPSender(cfg.Mail), log, m)
	svc := alert.NewService(postgres.NewItemRepository(base), postgres.NewAlertRepository(base), mailer, log, m, alert.Config{
		Lookahead: cfg.Alerts.Lookahead,
		Location:  loc,
	})

	scheduler, err := worker.NewDeadlineScheduler(svc, worker.DeadlineSchedulerConfig{
		Schedule: cfg.Alerts.Schedule,
		Location: loc,
	}, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &deps{cfg: cfg, db: db, logger: log, registry: registry, scheduler: scheduler}, nil
}

func healthServer(d *deps) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := d.db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", d.cfg.Worker.HealthPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
