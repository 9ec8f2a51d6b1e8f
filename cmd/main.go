package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/app"
	httpH "github.com/rishiwork16-sys/skilledUp-Website/internal/http/handlers"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "task-service",
		Short:         "SkilledUp task scheduling and submission service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), jobsCmd())
	return root
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the job_run worker and the periodic jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			a, err := app.New(ctx, log)
			if err != nil {
				log.Sync()
				return fmt.Errorf("init app: %w", err)
			}
			defer a.Close()

			a.Start(ctx)
			if err := a.Run(ctx); err != nil {
				return fmt.Errorf("server: %w", err)
			}
			log.Info("Shutting down")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			cfg, err := app.LoadConfig(log)
			if err != nil {
				return err
			}
			db, err := app.OpenDatabase(log, cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			log.Info("Migrations applied", "driver", cfg.DBDriver)
			return nil
		},
	}
}

func jobsCmd() *cobra.Command {
	jobs := &cobra.Command{
		Use:   "jobs",
		Short: "Periodic job commands",
	}
	jobs.AddCommand(&cobra.Command{
		Use:       "run <unlock|deadline|reminder>",
		Short:     "Run one periodic job once under its lease",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"unlock", "deadline", "reminder"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			a, err := app.New(ctx, log)
			if err != nil {
				log.Sync()
				return fmt.Errorf("init app: %w", err)
			}
			defer a.Close()

			name := httpH.RoutineName(args[0])
			ran, summary, err := a.Services.Scheduler.Trigger(ctx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out := map[string]any{"job": name, "ran": ran, "summary": summary}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	})
	return jobs
}
