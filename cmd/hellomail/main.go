package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellomail/internal/app"
	"github.com/dropDatabas3/hellomail/internal/config"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
	"github.com/dropDatabas3/hellomail/internal/store/pg"
	migrations "github.com/dropDatabas3/hellomail/migrations/postgres"
)

// version se pisa en build: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		envFile string
		cfg     *config.Config
	)

	root := &cobra.Command{
		Use:           "hellomail",
		Short:         "API de email marketing: servidor HTTP, worker de envíos y scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.LoadConfig(cfgPath, envFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("config invalida: %w", err)
			}
			app.InitLogger(c, version)
			cfg = c
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Ruta al config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Archivo .env a cargar si existe")

	cfgFn := func() *config.Config { return cfg }
	root.AddCommand(
		newServeCmd(cfgFn),
		newWorkerCmd(cfgFn),
		newSchedulerCmd(cfgFn),
		newMigrateCmd(cfgFn),
		newKeysCmd(),
	)
	return root
}

// withApp arma el App con un ctx que se cancela con SIGINT/SIGTERM.
func withApp(cfg *config.Config, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newServeCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP (y el consumer/scheduler in-process según config)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			logger.L().Info("starting hellomail", logger.String("addr", c.Server.Addr), logger.String("env", c.App.Env))
			return withApp(c, func(ctx context.Context, a *app.App) error { return a.Serve(ctx) })
		},
	}
}

func newWorkerCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume la cola de envíos sin exponer HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfg(), func(ctx context.Context, a *app.App) error { return a.Worker(ctx) })
		},
	}
}

func newSchedulerCmd(cfg func() *config.Config) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Encola las campañas programadas vencidas",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfg(), func(ctx context.Context, a *app.App) error { return a.RunScheduler(ctx, once) })
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Una sola pasada y salir (cron)")
	return cmd
}

func newMigrateCmd(cfg func() *config.Config) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Aplica o revierte migraciones de Postgres",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if c.Storage.Driver != "postgres" {
				return errors.New("migrate requiere storage.driver=postgres")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			st, err := pg.New(ctx, c.Storage.DSN, pg.Options{MaxConns: 2})
			if err != nil {
				return err
			}
			defer st.Close()

			var n int
			switch args[0] {
			case "up":
				n, err = pg.MigrateUp(ctx, st.Pool(), migrations.FS, steps)
			case "down":
				if steps == 0 {
					steps = 1
				}
				n, err = pg.MigrateDown(ctx, st.Pool(), migrations.FS, steps)
			}
			if err != nil {
				return err
			}
			fmt.Printf("migrate %s: %d archivo(s)\n", args[0], n)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "Cantidad de migraciones (up: 0 = todas, down: default 1)")
	return cmd
}
