// Command service es el entrypoint del contenedor: sólo la API HTTP.
// Para worker/scheduler/migrate usar cmd/hellomail.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/hellomail/internal/app"
	"github.com/dropDatabas3/hellomail/internal/config"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

var version = "dev"

func main() {
	var (
		flagConfigPath  = flag.String("config", "", "Ruta al config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile     = flag.String("env-file", ".env", "Archivo .env a cargar si existe")
		flagPrintConfig = flag.Bool("print-config", false, "Imprime la config efectiva (secretos ocultos) y sale")
	)
	flag.Parse()

	cfg, err := app.LoadConfig(*flagConfigPath, *flagEnvFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *flagPrintConfig {
		printConfig(cfg)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config invalida:", err)
		os.Exit(1)
	}

	app.InitLogger(cfg, version)
	code := run(cfg)
	_ = logger.Sync()
	os.Exit(code)
}

func run(cfg *config.Config) int {
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Error("bootstrap failed", logger.Err(err))
		return 1
	}
	defer a.Close()

	log.Info("starting hellomail", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
	if err := a.Serve(ctx); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		return 1
	}
	log.Info("bye")
	return 0
}

func printConfig(cfg *config.Config) {
	c := *cfg
	mask := func(s *string) {
		if *s != "" {
			*s = "***"
		}
	}
	mask(&c.Storage.DSN)
	mask(&c.Auth.SessionSecret)
	mask(&c.Security.SecretBoxMasterKey)
	mask(&c.SMTP.Password)
	mask(&c.Cache.Redis.Password)
	mask(&c.Queue.AMQP.URL)
	b, _ := yaml.Marshal(&c)
	os.Stdout.Write(b)
}
