package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/hellomail/internal/config"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// consumesInProcess: la cola en memoria sólo existe en este proceso, así que siempre se consume acá.
func (a *App) consumesInProcess() bool {
	return a.Config.Queue.Kind != "amqp" || a.Config.Delivery.Consumer
}

// Serve corre el servidor HTTP y, según config, el consumer y el scheduler.
// Retorna cuando ctx se cancela (shutdown ordenado) o alguno falla.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.Config
	log := logger.L().With(logger.Component("app"))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Handler,
		ReadTimeout:       config.Dur(cfg.Server.ReadTimeout, 30*time.Second),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.Dur(cfg.Server.WriteTimeout, 60*time.Second),
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("http shutting down")
		return srv.Shutdown(sctx)
	})
	if a.consumesInProcess() {
		g.Go(func() error { return a.consume(gctx) })
	}
	if cfg.Scheduler.Enabled {
		g.Go(func() error { return ignoreCanceled(a.Scheduler.Run(gctx)) })
	}
	return g.Wait()
}

// Worker sólo consume la cola de despacho (`hellomail worker`).
func (a *App) Worker(ctx context.Context) error {
	return a.consume(ctx)
}

// RunScheduler corre el scheduler standalone. once => un solo tick.
func (a *App) RunScheduler(ctx context.Context, once bool) error {
	if !once {
		return ignoreCanceled(a.Scheduler.Run(ctx))
	}
	res, err := a.Scheduler.Tick(ctx)
	if err != nil {
		return err
	}
	logger.L().Info("scheduler tick done",
		logger.Component("scheduler"), logger.Count(len(res.Claimed)), logger.Int("purged_tokens", res.Purged))
	return nil
}

func (a *App) consume(ctx context.Context) error {
	logger.L().Info("dispatch consumer started", logger.Component("delivery"), logger.String("queue", a.Config.Queue.Kind))
	return ignoreCanceled(a.Queue.Consume(ctx, a.Dispatcher.Handle))
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
