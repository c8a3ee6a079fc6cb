// Package logger expone un logger zap singleton con scoping por contexto.
//
// Inicialización (una vez, en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "hellomail"})
//	defer logger.Sync()
//
// En controllers/services, siempre a partir del contexto del request:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ImportCSV"))
//	log.Info("contacts imported", logger.WebsiteID(id), logger.Count(n))
//
// WithLogging (middlewares) inyecta un logger con request_id, método, path, usuario y
// website; fuera de un request From cae al singleton.
package logger
