package main

import "github.com/adanyl0v/taskflow/internal/app"

func main() {
	logger := app.NewDefaultLogger()
	cfg := app.MustReadConfig(logger)
	logger = app.MustInitApplicationLogger(logger, cfg)

	pool := app.MustConnectPostgres(logger, cfg.Postgres)
	defer app.DisconnectPostgres(logger, pool)

	app.MustListenAndServeHTTP(logger, cfg, pool)
}
