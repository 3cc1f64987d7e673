package app

import (
	"github.com/rs/zerolog"

	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/taskflow/internal/config"
)

// MustReadConfig reads the configuration once at process start. The
// returned struct is handed to every component explicitly.
func MustReadConfig(logger zerolog.Logger) *config.Config {
	cfg, err := config.Read()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}
	logger.Info().
		Str("env", cfg.Env).
		Msg("read env")

	return cfg
}
