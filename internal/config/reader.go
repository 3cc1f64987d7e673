package config

import "github.com/ilyakaznacheev/cleanenv"

// Read loads the configuration from environment variables.
// The resulting struct is passed explicitly to every component
// that needs it; there is no global config lookup.
func Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
