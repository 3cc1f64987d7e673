package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

type Config struct {
	Env       string `env:"ENV" env-required:"true"`
	HTTP      HTTPConfig
	Postgres  PostgresConfig
	JWT       JWTConfig
	Password  PasswordConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	URL            string        `env:"DATABASE_URL" env-required:"true"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	SigningKey      string        `env:"JWT_SECRET_KEY" env-required:"true"`
	Algorithm       string        `env:"JWT_ALGORITHM" env-default:"HS256"`
	Issuer          string        `env:"JWT_ISSUER" env-default:"taskflow-api"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"168h"`
}

type PasswordConfig struct {
	BcryptCost int `env:"BCRYPT_COST" env-default:"12"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

type RateLimitConfig struct {
	RegisterLimit    int           `env:"REGISTER_RATE_LIMIT" env-default:"5"`
	RegisterInterval time.Duration `env:"REGISTER_RATE_INTERVAL" env-default:"1h"`
	LoginLimit       int           `env:"LOGIN_RATE_LIMIT" env-default:"5"`
	LoginInterval    time.Duration `env:"LOGIN_RATE_INTERVAL" env-default:"15m"`
}
