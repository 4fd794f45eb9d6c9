package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	JWTSecret         string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	AccessTokenTTLMin int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"720"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	LockTimeoutMS     int   `env:"LOCK_TIMEOUT_MS" envDefault:"3000"`
	DefaultTeamBudget int64 `env:"DEFAULT_TEAM_BUDGET" envDefault:"10000000"`

	AuditPushEnabled bool   `env:"AUDIT_PUSH_ENABLED" envDefault:"false"`
	AMQPURL          string `env:"AMQP_URL"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
