package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	SettlementExecuteURL  string `env:"SETTLEMENT_EXECUTE_URL,required,notEmpty"`
	ServiceAPIKey         string `env:"SERVICE_API_KEY"`
	SettlementTimeoutSecs int    `env:"SETTLEMENT_TIMEOUT_SECONDS" envDefault:"10"`

	// WebhookSecret enables inbound HMAC verification when set.
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	CRMProvider   string `env:"CRM_PROVIDER" envDefault:"hubspot"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
