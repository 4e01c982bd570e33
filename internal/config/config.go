package config

type Config interface {
	EnvConfig
	SecurityConfig
	CorsConfig
	PairingConfig
	WebhookConfig
	ReconnectConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Pairing
	Webhook
	Reconnect
}

func New() Config {
	return mainConfig{}
}
