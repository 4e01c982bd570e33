package config

type SecurityConfig interface {
	GetAPIKey() string
	GetAPIKeyHash() string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetAPIKey returns the shared secret compared against request tokens.
func (Security) GetAPIKey() string {
	return GetEnv("API_KEY", "your-secret-key")
}

// GetAPIKeyHash returns an optional bcrypt hash of the shared secret.
// When set it takes precedence over API_KEY so the plaintext never has
// to live in the environment.
func (Security) GetAPIKeyHash() string {
	return GetEnv("API_KEY_HASH", "")
}
