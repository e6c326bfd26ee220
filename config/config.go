package config

import (
	"time"

	"github.com/pitabwire/frame/config"
)

// AssistantConfig holds configuration for the assistant service.
type AssistantConfig struct {
	config.ConfigurationDefault

	// Calendar backend
	CalendarProvider string `envDefault:"outlook"                                  env:"CALENDAR_PROVIDER"`
	DefaultTimezone  string `envDefault:"America/Mexico_City"                      env:"DEFAULT_TIMEZONE"`
	GraphBaseURL     string `envDefault:"https://graph.microsoft.com/v1.0/me/calendar" env:"GRAPH_BASE_URL"`

	// OAuth clients
	MSClientID         string `envDefault:"" env:"MS_CLIENT_ID"`
	MSClientSecret     string `envDefault:"" env:"MS_CLIENT_SECRET"`
	GoogleClientID     string `envDefault:"" env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envDefault:"" env:"GOOGLE_CLIENT_SECRET"`
	OAuthRedirectURL   string `envDefault:"" env:"OAUTH_REDIRECT_URL"`

	// Token persistence
	TokensFile string `envDefault:"./data/tokens.json" env:"TOKENS_FILE"`

	// Dialog
	PromptCatalogPath string `envDefault:"" env:"PROMPT_CATALOG_PATH"`
	SessionTTLMin     int    `envDefault:"30" env:"SESSION_TTL_MIN"`

	// Front-ends
	TelegramToken string `envDefault:"" env:"TELEGRAM_TOKEN"`

	// Audit
	TurnAuditEnabled bool `envDefault:"false" env:"TURN_AUDIT_ENABLED"`
}

// SessionTTL returns the configured session idle timeout.
func (c *AssistantConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}
