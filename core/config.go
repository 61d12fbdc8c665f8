package core

import (
	"fmt"
	"strings"
)

const defaultGatewayBaseURL = "https://api.wazzup24.com"

const defaultGatewayTimeoutSeconds = 10

type GatewayConfig struct {
	BaseURL        string `koanf:"base_url" mapstructure:"base_url"`
	APIKey         string `koanf:"api_key" mapstructure:"api_key"`
	ChannelID      string `koanf:"channel_id" mapstructure:"channel_id"`
	TimeoutSeconds int    `koanf:"timeout_seconds" mapstructure:"timeout_seconds"`
}

type WebhookConfig struct {
	// Secret, when set, requires inbound webhook requests to carry a
	// matching bearer token. Empty disables verification.
	Secret string `koanf:"secret" mapstructure:"secret"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	Gateway     GatewayConfig `koanf:"gateway" mapstructure:"gateway"`
	Webhook     WebhookConfig `koanf:"webhook" mapstructure:"webhook"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "crm-messaging",
		Gateway: GatewayConfig{
			BaseURL:        defaultGatewayBaseURL,
			TimeoutSeconds: defaultGatewayTimeoutSeconds,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Gateway.BaseURL) == "" {
		return fmt.Errorf("core: gateway.base_url is required")
	}
	if c.Gateway.TimeoutSeconds < 0 {
		return fmt.Errorf("core: gateway.timeout_seconds must not be negative")
	}
	return nil
}
