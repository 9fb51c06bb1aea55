package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName         = "INTAKE_AGENT_NAME"
	EnvAgentProviderName = "INTAKE_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "INTAKE_AGENT_BASE_URL"
	EnvAgentToken        = "INTAKE_AGENT_TOKEN"
	EnvAgentDeployment   = "INTAKE_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "INTAKE_AGENT_API_VERSION"
	EnvAgentAuthType     = "INTAKE_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "INTAKE_AGENT_MODEL_NAME"
)

// AgentConfig describes the vision model used for field extraction.
// GoAgents converts it to the go-agents configuration consumed by the
// extraction gateway.
type AgentConfig struct {
	Name         string `toml:"name"`
	ProviderName string `toml:"provider_name"`
	BaseURL      string `toml:"base_url"`
	Model        string `toml:"model"`
	Token        string `toml:"token"`
	Deployment   string `toml:"deployment"`
	APIVersion   string `toml:"api_version"`
	AuthType     string `toml:"auth_type"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AgentConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	merge := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	merge(&c.Name, overlay.Name)
	merge(&c.ProviderName, overlay.ProviderName)
	merge(&c.BaseURL, overlay.BaseURL)
	merge(&c.Model, overlay.Model)
	merge(&c.Token, overlay.Token)
	merge(&c.Deployment, overlay.Deployment)
	merge(&c.APIVersion, overlay.APIVersion)
	merge(&c.AuthType, overlay.AuthType)
}

// GoAgents builds a go-agents AgentConfig starting from the library defaults.
// Provider options are only set when configured.
func (c *AgentConfig) GoAgents() gaconfig.AgentConfig {
	cfg := gaconfig.DefaultAgentConfig()
	cfg.Name = c.Name

	if cfg.Provider == nil {
		cfg.Provider = &gaconfig.ProviderConfig{}
	}
	cfg.Provider.Name = c.ProviderName
	cfg.Provider.BaseURL = c.BaseURL

	options := make(map[string]any)
	for k, v := range cfg.Provider.Options {
		options[k] = v
	}
	setOption := func(key, v string) {
		if v != "" {
			options[key] = v
		}
	}
	setOption("token", c.Token)
	setOption("deployment", c.Deployment)
	setOption("api_version", c.APIVersion)
	setOption("auth_type", c.AuthType)
	cfg.Provider.Options = options

	if cfg.Model == nil {
		cfg.Model = &gaconfig.ModelConfig{}
	}
	cfg.Model.Name = c.Model

	return cfg
}

func (c *AgentConfig) loadDefaults() {
	if c.Name == "" {
		c.Name = "intake-extractor"
	}
	if c.ProviderName == "" {
		c.ProviderName = "ollama"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "llama3.2-vision"
	}
}

func (c *AgentConfig) loadEnv() {
	set := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	set(EnvAgentName, &c.Name)
	set(EnvAgentProviderName, &c.ProviderName)
	set(EnvAgentBaseURL, &c.BaseURL)
	set(EnvAgentModelName, &c.Model)
	set(EnvAgentToken, &c.Token)
	set(EnvAgentDeployment, &c.Deployment)
	set(EnvAgentAPIVersion, &c.APIVersion)
	set(EnvAgentAuthType, &c.AuthType)
}

func (c *AgentConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.ProviderName == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	return nil
}
