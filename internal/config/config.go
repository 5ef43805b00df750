// Package config loads docquiz settings from an optional YAML file, a .env
// file and DOCQUIZ_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/docquiz/internal/llm"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DOCQUIZ"

// Config is the resolved application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	DB       string         `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Generate GenerateConfig `mapstructure:"generate"`
}

type LLMConfig struct {
	Provider   string         `mapstructure:"provider"`
	Timeout    time.Duration  `mapstructure:"timeout"`
	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type GenerateConfig struct {
	Count int `mapstructure:"count"`
}

// Options control where Load looks for settings.
type Options struct {
	// ConfigFile is an explicit YAML file. Empty means no file.
	ConfigFile string
	// EnvFile is loaded with godotenv before reading the environment.
	// Empty means ".env"; a missing file is not an error.
	EnvFile string
}

// bare environment variables honoured without the DOCQUIZ_ prefix.
var bareEnv = map[string]string{
	"llm.gemini.api_key":     "GEMINI_API_KEY",
	"llm.openai.api_key":     "OPENAI_API_KEY",
	"llm.anthropic.api_key":  "ANTHROPIC_API_KEY",
	"llm.openrouter.api_key": "OPENROUTER_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", llm.ProviderGemini)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", "claude-haiku")
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", "google/gemini-2.5-flash")
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "development")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("generate.count", 3)
}

// Load resolves configuration. Precedence, highest first: DOCQUIZ_ env vars,
// bare provider key env vars, the config file, defaults. Variables from the
// .env file never override ones already set in the process environment.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range bareEnv {
		if os.Getenv(EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))) != "" {
			continue
		}
		if val := os.Getenv(name); val != "" {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Generate.Count < 1 || c.Generate.Count > 20 {
		return fmt.Errorf("generate.count must be between 1 and 20, got %d", c.Generate.Count)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	return nil
}

// ToLLMConfig maps the loaded settings onto llm.Config.
func (c *Config) ToLLMConfig() llm.Config {
	return llm.Config{
		Provider: c.LLM.Provider,
		Timeout:  c.LLM.Timeout,
		Gemini: llm.GeminiConfig{
			APIKey: c.LLM.Gemini.APIKey, Model: c.LLM.Gemini.Model, BaseURL: c.LLM.Gemini.BaseURL,
		},
		OpenAI: llm.OpenAIConfig{
			APIKey: c.LLM.OpenAI.APIKey, Model: c.LLM.OpenAI.Model, BaseURL: c.LLM.OpenAI.BaseURL,
		},
		Anthropic: llm.AnthropicConfig{
			APIKey: c.LLM.Anthropic.APIKey, Model: c.LLM.Anthropic.Model, BaseURL: c.LLM.Anthropic.BaseURL,
		},
		OpenRouter: llm.OpenRouterConfig{
			APIKey: c.LLM.OpenRouter.APIKey, Model: c.LLM.OpenRouter.Model, BaseURL: c.LLM.OpenRouter.BaseURL,
		},
	}
}
