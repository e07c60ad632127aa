package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

type config struct {
	Port     string
	LogLevel slog.Level

	OpenAI providerConfig
	Groq   providerConfig
	Tavily tavilyConfig
}

type providerConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
}

type tavilyConfig struct {
	APIKey   string `yaml:"apiKey"`
	Endpoint string `yaml:"endpoint"`
}

const defaultPort = "8000"

func defaultConfig() config {
	return config{
		Port:     defaultPort,
		LogLevel: slog.LevelInfo,
	}
}

func (c *config) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig struct {
		Port     string         `yaml:"port"`
		LogLevel string         `yaml:"logLevel"`
		OpenAI   providerConfig `yaml:"openai"`
		Groq     providerConfig `yaml:"groq"`
		Tavily   tavilyConfig   `yaml:"tavily"`
	}

	if err := value.Decode(&rawConfig); err != nil {
		return err
	}

	*c = defaultConfig()

	if rawConfig.Port != "" {
		c.Port = rawConfig.Port
	}
	if rawConfig.LogLevel != "" {
		if err := c.LogLevel.UnmarshalText([]byte(rawConfig.LogLevel)); err != nil {
			return fmt.Errorf("invalid logLevel: %w", err)
		}
	}
	c.OpenAI = rawConfig.OpenAI
	c.Groq = rawConfig.Groq
	c.Tavily = rawConfig.Tavily

	return nil
}

// fillAPIKeys takes the keys missing from the file out of the environment.
func (c *config) fillAPIKeys(getenv func(string) string) {
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = getenv("OPENAI_API_KEY")
	}
	if c.Groq.APIKey == "" {
		c.Groq.APIKey = getenv("GROQ_API_KEY")
	}
	if c.Tavily.APIKey == "" {
		c.Tavily.APIKey = getenv("TAVILY_API_KEY")
	}
}

// loadConfig reads the config file at path, then fills missing API keys from getenv. A missing
// file yields the default configuration.
func loadConfig(path string, getenv func(string) string) (config, error) {
	cfg := defaultConfig()

	cfgFile, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return config{}, fmt.Errorf("error opening config file: %w", err)
	default:
		defer cfgFile.Close()
		if err := yaml.NewDecoder(cfgFile).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return config{}, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	cfg.fillAPIKeys(getenv)
	return cfg, nil
}
