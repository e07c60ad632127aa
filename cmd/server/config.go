package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
	"gopkg.in/yaml.v3"
)

type config struct {
	Port      string     `yaml:"port"`
	LogLevel  slog.Level `yaml:"logLevel"`
	StorePath string     `yaml:"storePath"`

	// Defaults seeds the sidebar the first time the server runs against an empty store.
	Defaults models.ChatSettings `yaml:"defaults"`
}

type settingsConfig struct {
	BackendURL     string `yaml:"backendURL"`
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	InternetSearch bool   `yaml:"internetSearch"`
	SystemPrompt   string `yaml:"systemPrompt"`
}

const defaultPort = "8080"

func defaultConfig() config {
	return config{
		Port:     defaultPort,
		LogLevel: slog.LevelInfo,
		Defaults: models.DefaultChatSettings(),
	}
}

func (c *config) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig struct {
		Port      string          `yaml:"port"`
		LogLevel  string          `yaml:"logLevel"`
		StorePath string          `yaml:"storePath"`
		Defaults  *settingsConfig `yaml:"defaults"`
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
	c.StorePath = rawConfig.StorePath

	if rawConfig.Defaults == nil {
		return nil
	}

	d := rawConfig.Defaults
	if d.BackendURL != "" {
		c.Defaults.BackendURL = d.BackendURL
	}
	if d.SystemPrompt != "" {
		c.Defaults.SystemPrompt = d.SystemPrompt
	}
	c.Defaults.InternetSearch = d.InternetSearch

	if d.Provider != "" {
		p, err := models.ParseProvider(strings.ToLower(d.Provider))
		if err != nil {
			return err
		}
		if err := c.Defaults.SetProvider(p); err != nil {
			return err
		}
	}
	if d.Model != "" {
		if err := c.Defaults.SetModel(d.Model); err != nil {
			return err
		}
	}

	return nil
}

// loadConfig reads the config file at path. A missing file yields the default configuration.
func loadConfig(path string) (config, error) {
	cfgFile, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultConfig(), nil
	}
	if err != nil {
		return config{}, fmt.Errorf("error opening config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := defaultConfig()
	if err := yaml.NewDecoder(cfgFile).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return config{}, fmt.Errorf("error decoding config file: %w", err)
	}
	return cfg, nil
}
