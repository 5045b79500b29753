package config

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
)

type configBuilder struct {
	configs []*Config
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*Config, 0, 4),
	}
}

// build merges the layers in the order they were added. Earlier layers win.
func (b *configBuilder) build() (*Config, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(Config)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}
	config.StoragePath = ExpandHome(config.StoragePath)

	return config, config.validate()
}

func (b *configBuilder) withFlags(flags *Config) *configBuilder {
	if flags != nil {
		b.configs = append(b.configs, flags)
	}
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &Config{}
	if err := env.Parse(envCfg); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error getting env configs: %w", err))
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

// withSettings reads the settings file named by an earlier layer, or the
// default location when none names one.
func (b *configBuilder) withSettings() *configBuilder {
	var path string
	for _, cfg := range b.configs {
		if cfg.SettingsFile != "" {
			path = cfg.SettingsFile
			break
		}
	}
	if path == "" {
		defaults, err := Defaults()
		if err != nil {
			b.err = errors.Join(b.err, err)
			return b
		}
		path = defaults.SettingsFile
	}

	settings, err := LoadSettings(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, &Config{StoragePath: settings.StoragePath})
	return b
}

func (b *configBuilder) withDefaults() *configBuilder {
	defaults, err := Defaults()
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, defaults)
	return b
}
