// Package config loads the optional TOML file shared by md5sum and the trace server. Every value
// has a default, so a missing file is not an error; flags given on the command line override the
// file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/p7r0x7/md5trace/internal/log"
	"github.com/p7r0x7/md5trace/render"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Config is the root of the file.
type Config struct {
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig selects how traces are printed.
type RenderConfig struct {
	Style  string `toml:"style" validate:"oneof=tree table text"`
	Border string `toml:"border" validate:"oneof=plain ascii unicode light"`
	/* fasttemplate sources with {{tag}} placeholders; see render.IsTag. */
	StepTemplate  string `toml:"step_template" validate:"required,template_tags"`
	BlockTemplate string `toml:"block_template" validate:"required,template_tags"`
}

// ServerConfig configures `md5sum --serve`.
type ServerConfig struct {
	Listen   string `toml:"listen" validate:"required,hostname_port"`
	MaxInput int    `toml:"max_input" validate:"gte=0,lte=67108864"`
}

const (
	DefaultStepTemplate  = render.DefaultStepTemplate
	DefaultBlockTemplate = render.DefaultBlockTemplate
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Style:         "tree",
			Border:        "light",
			StepTemplate:  DefaultStepTemplate,
			BlockTemplate: DefaultBlockTemplate,
		},
		Server: ServerConfig{
			Listen:   "127.0.0.1:8055",
			MaxInput: 1 << 20,
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	path = filepath.Clean(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	log.Debugf("Configuration file path: %s", path)
	return Parse(content)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(content []byte) (*Config, error) {
	c := Default()
	if err := toml.Unmarshal(content, c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("failed to parse config file at line %d, column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Marshal encodes c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
