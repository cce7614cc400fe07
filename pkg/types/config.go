// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// Environment selects which conversion service root the client talks to.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvDevelopment Environment = "development"
)

const (
	// ProductionAPIBase is the hosted conversion service root.
	ProductionAPIBase = "https://api.sfenizer.app"

	// DevelopmentAPIBase is the local development service root.
	DevelopmentAPIBase = "http://localhost:8000"

	// DefaultMaxImageBytes caps the size of an accepted image (20 MiB).
	DefaultMaxImageBytes int64 = 20 << 20

	// DefaultCopyReset is how long a "copied" indicator stays set.
	DefaultCopyReset = 2 * time.Second

	// DefaultUserAgent is sent with every request to the conversion service.
	DefaultUserAgent = "sfenizer/0.1"

	// DefaultServerAddr is where the local acquisition surface listens.
	DefaultServerAddr = "127.0.0.1:8787"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero waits indefinitely.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "sfenizer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ServiceConfig holds settings for the conversion service client.
type ServiceConfig struct {
	HTTPConfig `yaml:",inline"`

	// Env selects the default base URL when APIBaseURL is empty.
	Env Environment `json:"env" yaml:"env"`

	// APIBaseURL is the resolved service root, without a trailing slash.
	APIBaseURL string `json:"api_base" yaml:"api_base"`

	// APIKey is an optional bearer token for the hosted service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// AcquisitionConfig holds settings for image acquisition.
type AcquisitionConfig struct {
	// MaxImageBytes is the largest payload accepted from any channel.
	MaxImageBytes int64 `json:"max_image_bytes" yaml:"max_image_bytes"`
}

// FeedbackConfig holds settings for clipboard feedback.
type FeedbackConfig struct {
	// CopyReset is how long a per-field "copied" indicator stays set.
	CopyReset time.Duration `json:"copy_reset" yaml:"copy_reset"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format"`
}

// ServerConfig holds settings for the local acquisition surface.
type ServerConfig struct {
	// Addr is the listen address (e.g. "127.0.0.1:8787").
	Addr string `json:"addr" yaml:"addr"`
}

// Config groups all component configurations.
type Config struct {
	Service     ServiceConfig     `json:"service" yaml:"service"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Feedback    FeedbackConfig    `json:"feedback" yaml:"feedback"`
	Log         LogConfig         `json:"log" yaml:"log"`
	Server      ServerConfig      `json:"server" yaml:"server"`
}

// BaseURLFor returns the service root for env. Unknown environments are an error.
func BaseURLFor(env Environment) (string, error) {
	switch env {
	case EnvProduction:
		return ProductionAPIBase, nil
	case EnvDevelopment, "":
		return DevelopmentAPIBase, nil
	default:
		return "", fmt.Errorf("unknown environment %q (want %s or %s)", env, EnvProduction, EnvDevelopment)
	}
}

// Resolve fills defaults and computes the service base URL once. An explicit
// APIBaseURL wins over the environment.
func (c *Config) Resolve() error {
	if c.Service.APIBaseURL == "" {
		base, err := BaseURLFor(c.Service.Env)
		if err != nil {
			return err
		}
		c.Service.APIBaseURL = base
	}
	c.Service.APIBaseURL = strings.TrimRight(c.Service.APIBaseURL, "/")
	if c.Service.UserAgent == "" {
		c.Service.UserAgent = DefaultUserAgent
	}
	if c.Acquisition.MaxImageBytes <= 0 {
		c.Acquisition.MaxImageBytes = DefaultMaxImageBytes
	}
	if c.Feedback.CopyReset <= 0 {
		c.Feedback.CopyReset = DefaultCopyReset
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	return nil
}
