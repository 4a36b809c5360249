// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"spectrum/internal/kernel"
	applog "spectrum/internal/log"

	"gopkg.in/yaml.v3"
)

// Defaults and limits for the analysis settings.
const (
	DefaultWindowSize = 1024             // Samples per transform
	DefaultTimeScale  = 10               // Segments per second (100 ms)
	DefaultKernel     = kernel.Gonum     // Transform backend
	DefaultLogLevel   = "info"           // Logging level
	DefaultWSAddress  = ":8080"          // WebSocket listen address
	DefaultUDPAddress = "127.0.0.1:9090" // UDP target address

	AutoWindowSize = 0    // Derive the window size from the segment length
	MinTimeScale   = 1    // One segment per second
	MaxTimeScale   = 1000 // One segment per millisecond
)

// DefaultPath is the config file searched for when no path is given.
const DefaultPath = "config.yaml"

// Config represents the application configuration, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Shorthand for log_level: debug.
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Spectral analysis settings.
	Transport TransportConfig `yaml:"transport"` // Replay transport settings used by serve.
}

// AnalysisConfig holds settings for the spectral engine.
type AnalysisConfig struct {
	WindowSize int    `yaml:"window_size"` // Samples per transform; must be even. 0 selects it from the segment length.
	TimeScale  int    `yaml:"time_scale"`  // Segments per second for the segmented transform, 1-1000.
	Kernel     string `yaml:"kernel"`      // Transform backend ("gonum" or "godsp").
	Channel    int    `yaml:"channel"`     // Channel replayed by serve.
}

// TransportConfig holds settings for sending computed frames over the network.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`  // Serve frames to WebSocket clients on /ws.
	WebSocketAddress string `yaml:"websocket_address"`  // Listen address, e.g. ":8080".
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Send frames as binary UDP packets.
	UDPTargetAddress string `yaml:"udp_target_address"` // Target host:port for UDP packets.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Analysis: AnalysisConfig{
			WindowSize: DefaultWindowSize,
			TimeScale:  DefaultTimeScale,
			Kernel:     DefaultKernel,
		},
		Transport: TransportConfig{
			WebSocketEnabled: true,
			WebSocketAddress: DefaultWSAddress,
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPAddress,
		},
	}
}

// LoadConfig loads configuration from the YAML file at path. If path is empty
// it looks for DefaultPath in the working directory and falls back to the
// built-in defaults when that is missing. Environment overrides are applied
// last, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("Config: loaded %s", path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the engine or transports would
// reject later.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error, fatal", c.LogLevel)
	}

	a := c.Analysis
	if a.WindowSize < 0 || a.WindowSize%2 != 0 {
		return fmt.Errorf("analysis.window_size must be even and not negative, got %d", a.WindowSize)
	}
	if a.TimeScale < MinTimeScale || a.TimeScale > MaxTimeScale {
		return fmt.Errorf("analysis.time_scale must be between %d and %d, got %d",
			MinTimeScale, MaxTimeScale, a.TimeScale)
	}
	if _, err := kernel.Resolve(a.Kernel); err != nil {
		return fmt.Errorf("analysis.kernel %q is not one of %s, %s", a.Kernel, kernel.Gonum, kernel.GoDSP)
	}
	if a.Channel < 0 {
		return fmt.Errorf("analysis.channel must not be negative, got %d", a.Channel)
	}

	t := c.Transport
	if t.WebSocketEnabled && t.WebSocketAddress == "" {
		return fmt.Errorf("transport.websocket_address must be set when WebSocket is enabled")
	}
	if t.UDPEnabled {
		if t.UDPTargetAddress == "" {
			return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
		}
		if !strings.Contains(t.UDPTargetAddress, ":") {
			return fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", t.UDPTargetAddress)
		}
	}

	return nil
}

// Level returns the effective log level; Debug forces LevelDebug.
func (c *Config) Level() applog.LogLevel {
	if c.Debug {
		return applog.LevelDebug
	}
	level, _ := applog.ParseLevel(c.LogLevel)
	return level
}

// applyEnvOverrides replaces settings with ENV_* variables when they are set
// and parse. Unparsable values are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			applog.Infof("Config: overriding debug from env: %v", bVal)
		} else {
			applog.Warnf("Config: ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Infof("Config: overriding log_level from env: %s", val)
	}

	// ENV_{...} analysis overrides.
	overrideInt("ENV_WINDOW_SIZE", "analysis.window_size", &c.Analysis.WindowSize)
	overrideInt("ENV_TIME_SCALE", "analysis.time_scale", &c.Analysis.TimeScale)
	if val, ok := os.LookupEnv("ENV_KERNEL"); ok {
		c.Analysis.Kernel = val
		applog.Infof("Config: overriding analysis.kernel from env: %s", val)
	}

	// ENV_WS_{...} and ENV_UDP_{...} transport overrides.
	overrideBool("ENV_WS_ENABLED", "transport.websocket_enabled", &c.Transport.WebSocketEnabled)
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		applog.Infof("Config: overriding transport.websocket_address from env: %s", val)
	}
	overrideBool("ENV_UDP_ENABLED", "transport.udp_enabled", &c.Transport.UDPEnabled)
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Infof("Config: overriding transport.udp_target_address from env: %s", val)
	}
}

func overrideInt(env, key string, dst *int) {
	val, ok := os.LookupEnv(env)
	if !ok {
		return
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		applog.Warnf("Config: ignoring %s=%q: %v", env, val, err)
		return
	}
	*dst = n
	applog.Infof("Config: overriding %s from env: %d", key, n)
}

func overrideBool(env, key string, dst *bool) {
	val, ok := os.LookupEnv(env)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		applog.Warnf("Config: ignoring %s=%q: %v", env, val, err)
		return
	}
	*dst = b
	applog.Infof("Config: overriding %s from env: %v", key, b)
}
