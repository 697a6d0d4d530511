package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	charmlog "github.com/charmbracelet/log"
)

// Config represents the emulator configuration
type Config struct {
	// Execution settings
	Execution struct {
		SampleRate   int     `toml:"sample_rate"`
		DefaultBank  string  `toml:"default_bank"`
		DefaultPot0  float64 `toml:"default_pot0"`
		DefaultPot1  float64 `toml:"default_pot1"`
		DefaultPot2  float64 `toml:"default_pot2"`
		MaxFrames    uint64  `toml:"max_frames"`
	} `toml:"execution"`

	// Debugger settings
	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		RefreshHz     int  `toml:"refresh_hz"`
		ShowDisasm    bool `toml:"show_disasm"`
		ShowDelayLine bool `toml:"show_delay_line"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		ColorOutput   bool   `toml:"color_output"`
		DisasmContext int    `toml:"disasm_context"`
		NumberFormat  string `toml:"number_format"` // hex, dec, both
	} `toml:"display"`

	// Logging settings
	Logging struct {
		Level      string `toml:"level"` // debug, info, warn, error
		OutputFile string `toml:"output_file"`
	} `toml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Execution defaults
	cfg.Execution.SampleRate = 32000
	cfg.Execution.DefaultBank = ""
	cfg.Execution.DefaultPot0 = 0.0
	cfg.Execution.DefaultPot1 = 0.0
	cfg.Execution.DefaultPot2 = 0.0
	cfg.Execution.MaxFrames = 0 // 0 = run the whole input

	// Debugger defaults
	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.RefreshHz = 30
	cfg.Debugger.ShowDisasm = true
	cfg.Debugger.ShowDelayLine = true

	// Display defaults
	cfg.Display.ColorOutput = true
	cfg.Display.DisasmContext = 5
	cfg.Display.NumberFormat = "hex"

	// Logging defaults
	cfg.Logging.Level = "info"
	cfg.Logging.OutputFile = ""

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\fv1vm\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "fv1vm")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/fv1vm/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "fv1vm")

	default:
		// Unknown platform: use current directory
		return "config.toml"
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0750); err != nil {
		// If we can't create the directory, fall back to current directory
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\fv1vm\logs
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "fv1vm", "logs")

	case "darwin", "linux":
		// macOS/Linux: ~/.local/share/fv1vm/logs
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "fv1vm", "logs")

	default:
		return "logs"
	}

	// Ensure directory exists
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// NewLogger builds a charmbracelet/log logger from the Logging section:
// level-filtered, timestamped, and writing to Logging.OutputFile when set
// (stderr otherwise).
func (c *Config) NewLogger() (*charmlog.Logger, error) {
	var out io.Writer = os.Stderr
	if c.Logging.OutputFile != "" {
		f, err := os.OpenFile(c.Logging.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- user-configured log path
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
	}

	logger := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "fv1vm",
	})

	level, err := charmlog.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", c.Logging.Level, err)
	}
	logger.SetLevel(level)

	return logger, nil
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read and parse config file
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file
	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	// Encode to TOML
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
