package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "EDAMASTER"
	dirName   = ".edamaster"
)

// Global configuration structure.
type Global struct {
	OutputFile     string `mapstructure:"output_file" yaml:"output_file" validate:"required"`
	OutputFormat   string `mapstructure:"output_format" yaml:"output_format" validate:"oneof=csv xlsx"`
	FilenameSuffix string `mapstructure:"filename_suffix" yaml:"filename_suffix"`
	PreviewRows    int    `mapstructure:"preview_rows" yaml:"preview_rows" validate:"gte=0"`
	Delimiter      string `mapstructure:"delimiter" yaml:"delimiter" validate:"omitempty,oneof=0x2C ; tab"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	// HTTP server
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" validate:"gt=0,lte=1024"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"output_file", "output_format", "filename_suffix", "preview_rows", "delimiter",
	"log_level", "log_format", "listen_addr", "max_upload_mb",
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.edamaster/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, dirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env (.env included) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("output_file", "EDA_MASTER_SHEET.csv")
	v.SetDefault("output_format", "csv")
	v.SetDefault("filename_suffix", "_period_analysis_summary")
	v.SetDefault("preview_rows", 10)
	v.SetDefault("delimiter", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("max_upload_mb", 32)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	c.OutputFormat = strings.ToLower(c.OutputFormat)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Defaults returns the built-in configuration, used when loading fails.
func Defaults() *Global {
	return &Global{
		OutputFile:     "EDA_MASTER_SHEET.csv",
		OutputFormat:   "csv",
		FilenameSuffix: "_period_analysis_summary",
		PreviewRows:    10,
		LogLevel:       "info",
		LogFormat:      "text",
		ListenAddr:     "127.0.0.1:8080",
		MaxUploadMB:    32,
	}
}
