package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Upload UploadConfig `mapstructure:"upload"`
	OCR    OCRConfig    `mapstructure:"ocr"`
	LLM    LLMConfig    `mapstructure:"llm"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// UploadConfig holds stored-image configuration
type UploadConfig struct {
	Dir string `mapstructure:"dir"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Languages           []string `mapstructure:"languages"`
	ConfidenceThreshold float32  `mapstructure:"confidence_threshold"`
	TessdataDir         string   `mapstructure:"tessdata_dir"`
}

// LLMConfig holds generative-model configuration
type LLMConfig struct {
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// LoadConfig reads labelscan.yaml if present, then applies environment
// overrides (LABELSCAN_LLM_API_KEY, LABELSCAN_UPLOAD_DIR, ...) on top of
// the defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("labelscan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/labelscan")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("upload.dir", "uploaded_images")
	v.SetDefault("ocr.languages", []string{"eng", "tel"})
	v.SetDefault("ocr.confidence_threshold", 0.7)
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 45*time.Second)
	v.SetDefault("llm.max_retries", 2)

	v.SetEnvPrefix("labelscan")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "server.addr is required", ErrInvalidInput)
	}
	if c.Upload.Dir == "" {
		return NewAppError("CONFIG_ERROR", "upload.dir is required", ErrInvalidInput)
	}
	if len(c.OCR.Languages) == 0 {
		return NewAppError("CONFIG_ERROR", "ocr.languages must not be empty", ErrInvalidInput)
	}
	if c.OCR.ConfidenceThreshold < 0 || c.OCR.ConfidenceThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "ocr.confidence_threshold must be in [0,1]", ErrInvalidInput)
	}
	return nil
}
