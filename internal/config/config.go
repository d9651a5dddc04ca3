package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/code-verdict/internal/domain/analysis"
)

// APIKeyEnv is the only place the model credential is read from.
const APIKeyEnv = "AI_API_KEY"

const (
	DefaultPort         = 3000
	DefaultModel        = "gemini-2.5-flash"
	DefaultBaseURL      = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultMaxBodyBytes = 10 << 20
)

var ErrMissingAPIKey = errors.New(APIKeyEnv + " environment variable is not set")

type Config struct {
	Server   Server   `yaml:"server"`
	Model    Model    `yaml:"model"`
	Analysis Analysis `yaml:"analysis"`
	Log      Log      `yaml:"log"`

	// APIKey never comes from the YAML file.
	APIKey string `yaml:"-"`
}

type Server struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
}

type Model struct {
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"baseURL"`
	MaxTokens int    `yaml:"maxTokens"`
}

type Analysis struct {
	Mode         analysis.Mode `yaml:"mode"`
	StrictSchema bool          `yaml:"strictSchema"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// LoadDotEnv loads .env files into the process environment if they exist.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load baca config YAML (optional) lalu ambil API key dari environment.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	// model calls on big bundles regularly take longer than a minute
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 3 * time.Minute
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Model.Name == "" {
		c.Model.Name = DefaultModel
	}
	if c.Model.BaseURL == "" {
		c.Model.BaseURL = DefaultBaseURL
	}
	if c.Analysis.Mode == "" {
		c.Analysis.Mode = analysis.ModeWholeProgram
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("invalid maxBodyBytes: %d", c.Server.MaxBodyBytes)
	}
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("invalid model maxTokens: %d", c.Model.MaxTokens)
	}
	if _, err := analysis.ParseMode(string(c.Analysis.Mode), ""); err != nil {
		return fmt.Errorf("analysis.mode %q: %w", c.Analysis.Mode, err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
