package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
)

// Environment variables that override the config file.
const (
	envOpenAIKey     = "OPENAI_API_KEY"
	envOpenAIBaseURL = "OPENAI_BASE_URL"
	envOpenAIModel   = "OPENAI_MODEL"
	envRedisAddr     = "COURSEGRAPH_REDIS_ADDR"
	envMaxTokens     = "COURSEGRAPH_OPENAI_MAX_TOKENS"
)

// Config is the optional config.toml. Flags override the environment, which
// overrides the file, which overrides the defaults.
type Config struct {
	// Catalog is the default catalog file; empty uses the embedded catalog.
	Catalog string `toml:"catalog"`

	OpenAI OpenAIConfig `toml:"openai"`
	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
}

// OpenAIConfig configures the recommendation client.
type OpenAIConfig struct {
	APIKey         string   `toml:"api_key"`
	BaseURL        string   `toml:"base_url"`
	Model          string   `toml:"model"`
	Temperature    *float64 `toml:"temperature"`
	MaxTokens      int      `toml:"max_tokens"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Timeout returns the request timeout, or 0 for the client default.
func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Disabled  bool   `toml:"disabled"`
	Dir       string `toml:"dir"`        // file cache directory
	RedisAddr string `toml:"redis_addr"` // when set, Redis replaces the file cache
	Prefix    string `toml:"prefix"`     // Redis key prefix
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Formats   []string `toml:"formats"`
	Width     float64  `toml:"width"`
	Height    float64  `toml:"height"`
	Scale     float64  `toml:"scale"`
	EdgeInset float64  `toml:"edge_inset"`
}

// ServerConfig configures "coursegraph serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
	}
}

// configDir returns the config directory using the XDG standard
// (~/.config/coursegraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// configPath returns the default config file path.
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// loadConfig reads the config file at path and applies environment
// overrides. An empty path means the default location, where a missing file
// is not an error; an explicit path must exist.
func loadConfig(path string, getenv func(string) string) (Config, []string, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err == nil {
			path = p
		}
	}

	var unknown []string
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
			cfg = defaultConfig()
		case errors.Is(err, os.ErrNotExist):
			return cfg, nil, cgerrors.Wrap(cgerrors.ErrCodeFileNotFound, err, "config %s", path)
		case err != nil:
			return cfg, nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidConfig, err, "config %s", path)
		default:
			for _, k := range md.Undecoded() {
				unknown = append(unknown, k.String())
			}
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, unknown, err
	}
	return cfg, unknown, nil
}

// applyEnv overrides config fields from the environment.
func applyEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(envOpenAIKey); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := getenv(envOpenAIBaseURL); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := getenv(envOpenAIModel); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := getenv(envRedisAddr); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := getenv(envMaxTokens); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cgerrors.New(cgerrors.ErrCodeInvalidConfig, "%s must be a positive integer, got %q", envMaxTokens, v)
		}
		cfg.OpenAI.MaxTokens = n
	}
	return nil
}

// String renders the effective config as TOML with the API key masked.
func (c Config) String() string {
	masked := c
	if masked.OpenAI.APIKey != "" {
		masked.OpenAI.APIKey = maskSecret(masked.OpenAI.APIKey)
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:3] + "…" + s[len(s)-4:]
}

// configCommand creates the config command, which prints the effective
// settings with secrets masked.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configFile
			if path == "" {
				p, err := configPath()
				if err != nil {
					return fmt.Errorf("get config path: %w", err)
				}
				path = p
			}
			printDetail("File: %s", path)
			printNewline()
			fmt.Fprint(uiOut, c.Config.String())
			return nil
		},
	}
}
