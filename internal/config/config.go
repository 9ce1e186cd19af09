package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// DirEnv overrides the configuration directory
const DirEnv = "LFM_CONFIG_DIR"

// Config holds all application configuration. Unset numeric values are nil so
// callers can fall back to their own defaults.
type Config struct {
	// Provider endpoints
	OllamaURL     string `json:"ollama_url,omitempty"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`
	OpenAIKey     string `json:"openai_api_key,omitempty"`

	// Defaults
	DefaultProvider string `json:"default_provider,omitempty"`
	DefaultModel    string `json:"default_model,omitempty"`

	// Generation
	Temperature   *float64 `json:"temperature,omitempty"`
	MinP          *float64 `json:"min_p,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
	MaxIterations *int     `json:"max_iterations,omitempty"`
}

// key aliases accepted by Set and Delete
var aliases = map[string]string{
	"openai":     "openai_api_key",
	"provider":   "default_provider",
	"model":      "default_model",
	"ollama":     "ollama_url",
	"openai_url": "openai_base_url",
}

var (
	mu          sync.Mutex
	current     *Config
	currentFile string
)

// Dir returns the configuration directory, ~/.config/lfm unless LFM_CONFIG_DIR is set
func Dir() string {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "lfm")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads the config from disk. A missing file yields the defaults.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	return load()
}

func load() (*Config, error) {
	path := ConfigPath()
	if current != nil && currentFile == path {
		return current, nil
	}

	cfg := &Config{
		DefaultProvider: "ollama",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			current, currentFile = cfg, path
			return current, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	current, currentFile = cfg, path
	return current, nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	mu.Lock()
	defer mu.Unlock()
	return save(cfg)
}

func save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	current, currentFile = cfg, ConfigPath()
	return nil
}

// Get returns the current config, loading if necessary. A config file that
// cannot be read yields the defaults.
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()
	cfg, err := load()
	if err != nil {
		return &Config{DefaultProvider: "ollama"}
	}
	return cfg
}

// Keys returns the canonical config keys
func Keys() []string {
	return []string{
		"default_provider", "default_model",
		"ollama_url", "openai_base_url", "openai_api_key",
		"temperature", "min_p", "repeat_penalty", "max_iterations",
	}
}

func canonical(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if k, ok := aliases[key]; ok {
		return k
	}
	return key
}

// Set updates a config value by key
func Set(key, value string) error {
	mu.Lock()
	defer mu.Unlock()

	cfg, err := load()
	if err != nil {
		return err
	}
	if err := cfg.set(canonical(key), value); err != nil {
		return err
	}
	return save(cfg)
}

func (c *Config) set(key, value string) error {
	switch key {
	case "openai_api_key":
		c.OpenAIKey = value
	case "openai_base_url":
		c.OpenAIBaseURL = value
	case "ollama_url":
		c.OllamaURL = value
	case "default_provider":
		c.DefaultProvider = value
	case "default_model":
		c.DefaultModel = value
	case "temperature", "min_p", "repeat_penalty":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid value for %s: %q (want a non-negative number)", key, value)
		}
		switch key {
		case "temperature":
			c.Temperature = &f
		case "min_p":
			c.MinP = &f
		default:
			c.RepeatPenalty = &f
		}
	case "max_iterations":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid value for %s: %q (want a positive integer)", key, value)
		}
		c.MaxIterations = &n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Delete removes a config value
func Delete(key string) error {
	mu.Lock()
	defer mu.Unlock()

	cfg, err := load()
	if err != nil {
		return err
	}

	switch canonical(key) {
	case "openai_api_key":
		cfg.OpenAIKey = ""
	case "openai_base_url":
		cfg.OpenAIBaseURL = ""
	case "ollama_url":
		cfg.OllamaURL = ""
	case "default_provider":
		cfg.DefaultProvider = ""
	case "default_model":
		cfg.DefaultModel = ""
	case "temperature":
		cfg.Temperature = nil
	case "min_p":
		cfg.MinP = nil
	case "repeat_penalty":
		cfg.RepeatPenalty = nil
	case "max_iterations":
		cfg.MaxIterations = nil
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return save(cfg)
}

// Value returns the display form of a single key (API keys masked)
func Value(key string) (string, error) {
	key = canonical(key)
	values := ListKeys()
	for _, k := range Keys() {
		if k == key {
			return values[k], nil
		}
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// GetOpenAIKey returns the OpenAI API key (config or env)
func GetOpenAIKey() string {
	cfg := Get()
	if cfg.OpenAIKey != "" {
		return cfg.OpenAIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

// GetOpenAIBaseURL returns the OpenAI-compatible endpoint (config or env).
// Empty means the provider default.
func GetOpenAIBaseURL() string {
	cfg := Get()
	if cfg.OpenAIBaseURL != "" {
		return cfg.OpenAIBaseURL
	}
	return os.Getenv("OPENAI_BASE_URL")
}

// GetOllamaURL returns the Ollama server URL (config or OLLAMA_HOST).
// Empty means the provider default.
func GetOllamaURL() string {
	cfg := Get()
	if cfg.OllamaURL != "" {
		return cfg.OllamaURL
	}
	host := os.Getenv("OLLAMA_HOST")
	if host != "" && !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

// ListKeys returns configured keys (masked for display)
func ListKeys() map[string]string {
	cfg := Get()
	result := make(map[string]string)

	if cfg.OpenAIKey != "" {
		result["openai_api_key"] = maskKey(cfg.OpenAIKey)
	} else if os.Getenv("OPENAI_API_KEY") != "" {
		result["openai_api_key"] = maskKey(os.Getenv("OPENAI_API_KEY")) + " (env)"
	}

	if cfg.OllamaURL != "" {
		result["ollama_url"] = cfg.OllamaURL
	} else if os.Getenv("OLLAMA_HOST") != "" {
		result["ollama_url"] = GetOllamaURL() + " (env)"
	}

	if cfg.OpenAIBaseURL != "" {
		result["openai_base_url"] = cfg.OpenAIBaseURL
	}
	if cfg.DefaultProvider != "" {
		result["default_provider"] = cfg.DefaultProvider
	}
	if cfg.DefaultModel != "" {
		result["default_model"] = cfg.DefaultModel
	}
	if cfg.Temperature != nil {
		result["temperature"] = strconv.FormatFloat(*cfg.Temperature, 'g', -1, 64)
	}
	if cfg.MinP != nil {
		result["min_p"] = strconv.FormatFloat(*cfg.MinP, 'g', -1, 64)
	}
	if cfg.RepeatPenalty != nil {
		result["repeat_penalty"] = strconv.FormatFloat(*cfg.RepeatPenalty, 'g', -1, 64)
	}
	if cfg.MaxIterations != nil {
		result["max_iterations"] = strconv.Itoa(*cfg.MaxIterations)
	}

	return result
}

// SortedKeys returns the keys of m in alphabetical order
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// maskKey shows only first 4 and last 4 characters
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// PersonaPaths returns paths to search for persona definitions.
// Global (~/.config/lfm/personas/) comes first so project-local files override it.
func PersonaPaths() []string {
	paths := []string{filepath.Join(Dir(), "personas")}

	cwd, err := os.Getwd()
	if err == nil {
		paths = append(paths, filepath.Join(cwd, ".lfm", "personas"))
	}

	return paths
}
