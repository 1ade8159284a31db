// Package config loads and saves the client's settings file, ~/.parley/config.yaml.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zhubert/parley/internal/chat"
	perrors "github.com/zhubert/parley/internal/errors"
)

// Defaults used when the file or a field is missing.
const (
	DefaultServerURL      = "http://localhost:5000/api"
	DefaultAssistantName  = "Bomare Assistant"
	DefaultRequestTimeout = "60s"
)

// Environment variables that override the file.
const (
	EnvServerURL = "PARLEY_SERVER_URL"
	EnvLanguage  = "PARLEY_LANGUAGE"
	EnvMode      = "PARLEY_MODE"
)

// Config holds the application configuration
type Config struct {
	ServerURL            string `yaml:"server_url"`
	Language             string `yaml:"language"`
	Mode                 string `yaml:"mode"`
	AssistantName        string `yaml:"assistant_name"`
	RequestTimeout       string `yaml:"request_timeout"`       // Go duration, e.g. "60s"; "0s" disables
	NotificationsEnabled bool   `yaml:"notifications_enabled"` // Desktop notification when a reply arrives
	Theme                string `yaml:"theme,omitempty"`       // UI theme name (e.g., "dark-purple", "nord")

	mu       sync.RWMutex
	filePath string
}

// Default returns a config with every field at its default.
func Default() *Config {
	return &Config{
		ServerURL:      DefaultServerURL,
		Language:       chat.DefaultLanguage,
		Mode:           string(chat.ModeChatbot),
		AssistantName:  DefaultAssistantName,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// DefaultPath returns the path of the config file in the user's home directory.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, perrors.ConfigLoadFailed("~/.parley/config.yaml", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, layering defaults, the file and the
// environment, in that order. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, perrors.ConfigLoadFailed(path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, perrors.ConfigLoadFailed(path, err)
		}
	}

	cfg.fillDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults restores fields a partial file left empty. It must only run
// before the config is shared.
func (c *Config) fillDefaults() {
	d := Default()
	if c.ServerURL == "" {
		c.ServerURL = d.ServerURL
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.AssistantName == "" {
		c.AssistantName = d.AssistantName
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = d.RequestTimeout
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvServerURL); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		c.Language = v
	}
	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = v
	}
}

// Validate checks every field and normalizes language and mode in place.
func (c *Config) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return perrors.ConfigInvalid(fmt.Sprintf("server_url %q must be an http(s) URL", c.ServerURL))
	}

	mode, err := chat.ParseMode(c.Mode)
	if err != nil {
		return perrors.ConfigInvalid(err.Error())
	}
	c.Mode = string(mode)

	lang, err := normalizeLanguage(c.Language)
	if err != nil {
		return perrors.ConfigInvalid(err.Error())
	}
	c.Language = lang

	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return perrors.ConfigInvalid(fmt.Sprintf("request_timeout %q: %v", c.RequestTimeout, err))
	}
	if d < 0 {
		return perrors.ConfigInvalid("request_timeout must not be negative")
	}

	return nil
}

// normalizeLanguage lowercases a language code and rejects anything that is
// not 2 to 8 ASCII letters.
func normalizeLanguage(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) < 2 || len(code) > 8 {
		return "", fmt.Errorf("language %q must be a 2 to 8 letter code", code)
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return "", fmt.Errorf("language %q must only contain letters", code)
		}
	}
	return code, nil
}

// Save writes the config atomically: a temp file in the same directory is
// renamed over the target.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path := c.filePath
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return perrors.ConfigSaveFailed("~/.parley/config.yaml", err)
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return perrors.ConfigSaveFailed(path, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return perrors.ConfigSaveFailed(path, err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return perrors.ConfigSaveFailed(path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return perrors.ConfigSaveFailed(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return perrors.ConfigSaveFailed(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return perrors.ConfigSaveFailed(path, err)
	}
	return nil
}

// Path returns the file the config was loaded from and will be saved to.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filePath
}

// Override applies non-empty command-line values and re-validates.
func (c *Config) Override(serverURL, language, mode string) error {
	c.mu.Lock()
	if serverURL != "" {
		c.ServerURL = serverURL
	}
	if language != "" {
		c.Language = language
	}
	if mode != "" {
		c.Mode = mode
	}
	c.mu.Unlock()
	return c.Validate()
}

// GetServerURL returns the assistant API root
func (c *Config) GetServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerURL
}

// SetServerURL sets the assistant API root
func (c *Config) SetServerURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerURL = u
}

// GetLanguage returns the starting language code
func (c *Config) GetLanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Language
}

// SetLanguage sets the starting language code
func (c *Config) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Language = lang
}

// GetMode returns the starting interaction mode. Validate has already
// normalized it, so an unparsable value falls back to Chatbot.
func (c *Config) GetMode() chat.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mode, err := chat.ParseMode(c.Mode)
	if err != nil {
		return chat.ModeChatbot
	}
	return mode
}

// SetMode sets the starting interaction mode
func (c *Config) SetMode(mode chat.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Mode = string(mode)
}

// GetAssistantName returns the name shown in the header
func (c *Config) GetAssistantName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AssistantName
}

// SetAssistantName sets the name shown in the header
func (c *Config) SetAssistantName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AssistantName = name
}

// GetRequestTimeout returns the per-request HTTP timeout. Zero means none.
func (c *Config) GetRequestTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d < 0 {
		d, _ = time.ParseDuration(DefaultRequestTimeout)
	}
	return d
}

// SetRequestTimeout sets the per-request HTTP timeout
func (c *Config) SetRequestTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RequestTimeout = d.String()
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetTheme returns the current theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the current theme name
func (c *Config) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = theme
}
