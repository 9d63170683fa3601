// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultPort         = "8080"
	defaultGitHubDomain = "github.com"
	defaultCacheTTL     = 5 * time.Minute
	defaultCacheSize    = 100

	// MinCacheTTL is the shortest accepted cache window.
	MinCacheTTL = time.Second
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira   JiraConfig
	GitHub GitHubConfig
	Server ServerConfig
	Cache  CacheConfig
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL      string
	Email    string
	APIToken string
}

// GitHubConfig holds GitHub specific configuration. An empty token disables
// pull request branch resolution.
type GitHubConfig struct {
	Token  string
	Domain string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
}

// CacheConfig holds issue cache configuration.
type CacheConfig struct {
	TTL  time.Duration
	Size int
}

// ConfigurationError reports required settings that are missing.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Missing, ", "))
}

// LoadConfig initializes and loads configuration from environment variables.
// Missing JIRA settings are not an error here; call ValidateJiraConfig
// before talking to JIRA.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", defaultPort)
	v.SetDefault("github.domain", defaultGitHubDomain)
	v.SetDefault("cache.ttl", defaultCacheTTL.String())
	v.SetDefault("cache.size", defaultCacheSize)

	// The second name of each pair is the legacy variable.
	bindings := map[string][]string{
		"jira.url":       {"JIRA_URL", "JIRA_SERVER"},
		"jira.email":     {"JIRA_EMAIL", "JIRA_USERNAME"},
		"jira.api_token": {"JIRA_API_TOKEN", "JIRA_TOKEN"},
		"github.token":   {"GITHUB_TOKEN"},
		"github.domain":  {"GITHUB_DOMAIN"},
		"server.port":    {"PORT"},
		"cache.ttl":      {"CACHE_TTL"},
		"cache.size":     {"CACHE_SIZE"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	ttl, err := ParseCacheTTL(v.GetString("cache.ttl"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Jira: JiraConfig{
			URL:      strings.TrimRight(v.GetString("jira.url"), "/"),
			Email:    v.GetString("jira.email"),
			APIToken: v.GetString("jira.api_token"),
		},
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
		},
		Server: ServerConfig{
			Port: v.GetString("server.port"),
		},
		Cache: CacheConfig{
			TTL:  ttl,
			Size: v.GetInt("cache.size"),
		},
	}

	if config.GitHub.Domain == "" {
		config.GitHub.Domain = defaultGitHubDomain
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseCacheTTL reads a cache window length. A bare integer counts seconds;
// anything else must be a Go duration such as "90s" or "5m".
func ParseCacheTTL(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	ttl, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid CACHE_TTL %q: use seconds or a duration like 5m", value)
	}
	return ttl, nil
}

// validateConfig rejects values that cannot be used even when JIRA is not needed.
func validateConfig(config *Config) error {
	if config.Cache.TTL < MinCacheTTL {
		return fmt.Errorf("CACHE_TTL must be at least %s, got %s", MinCacheTTL, config.Cache.TTL)
	}
	if config.Cache.Size <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive, got %d", config.Cache.Size)
	}
	return nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config JiraConfig) error {
	var missingVars []string

	if config.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Email == "" {
		missingVars = append(missingVars, "JIRA_EMAIL")
	}
	if config.APIToken == "" {
		missingVars = append(missingVars, "JIRA_API_TOKEN")
	}

	if len(missingVars) > 0 {
		return &ConfigurationError{Missing: missingVars}
	}

	return nil
}
