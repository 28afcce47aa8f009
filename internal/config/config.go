package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	GitHub   GitHubConfig   `yaml:"github"`
	Store    StoreConfig    `yaml:"store"`
	Notify   NotifyConfig   `yaml:"notify"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Topics   []string       `yaml:"topics"`
}

// GitHubConfig holds GitHub authentication settings.
type GitHubConfig struct {
	Auth           string `yaml:"auth"`
	Token          string `yaml:"token"`
	AppID          string `yaml:"app_id"`
	InstallationID string `yaml:"installation_id"`
	PrivateKeyPath string `yaml:"private_key_path"`
	PrivateKey     string `yaml:"private_key"`
}

// StoreConfig holds storage settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig holds notification webhook URLs.
type NotifyConfig struct {
	SlackWebhook   string `yaml:"slack_webhook"`
	DiscordWebhook string `yaml:"discord_webhook"`
}

// DefaultsConfig holds default operational parameters.
type DefaultsConfig struct {
	PollIntervalRaw string `yaml:"poll_interval"`
	AdvisoryLimit   int    `yaml:"advisory_limit"`
}

// PollInterval returns the parsed poll interval duration.
func (d DefaultsConfig) PollInterval() (time.Duration, error) {
	if d.PollIntervalRaw == "" {
		return 30 * time.Minute, nil
	}
	return time.ParseDuration(d.PollIntervalRaw)
}

// envVarPattern matches ${VAR} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} placeholders with environment variable values.
// Returns an error if any referenced variable is not set.
func expandEnvVars(data []byte) ([]byte, error) {
	var missing []string

	result := envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		val, ok := os.LookupEnv(string(varName))
		if !ok {
			missing = append(missing, string(varName))
			return match
		}
		return []byte(val)
	})

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// Load reads and parses a config file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses config from raw YAML bytes, expanding env vars and validating.
func Parse(data []byte) (*Config, error) {
	expanded, err := expandEnvVars(data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.GitHub.Auth == "" {
		cfg.GitHub.Auth = "token"
	}
	if cfg.Defaults.PollIntervalRaw == "" {
		cfg.Defaults.PollIntervalRaw = "30m"
	}
	if cfg.Defaults.AdvisoryLimit == 0 {
		cfg.Defaults.AdvisoryLimit = 10
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "~/.fleetwatch/fleetwatch.db"
	}
}

func validate(cfg *Config) error {
	switch cfg.GitHub.Auth {
	case "token", "app":
	default:
		return fmt.Errorf("unsupported github auth type: %q", cfg.GitHub.Auth)
	}

	if cfg.GitHub.Auth == "app" {
		if cfg.GitHub.AppID == "" || cfg.GitHub.InstallationID == "" {
			return fmt.Errorf("app auth requires app_id and installation_id")
		}
	}

	if _, err := time.ParseDuration(cfg.Defaults.PollIntervalRaw); err != nil {
		return fmt.Errorf("invalid poll_interval %q: %w", cfg.Defaults.PollIntervalRaw, err)
	}

	if cfg.Defaults.AdvisoryLimit < 0 {
		return fmt.Errorf("advisory_limit must be positive, got %d", cfg.Defaults.AdvisoryLimit)
	}

	for _, topic := range cfg.Topics {
		if strings.TrimSpace(topic) == "" {
			return fmt.Errorf("topics must not contain empty entries")
		}
	}

	return nil
}
