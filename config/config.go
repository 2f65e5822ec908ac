package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/m4xw311/picode/errors"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user and per-project configuration directory.
const DirName = ".picode"

// DefaultSystemPrompt is used when no system_prompt is configured.
const DefaultSystemPrompt = "You are a helpful coding assistant running in a terminal (picode). " +
	"You can read files, list directories, and run shell commands to help the user with their coding tasks. " +
	"Be concise in your responses. When asked to perform an action, use the available tools."

// DefaultCommandTimeout bounds a single run_command invocation.
const DefaultCommandTimeout = 30 * time.Second

type FilesystemAccess struct {
	Hidden   []string `yaml:"hidden"`
	ReadOnly []string `yaml:"read_only"`
}

type MCPServer struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type Toolset struct {
	Name  string   `yaml:"name"`
	Tools []string `yaml:"tools"`
}

type Config struct {
	LLMClient             string           `yaml:"llm"`
	Model                 string           `yaml:"model"`
	BaseURL               string           `yaml:"base_url"`
	SystemPrompt          string           `yaml:"system_prompt"`
	Toolsets              []Toolset        `yaml:"toolsets"`
	AdditionalMCPServers  []MCPServer      `yaml:"additional_mcp_servers"`
	AllowedCommands       []string         `yaml:"allowed_commands"`
	FilesystemAccess      FilesystemAccess `yaml:"filesystem_access"`
	CommandTimeoutSeconds int              `yaml:"command_timeout_seconds"`
	LogFile               string           `yaml:"log_file"`
}

// LoadConfig loads configuration from the user's home directory and the current
// working directory, with the latter taking precedence. A .env file in the
// working directory is loaded into the environment first; variables that are
// already set win.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	home, _ := os.UserHomeDir()

	envPath := filepath.Join(wd, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, errors.Wrapf(err, "error loading %s", envPath)
		}
	}
	return Load(home, wd)
}

// Load merges <home>/.picode/config.yaml and <wd>/.picode/config.yaml over the
// defaults. Either directory may be empty to skip it.
func Load(home, wd string) (*Config, error) {
	cfg := &Config{}

	// The config directory itself is never visible to tools.
	cfg.FilesystemAccess.Hidden = append(cfg.FilesystemAccess.Hidden, DirName, DirName+"/**")

	if home != "" {
		userConfigPath := filepath.Join(home, DirName, "config.yaml")
		if _, err := os.Stat(userConfigPath); err == nil {
			if err := loadFromFile(userConfigPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	if wd != "" {
		projectConfigPath := filepath.Join(wd, DirName, "config.yaml")
		if _, err := os.Stat(projectConfigPath); err == nil {
			if err := loadFromFile(projectConfigPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading project config")
			}
		}
	}

	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.LogFile == "" && home != "" {
		cfg.LogFile = filepath.Join(home, DirName, "logs", "picode.log")
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Fields present in the YAML replace what an earlier file set.
	return yaml.Unmarshal(data, cfg)
}

// CommandTimeout returns the configured run_command timeout.
func (c *Config) CommandTimeout() time.Duration {
	if c.CommandTimeoutSeconds <= 0 {
		return DefaultCommandTimeout
	}
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// GetToolset finds a toolset by name, falling back to "default" when the
// named one is not found or the name is empty. A nil toolset with a nil error
// means no toolset is configured and every tool is enabled.
func (c *Config) GetToolset(name string) (*Toolset, error) {
	if name == "" {
		name = "default"
	}
	for i := range c.Toolsets {
		if c.Toolsets[i].Name == name {
			return &c.Toolsets[i], nil
		}
	}
	if name != "default" {
		return c.GetToolset("default")
	}
	if len(c.Toolsets) > 0 {
		return nil, errors.New("toolsets are configured but 'default' is missing")
	}
	return nil, nil
}

// APIKeyEnv names the environment variable that holds the key for a provider.
func APIKeyEnv(provider string) string {
	switch provider {
	case "openai", "":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// NeedsAPIKey reports whether a provider refuses to start without a key.
// Bedrock uses the AWS credential chain and ollama runs unauthenticated.
func NeedsAPIKey(provider string) bool {
	return APIKeyEnv(provider) != ""
}
