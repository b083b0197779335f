package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL      = "https://api.siliconflow.cn/v1"
	DefaultModel        = "deepseek-chat"
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 1000
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultBrowserWait  = 30
)

// ErrMissingAPIKey is returned when no SiliconFlow API key was configured
var ErrMissingAPIKey = errors.New("SILICONFLOW_API_KEY is not set")

// Config represents the configuration for eino-browser-demo.
// A loaded Config is treated as read-only and handed to constructors explicitly.
type Config struct {
	LLM           LLM                  `yaml:"llm,omitempty"`
	Browser       Browser              `yaml:"browser,omitempty"`
	Documents     Documents            `yaml:"documents,omitempty"`
	PlaywrightMCP MCPServer            `yaml:"playwright_mcp,omitempty"`
	Agents        map[string]Agent     `yaml:"agents,omitempty"`
	Providers     map[string]Provider  `yaml:"providers,omitempty"`
	Models        map[string]Model     `yaml:"models,omitempty"`
	MCPServers    map[string]MCPServer `yaml:"mcp_servers,omitempty"`
	Tools         map[string]Tool      `yaml:"tools,omitempty"`
	Settings      Settings             `yaml:"settings,omitempty"`
}

// LLM is the SiliconFlow chat endpoint used by every demo
type LLM struct {
	APIKey      string  `yaml:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
}

// Browser configures the local chromedp toolkit
type Browser struct {
	Headless bool `yaml:"headless"`
	// Timeout is the per-operation timeout in seconds
	Timeout int `yaml:"timeout,omitempty"`
}

// Documents configures chunking for the document QA demo
type Documents struct {
	ChunkSize    int `yaml:"chunk_size,omitempty"`
	ChunkOverlap int `yaml:"chunk_overlap,omitempty"`
}

// Agent represents AI agent configuration
type Agent struct {
	System     string   `yaml:"system"`
	Model      string   `yaml:"model"`
	Tools      []string `yaml:"tools,omitempty"`
	MCPServers []string `yaml:"mcp_servers,omitempty"`
}

// Provider represents AI provider configuration
type Provider struct {
	Type    string `yaml:"type"`
	BaseURL string `yaml:"base_url,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
}

// Model represents AI model configuration
type Model struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	TopP        float64 `yaml:"top_p,omitempty"`
	TopK        int     `yaml:"top_k,omitempty"`
}

// MCPServer represents MCP server configuration
type MCPServer struct {
	Type string `yaml:"type"`
	// for stdio
	Cmd  string            `yaml:"cmd,omitempty"`
	Args []string          `yaml:"args,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
	// for sse & streamable-http
	URL     string            `yaml:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Tool represents tool configuration
type Tool struct {
	Type        string           `yaml:"type"`
	Description string           `yaml:"description,omitempty"`
	Config      map[string]Value `yaml:"config,omitempty"`
	Params      []ToolParam      `yaml:"params,omitempty"`
}

// ToolParam represents tool parameter configuration
type ToolParam struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
}

// Settings global settings
type Settings struct {
	Langfuse *langfuse.Config `yaml:"langfuse,omitempty"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LLM: LLM{
			BaseURL:     DefaultBaseURL,
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Browser: Browser{
			Headless: true,
			Timeout:  DefaultBrowserWait,
		},
		Documents: Documents{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		PlaywrightMCP: MCPServer{
			Type: "stdio",
			Cmd:  "npx",
			Args: []string{"@executeautomation/playwright-mcp-server"},
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and the process environment, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse configuration file: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// the file is optional, environment variables are enough
		default:
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings every chat endpoint call depends on
func (c *Config) Validate() error {
	return c.LLM.Validate()
}

// Validate reports a missing API key or endpoint
func (l LLM) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("please set it in the environment or .env: %w", ErrMissingAPIKey)
	}
	if strings.TrimSpace(l.BaseURL) == "" {
		return errors.New("llm base_url is empty")
	}
	if l.MaxTokens < 0 {
		return fmt.Errorf("llm max_tokens must not be negative, got %d", l.MaxTokens)
	}
	return nil
}
