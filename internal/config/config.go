package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// StoreConfig selects and configures the persisted vector store backend.
type StoreConfig struct {
	Type        string `yaml:"type"`
	Path        string `yaml:"path,omitempty"`
	URL         string `yaml:"url,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension,omitempty"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// GroqConfig configures the hosted language model used by the RAG chain.
// The API key itself is never stored in the file, only the env var name.
type GroqConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// CollectionConfig is one logical collection registration.
type CollectionConfig struct {
	Name     string `yaml:"name"`
	Document string `yaml:"document"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Store       StoreConfig        `yaml:"store"`
	Embedder    EmbedderConfig     `yaml:"embedder"`
	TopK        int                `yaml:"top_k"`
	Groq        GroqConfig         `yaml:"groq"`
	Collections []CollectionConfig `yaml:"collections"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/contracts-rag/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overlays the environment variables the original deployment used
// on top of the loaded file: PERSIST_DIR, MODEL_NAME, TOP_K, GROQ_MODEL_NAME.
func ApplyEnv(cfg *AppConfig) {
	if v := os.Getenv("PERSIST_DIR"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" && cfg.Embedder.OpenAI != nil {
		cfg.Embedder.OpenAI.Model = v
	}
	if v := os.Getenv("TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			cfg.TopK = k
		}
	}
	if v := os.Getenv("GROQ_MODEL_NAME"); v != "" {
		cfg.Groq.Model = v
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "contracts-rag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Store:    StoreConfig{Type: "local", Path: "./chroma_db"},
		Embedder: EmbedderConfig{Type: "hash"},
		TopK:     5,
		Groq:     GroqConfig{APIKeyEnv: "GROQ_API_KEY", Model: "llama-3.1-8b-instant"},
		Collections: []CollectionConfig{
			{Name: "Sample", Document: "sample.pdf"},
			{Name: "Construction_Agreement", Document: "Construction_Agreement.pdf"},
			{Name: "Construction_Contract", Document: "Construction_Contract-for-Major-Works.pdf"},
		},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Store.Type == "" {
		cfg.Store.Type = "local"
	}
	if cfg.Store.Type == "local" && cfg.Store.Path == "" {
		cfg.Store.Path = "./chroma_db"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hash"
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.Groq.APIKeyEnv == "" {
		cfg.Groq.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = "llama-3.1-8b-instant"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
}
