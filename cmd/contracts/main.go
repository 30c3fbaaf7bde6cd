package main

import (
	"flag"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/nagendra-sahaj/contracts-rag/internal/config"
	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
	"github.com/nagendra-sahaj/contracts-rag/internal/embedding/hash"
	"github.com/nagendra-sahaj/contracts-rag/internal/embedding/openai"
	"github.com/nagendra-sahaj/contracts-rag/internal/ragchain"
	"github.com/nagendra-sahaj/contracts-rag/internal/registry"
	"github.com/nagendra-sahaj/contracts-rag/internal/retrieval"
	"github.com/nagendra-sahaj/contracts-rag/internal/stats"
	"github.com/nagendra-sahaj/contracts-rag/internal/tui"
	"github.com/nagendra-sahaj/contracts-rag/internal/vectorstore/chroma"
	"github.com/nagendra-sahaj/contracts-rag/internal/vectorstore/local"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/contracts-rag/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	config.ApplyEnv(cfg)

	emb, embName := buildEmbedder(cfg)

	var store domain.Store
	switch cfg.Store.Type {
	case "local", "":
		store, err = local.Open(cfg.Store.Path, emb)
	case "chroma":
		store, err = chroma.Open(chroma.Config{
			URL:     cfg.Store.URL,
			Timeout: time.Duration(cfg.Store.TimeoutSecs) * time.Second,
		}, emb)
	default:
		log.Fatalf("unknown store type: %s", cfg.Store.Type)
	}
	if err != nil {
		log.Fatalf("failed to open vector store: %v", err)
	}

	reg := registry.New()
	for _, c := range cfg.Collections {
		reg.Register(c.Name, c.Document)
	}

	retriever := retrieval.New()
	m := tui.New(reg, store, retriever, stats.New(), ragchain.NewBuilder(retriever), tui.Options{
		PersistPath: persistPath(cfg),
		EmbedModel:  embName,
		TopK:        cfg.TopK,
		GroqAPIKey:  os.Getenv(cfg.Groq.APIKeyEnv),
		GroqModel:   cfg.Groq.Model,
	})
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, string) {
	switch cfg.Embedder.Type {
	case "hash", "":
		e := hash.New(cfg.Embedder.Dimension)
		return e, "hash"
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL: oc.BaseURL,
			APIKey:  os.Getenv(oc.APIKeyEnv),
			Model:   oc.Model,
			Timeout: time.Duration(oc.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		return client, oc.Model
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
		return nil, ""
	}
}

func persistPath(cfg *config.AppConfig) string {
	if cfg.Store.Type == "chroma" {
		return ""
	}
	return cfg.Store.Path
}
