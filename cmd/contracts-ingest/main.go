package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/nagendra-sahaj/contracts-rag/internal/chunker"
	"github.com/nagendra-sahaj/contracts-rag/internal/config"
	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
	"github.com/nagendra-sahaj/contracts-rag/internal/embedding/hash"
	"github.com/nagendra-sahaj/contracts-rag/internal/embedding/openai"
	"github.com/nagendra-sahaj/contracts-rag/internal/ingest"
	"github.com/nagendra-sahaj/contracts-rag/internal/vectorstore/local"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to config YAML")
	collection := flag.String("collection", "", "Target collection name")
	sentences := flag.Int("sentences", 5, "Sentences per chunk")
	overlap := flag.Int("overlap", 1, "Overlapping sentences between chunks")
	flag.Parse()
	pdfs := flag.Args()
	if *collection == "" || len(pdfs) == 0 {
		fmt.Println("Usage: contracts-ingest [--config=config.yaml] --collection=Name file1.pdf [file2.pdf ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if *cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(*cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	config.ApplyEnv(cfg)

	if cfg.Store.Type != "" && cfg.Store.Type != "local" {
		log.Fatalf("ingestion writes to the local store only; configured store type is %q", cfg.Store.Type)
	}
	// Ingestion may create the persist root on first run.
	if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
		log.Fatalf("failed to create persist directory: %v", err)
	}

	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "hash", "":
		emb = hash.New(cfg.Embedder.Dimension)
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			log.Fatalf("openai embedder config missing")
		}
		emb, err = openai.NewClient(openai.Config{
			BaseURL: oc.BaseURL,
			APIKey:  os.Getenv(oc.APIKeyEnv),
			Model:   oc.Model,
			Timeout: time.Duration(oc.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	store, err := local.Open(cfg.Store.Path, emb)
	if err != nil {
		log.Fatalf("failed to open vector store: %v", err)
	}

	pipeline := ingest.New(chunker.NewSentenceChunker(*sentences, *overlap), emb, store, 3)
	ctx := context.Background()
	for _, path := range pdfs {
		report, err := pipeline.IngestPDF(ctx, *collection, path)
		if err != nil {
			log.Fatalf("ingest failed: %v", err)
		}
		fmt.Printf("Ingested %s into %q: %d chunks\n", report.Source, report.Collection, report.Chunks)
		if report.Summary != "" {
			fmt.Printf("Summary: %s\n", report.Summary)
		}
	}
}
