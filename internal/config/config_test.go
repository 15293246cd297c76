package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"MAX_UPLOAD_BYTES", "CHUNK_SIZE", "MAX_CHUNKS", "EMBEDDING_PROVIDER",
		"NATS_SUBJECT", "API_RATE_LIMIT_RPS", "API_BACKPRESSURE_WAIT", "RECLASSIFY_CRON",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Fatalf("expected 10MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.ChunkSize != 512 || cfg.MaxChunks != 30 {
		t.Fatalf("expected chunk defaults 512/30, got %d/%d", cfg.ChunkSize, cfg.MaxChunks)
	}
	if cfg.EmbeddingProvider != EmbeddingProviderOllama {
		t.Fatalf("expected ollama provider, got %q", cfg.EmbeddingProvider)
	}
	if cfg.NATSSubject != "documents.reclassify" {
		t.Fatalf("unexpected subject %q", cfg.NATSSubject)
	}
	if cfg.APIRateLimitRPS != 10 || cfg.APIBackpressureWait != 250*time.Millisecond {
		t.Fatalf("unexpected traffic defaults: %v %v", cfg.APIRateLimitRPS, cfg.APIBackpressureWait)
	}
	if cfg.ReclassifyCron != "" {
		t.Fatalf("expected cron disabled by default, got %q", cfg.ReclassifyCron)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("EMBEDDING_PROVIDER", "tfidf")
	t.Setenv("API_RATE_LIMIT_RPS", "0.5")
	t.Setenv("OLLAMA_TIMEOUT", "5s")
	t.Setenv("RESILIENCE_BREAKER_ENABLED", "false")
	t.Setenv("RECLASSIFY_CRON", "@daily")

	cfg := Load()
	if cfg.MaxUploadBytes != 2048 {
		t.Fatalf("expected 2048, got %d", cfg.MaxUploadBytes)
	}
	if cfg.EmbeddingProvider != EmbeddingProviderTFIDF {
		t.Fatalf("expected tfidf, got %q", cfg.EmbeddingProvider)
	}
	if cfg.APIRateLimitRPS != 0.5 {
		t.Fatalf("expected 0.5 rps, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.OllamaTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.OllamaTimeout)
	}
	if cfg.Resilience.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
	if cfg.ReclassifyCron != "@daily" {
		t.Fatalf("unexpected cron %q", cfg.ReclassifyCron)
	}
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "big")
	t.Setenv("API_BACKPRESSURE_WAIT", "soon")

	cfg := Load()
	if cfg.ChunkSize != 512 {
		t.Fatalf("expected fallback chunk size, got %d", cfg.ChunkSize)
	}
	if cfg.APIBackpressureWait != 250*time.Millisecond {
		t.Fatalf("expected fallback wait, got %v", cfg.APIBackpressureWait)
	}
}
