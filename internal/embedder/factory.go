package embedder

import (
	"log"
	"os"
	"strings"
)

// Environment variables consulted at startup
const (
	EnvProvider     = "EMBEDDING_PROVIDER"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	APIKey    string
	CacheSize int
}

// NewFromEnv creates an embedder from EMBEDDING_PROVIDER. Recognized values
// are "openai" and "local"; anything else (including unset) falls back to
// the local provider so the service always starts.
func NewFromEnv() (Embedder, error) {
	provider := strings.ToLower(os.Getenv(EnvProvider))

	cache := NewCache(10000) // Default cache size

	switch provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(os.Getenv(EnvOpenAIAPIKey), cache)
	case ProviderLocal, "":
		return NewLocalProvider(cache)
	default:
		log.Printf("unrecognized %s=%q, using local embeddings", EnvProvider, provider)
		return NewLocalProvider(cache)
	}
}

// New creates an embedder with explicit configuration. Unlike NewFromEnv,
// an unknown provider here falls back to local silently; callers pass
// values they already validated.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache)
	default:
		return NewLocalProvider(cache)
	}
}

// DetectProvider returns the provider name NewFromEnv would choose
func DetectProvider() string {
	provider := strings.ToLower(os.Getenv(EnvProvider))
	if provider == ProviderOpenAI {
		return ProviderOpenAI
	}
	return ProviderLocal
}
