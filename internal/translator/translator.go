// Package translator implements the translation provider adapters.
package translator

import (
	"context"
	"fmt"
	"sync"

	"lingo-relay/internal/httpclient"
	"lingo-relay/internal/types"
)

// Outcome classifies the result of a translation attempt.
type Outcome string

const (
	OutcomeSuccess             Outcome = "success"
	OutcomeTimeout             Outcome = "timeout"
	OutcomeNetworkError        Outcome = "network_error"
	OutcomeRateLimited         Outcome = "rate_limited"
	OutcomeParseError          Outcome = "parse_error"
	OutcomeEmptyResponse       Outcome = "empty_response"
	OutcomeInvalidResponse     Outcome = "invalid_response"
	OutcomeUnsupportedLanguage Outcome = "unsupported_language"
	OutcomeNoAPIKey            Outcome = "no_api_key"
)

// OutcomeHTTP returns the outcome for an unexpected HTTP status code.
func OutcomeHTTP(status int) Outcome {
	return Outcome(fmt.Sprintf("http_%d", status))
}

// Translator is the interface implemented by provider adapters.
// Translate never returns an error; failures are reported as outcomes so
// the dispatcher can decide on fallback.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, targetLang string) (string, Outcome)
}

// translatorConstructor defines the function signature for creating an adapter.
type translatorConstructor func(f *Factory) (Translator, error)

var translatorRegistry = make(map[string]translatorConstructor)

// Register adds a new adapter constructor to the registry.
func Register(name string, constructor translatorConstructor) {
	if _, exists := translatorRegistry[name]; exists {
		panic(fmt.Sprintf("translator '%s' is already registered", name))
	}
	translatorRegistry[name] = constructor
}

// Providers returns the names of all registered adapters.
func Providers() []string {
	names := make([]string, 0, len(translatorRegistry))
	for name := range translatorRegistry {
		names = append(names, name)
	}
	return names
}

// Factory creates and caches provider adapters.
type Factory struct {
	configManager types.ConfigManager
	clientManager *httpclient.Manager

	cache     map[string]Translator
	cacheLock sync.Mutex
}

// NewFactory creates a new adapter factory.
func NewFactory(configManager types.ConfigManager, clientManager *httpclient.Manager) *Factory {
	return &Factory{
		configManager: configManager,
		clientManager: clientManager,
		cache:         make(map[string]Translator),
	}
}

// Get returns the adapter for the given provider name, constructing it once.
func (f *Factory) Get(name string) (Translator, error) {
	f.cacheLock.Lock()
	defer f.cacheLock.Unlock()

	if t, ok := f.cache[name]; ok {
		return t, nil
	}

	constructor, ok := translatorRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown translator: %s", name)
	}

	t, err := constructor(f)
	if err != nil {
		return nil, err
	}
	f.cache[name] = t
	return t, nil
}
