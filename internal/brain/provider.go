package brain

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by providers that lack credentials.
var ErrNotConfigured = errors.New("provider not configured")

// Provider is the interface for grounded search providers
type Provider interface {
	// Name returns the provider name (e.g., "gemini", "news")
	Name() string

	// Available returns true if the provider is configured and ready
	Available() bool

	// Search runs a grounded search and returns the answer with its sources
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
}

// SearchRequest is a search prompt sent to a provider
type SearchRequest struct {
	Prompt     string   // Full instruction text for LLM-backed providers
	Query      string   // Raw topic query for providers that search directly
	Language   string   // "en" or "zh"
	Exclusions []string // Source names to leave out
	MaxTokens  int
}

// Source is one grounding reference returned with an answer
type Source struct {
	Title string
	URL   string
}

// SearchResponse is the provider's answer
type SearchResponse struct {
	Content string
	Model   string
	Sources []Source
}

// APIError is a non-200 response from a provider's HTTP API
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// ProviderManager manages multiple providers with fallback
type ProviderManager struct {
	providers []Provider
	preferred string // Preferred provider name
}

// NewProviderManager creates a new provider manager
func NewProviderManager() *ProviderManager {
	return &ProviderManager{
		providers: make([]Provider, 0),
	}
}

// AddProvider adds a provider to the manager
func (pm *ProviderManager) AddProvider(p Provider) {
	pm.providers = append(pm.providers, p)
}

// SetPreferred sets the preferred provider by name
func (pm *ProviderManager) SetPreferred(name string) {
	pm.preferred = name
}

// GetAvailable returns the first available provider, preferring the preferred one
func (pm *ProviderManager) GetAvailable() Provider {
	if pm.preferred != "" {
		for _, p := range pm.providers {
			if p.Name() == pm.preferred && p.Available() {
				return p
			}
		}
	}

	for _, p := range pm.providers {
		if p.Available() {
			return p
		}
	}

	return nil
}

// GetByName returns an available provider by name
func (pm *ProviderManager) GetByName(name string) Provider {
	for _, p := range pm.providers {
		if p.Name() == name && p.Available() {
			return p
		}
	}
	return nil
}

// ListAvailable returns names of all available providers
func (pm *ProviderManager) ListAvailable() []string {
	var names []string
	for _, p := range pm.providers {
		if p.Available() {
			names = append(names, p.Name())
		}
	}
	return names
}
