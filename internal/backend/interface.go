package backend

import (
	"context"
	"time"

	"possales/internal/loyverse"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the page source and optional cleanup function
type Result struct {
	Fetcher loyverse.PageFetcher
	Cleanup CleanupFunc
}

// Factory creates page sources based on configuration
type Factory interface {
	CreateFetcher(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for page source creation
type Config struct {
	Type BackendType

	// API specific
	BaseURL     string
	PageLimit   int
	HTTPTimeout time.Duration
	TokenFile   string

	// Memory specific
	FixturesDir string
}

// BackendType represents the type of backend
type BackendType string

const (
	APIBackend    BackendType = "api"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case APIBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
