package backend

import (
	"fmt"

	"possales/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:        backendType,
		BaseURL:     appConfig.APIBaseURL,
		PageLimit:   appConfig.PageLimit,
		HTTPTimeout: appConfig.HTTPTimeout,
		TokenFile:   appConfig.TokenFile,
		FixturesDir: appConfig.FixturesDir,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case APIBackend:
		if c.TokenFile == "" {
			return fmt.Errorf("token file is required for api backend")
		}
	case MemoryBackend:
		if c.FixturesDir == "" {
			return fmt.Errorf("fixtures directory is required for memory backend")
		}
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{APIBackend, MemoryBackend}
}
