package module

import (
	"preloadassist/internal/services/catalog/domain"
)

// Ports are what the catalog exposes to other modules
type Ports struct {
	Sources  domain.Sources
	Settings domain.SettingsPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
