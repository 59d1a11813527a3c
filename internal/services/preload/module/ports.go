package module

import (
	catdom "preloadassist/internal/services/catalog/domain"
	fdom "preloadassist/internal/services/files/domain"
	"preloadassist/internal/services/preload/domain"
)

// Requires declares the ports this module consumes, injected with modkit.WithPorts
type Requires struct {
	Reader   fdom.ReaderPort
	Settings catdom.SettingsPort
}

// Ports are what the preload module exposes to other modules
type Ports struct {
	Publisher domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
