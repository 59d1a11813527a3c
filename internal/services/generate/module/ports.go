package module

import (
	catdom "preloadassist/internal/services/catalog/domain"
	fdom "preloadassist/internal/services/files/domain"
	"preloadassist/internal/services/generate/domain"
)

// Requires declares the ports this module consumes, injected with modkit.WithPorts
type Requires struct {
	Sources  catdom.Sources
	Sink     fdom.Sink
	Registry fdom.RegistryPort
}

// Ports are what the generate module exposes to other modules
type Ports struct {
	Generator domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
