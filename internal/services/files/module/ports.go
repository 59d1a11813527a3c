package module

import (
	"context"

	"preloadassist/internal/services/files/domain"
)

// Ports are what the files module exposes to other modules
type Ports struct {
	Sink     domain.Sink
	Registry domain.RegistryPort
	Reader   domain.ReaderPort
	// Storage is the artifact directory, pinged by readiness checks
	Storage interface{ Ping(context.Context) error }
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
