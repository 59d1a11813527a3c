// Package domain holds the preload integration types
package domain

import (
	"context"

	fdom "preloadassist/internal/services/files/domain"
)

// SettingIntegrationEnabled persists whether the selected file is served to the cache warmer
const SettingIntegrationEnabled = "preload_integration_enabled"

// Status reports the integration state
type Status struct {
	IntegrationEnabled bool       `json:"integration_enabled"`
	WarmerConfigured   bool       `json:"warmer_configured"`
	FileSelected       bool       `json:"file_selected"`
	FileExists         bool       `json:"file_exists"`
	File               *fdom.File `json:"file,omitempty"`
}

// IntegrationInput toggles the integration
type IntegrationInput struct {
	Enabled bool `json:"enabled" example:"true"`
}

// TriggerResult reports a webhook push
type TriggerResult struct {
	FileID   int64  `json:"file_id"`
	FileName string `json:"file_name"`
	URLs     int    `json:"urls"`
}

// Warmer pushes a URL list to a cache warmer
type Warmer interface {
	Configured() bool
	Warm(ctx context.Context, urls []string) error
}

// ServicePort is the preload integration surface
type ServicePort interface {
	Publish(ctx context.Context, existing []string) ([]string, error)
	Status(ctx context.Context) (Status, error)
	SetIntegrationEnabled(ctx context.Context, enabled bool) (Status, error)
	Trigger(ctx context.Context) (TriggerResult, error)
}
