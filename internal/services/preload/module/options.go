package module

import (
	"time"

	"preloadassist/internal/platform/config"
)

// Options controls the preload integration
type Options struct {
	Enabled        bool // integration default until the flag is saved
	WebhookURL     string
	WebhookToken   string
	WebhookTimeout time.Duration
}

// FromConfig reads CORE_PRELOAD_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	pc := cfg.Prefix("CORE_PRELOAD_")
	return Options{
		Enabled:        pc.MayBool("ENABLED", false),
		WebhookURL:     pc.MayURL("WEBHOOK_URL", ""),
		WebhookToken:   pc.MayString("WEBHOOK_TOKEN", ""),
		WebhookTimeout: pc.MayDuration("WEBHOOK_TIMEOUT", 30*time.Second),
	}
}
