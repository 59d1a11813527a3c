package module

import (
	"preloadassist/internal/platform/config"
)

// Options controls catalog behavior
type Options struct {
	SiteURL string // storefront base for categories without a canonical URL
}

// FromConfig reads CORE_SITE_URL from process config/env
func FromConfig(cfg config.Conf) Options {
	return Options{
		SiteURL: cfg.Prefix("CORE_").MayURL("SITE_URL", ""),
	}
}
