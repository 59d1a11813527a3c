package module

import (
	"time"

	"preloadassist/internal/platform/config"
	gsvc "preloadassist/internal/services/generate/service"
)

// Options controls generation runs
type Options struct {
	SiteURL string
	MaxURLs int
	LockKey int64
	Timeout time.Duration
	History int // in-memory history size when ClickHouse is off
}

// FromConfig reads CORE_SITE_URL and CORE_GENERATE_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	gc := cfg.Prefix("CORE_GENERATE_")
	return Options{
		SiteURL: cfg.Prefix("CORE_").MayURL("SITE_URL", ""),
		MaxURLs: gc.MayInt("MAX_URLS", 10000),
		LockKey: gc.MayInt64("LOCK_KEY", gsvc.DefaultLockKey),
		Timeout: gc.MayDuration("TIMEOUT", 10*time.Minute),
		History: gc.MayInt("HISTORY", 100),
	}
}
