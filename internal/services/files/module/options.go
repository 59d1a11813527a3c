package module

import (
	"time"

	"preloadassist/internal/platform/config"
)

// Options controls artifact storage and retention
type Options struct {
	Dir           string
	Keep          int
	PreviewLimit  int
	PublicBaseURL string
	CleanupEvery  time.Duration
}

// FromConfig reads CORE_FILES_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	fc := cfg.Prefix("CORE_FILES_")
	return Options{
		Dir:           fc.MayString("DIR", "./data/preload-assist"),
		Keep:          fc.MayInt("KEEP", 5),
		PreviewLimit:  fc.MayInt("PREVIEW_LIMIT", 100),
		PublicBaseURL: fc.MayURL("PUBLIC_BASE_URL", ""),
		CleanupEvery:  fc.MayDuration("CLEANUP_EVERY", 24*time.Hour),
	}
}
