package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"preloadassist/internal/platform/config"
	"preloadassist/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	CORSOrigins []string
	Timeout     time.Duration // 0 disables
	MaxInFlight int           // 0 disables throttling
	SlowRequest time.Duration // access log warns at or above this
}

// StackFromConfig reads CORS_ORIGINS, TIMEOUT, MAX_IN_FLIGHT and SLOW_REQUEST from cfg
func StackFromConfig(cfg config.Conf) StackOptions {
	return StackOptions{
		CORSOrigins: cfg.MayCSV("CORS_ORIGINS", nil),
		Timeout:     cfg.MayDuration("TIMEOUT", 30*time.Second),
		MaxInFlight: cfg.MayInt("MAX_IN_FLIGHT", 0),
		SlowRequest: cfg.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
	}
}

// CommonStack is the middleware every API route runs through, outermost first
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	mw := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(o.SlowRequest),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
	}
	if o.MaxInFlight > 0 {
		mw = append(mw, middleware.Throttle(o.MaxInFlight, o.MaxInFlight*2, 10*time.Second))
	}
	if o.Timeout > 0 {
		mw = append(mw, middleware.Timeout(o.Timeout))
	}
	return mw
}

// MountAPIV1 scopes mount under /api/v1 with mw applied
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/v1", func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}
