package store

import (
	"time"

	"preloadassist/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot ping retries
	ConnectRetries int           // attempts, default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
// ClientName and ClientTag are reported to the server as client info
// Optional turns a failed connect into a warning and a nil Store.CH
type CHConfig struct {
	Enabled    bool
	Optional   bool
	URL        string
	ClientName string
	ClientTag  string
}

// FromConf reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* from root
// Postgres is required; ClickHouse is enabled only when its DBURL is set
func FromConf(root config.Conf, tag string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	chURL := ch.MayString("DBURL", "")
	return Config{
		AppName: "preload-assist",
		PG: PGConfig{
			Enabled:     true,
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		},
		CH: CHConfig{
			Enabled:    chURL != "",
			Optional:   ch.MayBool("OPTIONAL", true),
			URL:        chURL,
			ClientName: "preload-assist",
			ClientTag:  tag,
		},
	}
}
