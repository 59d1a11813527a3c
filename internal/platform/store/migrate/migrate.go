// Package migrate applies the embedded postgres schema
// Files run in name order inside one transaction; every statement is idempotent
package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"preloadassist/internal/platform/store"
)

//go:embed sql/*.sql
var files embed.FS

// lockKey serializes concurrent migrators across processes
const lockKey int64 = 0x70726d6967 // "prmig"

// Files returns the embedded migration names in apply order
func Files() []string {
	names, _ := fs.Glob(files, "sql/*.sql")
	sort.Strings(names)
	return names
}

// Apply runs every migration file against tx
func Apply(ctx context.Context, tx store.TxRunner) error {
	return tx.Tx(ctx, func(q store.RowQuerier) error {
		if _, err := q.Exec(ctx, `select pg_advisory_xact_lock($1)`, lockKey); err != nil {
			return fmt.Errorf("migrate lock: %w", err)
		}
		for _, name := range Files() {
			body, err := files.ReadFile(name)
			if err != nil {
				return fmt.Errorf("migrate read %s: %w", name, err)
			}
			if _, err := q.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("migrate %s: %w", name, err)
			}
		}
		return nil
	})
}
