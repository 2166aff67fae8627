package nutrition

import (
	"context"
	"log/slog"
	"strings"
)

// Remote looks up per-100g nutrition by food name. A nil Record with a nil
// error means no matching food.
type Remote interface {
	Lookup(ctx context.Context, food string) (Record, error)
}

// Resolver resolves nutrition from a local table with remote fallback.
type Resolver struct {
	table  *Table
	remote Remote
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil remote disables the fallback.
func NewResolver(table *Table, remote Remote, logger *slog.Logger) *Resolver {
	return &Resolver{
		table:  table,
		remote: remote,
		logger: logger.With("system", "nutrition"),
	}
}

// Resolve returns per-100g nutrition for label, or nil when neither the local
// table nor the remote source has a usable record. The local table is keyed by
// the normalized label; the remote source is queried with the original label
// when the local entry is absent or reports zero calories.
func (r *Resolver) Resolve(ctx context.Context, label string) Record {
	if strings.TrimSpace(label) == "" {
		return nil
	}

	if rec, ok := r.table.Lookup(label); ok {
		if cal, ok := rec.Calories(); ok && cal != 0 {
			r.logger.DebugContext(ctx, "nutrition resolved locally", "label", label)
			return rec
		}
		r.logger.InfoContext(ctx, "local nutrition has no calories, querying remote", "label", label)
	}

	if r.remote == nil {
		r.logger.InfoContext(ctx, "nutrition lookup miss", "label", label, "remote", false)
		return nil
	}

	rec, err := r.remote.Lookup(ctx, label)
	if err != nil {
		r.logger.WarnContext(ctx, "remote nutrition lookup failed", "label", label, "error", err)
		return nil
	}
	if len(rec) == 0 {
		r.logger.InfoContext(ctx, "nutrition lookup miss", "label", label, "remote", true)
		return nil
	}

	return rec
}
