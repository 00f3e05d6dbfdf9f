// Package reqctx carries per-request settings through context.Context.
package reqctx

import (
	"context"
	"time"
)

type timezoneKey struct{}

// WithTimezone returns ctx carrying loc. A nil loc leaves ctx unchanged.
func WithTimezone(ctx context.Context, loc *time.Location) context.Context {
	if loc == nil {
		return ctx
	}
	return context.WithValue(ctx, timezoneKey{}, loc)
}

// Timezone returns the request timezone, or UTC when none is set.
func Timezone(ctx context.Context) *time.Location {
	if loc, ok := ctx.Value(timezoneKey{}).(*time.Location); ok {
		return loc
	}
	return time.UTC
}

// LoadTimezone resolves name, falling back to fallback when name is empty or unknown.
func LoadTimezone(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
