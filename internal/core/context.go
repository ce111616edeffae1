package core

import "context"

type contextKey string

const ctxKeyOrigin contextKey = "spawn_origin"

// Origin describes who asked for a spawn. It is stored on history entries.
type Origin struct {
	Via       string `json:"via"` // "http", "cli" or "tui"
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// ContextWithOrigin attaches o to ctx.
func ContextWithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, ctxKeyOrigin, o)
}

// OriginFromContext returns the origin stored in ctx, if any.
func OriginFromContext(ctx context.Context) Origin {
	if o, ok := ctx.Value(ctxKeyOrigin).(Origin); ok {
		return o
	}
	return Origin{}
}
