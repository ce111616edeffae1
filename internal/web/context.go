package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/scenecsv/internal/core"
)

// withOrigin tags ctx with the HTTP caller so spawn history shows who
// triggered each run. RemoteAddr has already been rewritten by TrustedRealIP.
func withOrigin(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithOrigin(ctx, core.Origin{
		Via:       "http",
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
}
