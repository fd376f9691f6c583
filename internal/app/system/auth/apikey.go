package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// APIKeyAuth returns middleware that checks a Bearer token against validKey.
// Intended for machine callers of the maintenance endpoints. If validKey is
// empty the middleware rejects everything, so a missing config value fails
// closed.
func APIKeyAuth(validKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				jsonutil.Unauthorized(w, "missing bearer token")
				return
			}
			if validKey == "" || subtle.ConstantTimeCompare([]byte(token), []byte(validKey)) != 1 {
				logger.Warn("api key rejected",
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr))
				jsonutil.Unauthorized(w, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
