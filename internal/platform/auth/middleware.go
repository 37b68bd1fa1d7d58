package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/linkhub/internal/platform/logging"
	"github.com/janisto/linkhub/internal/platform/metrics"
)

type userContextKey struct{}

// NewAuthMiddleware authenticates operations that declare a Security
// requirement. Operations without one run anonymously.
func NewAuthMiddleware(api huma.API, verifier Verifier) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(ctx.Operation().Security) == 0 {
			next(ctx)
			return
		}

		token, err := ExtractBearerToken(ctx.Header("Authorization"))
		if err != nil {
			reject(api, ctx, err)
			return
		}
		user, err := verifier.Verify(ctx.Context(), token)
		if err != nil {
			reject(api, ctx, err)
			return
		}

		ctx = huma.WithContext(ctx, applog.WithFields(ctx.Context(), zap.String("uid", user.UID)))
		next(huma.WithValue(ctx, userContextKey{}, user))
	}
}

func reject(api huma.API, ctx huma.Context, err error) {
	reason := categorizeAuthError(err)
	metrics.ObserveAuthFailure(reason)
	applog.LogWarn(ctx.Context(), "auth failed", zap.String("reason", reason))

	if errors.Is(err, ErrCertificateFetch) {
		ctx.SetHeader("Retry-After", "30")
		_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable,
			"authentication service temporarily unavailable")
		return
	}
	ctx.SetHeader("WWW-Authenticate", "Bearer")
	if errors.Is(err, ErrNoToken) {
		_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing or invalid authorization header")
		return
	}
	_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid or expired token")
}

// categorizeAuthError returns a log-safe reason.
func categorizeAuthError(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "no_token"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenRevoked):
		return "token_revoked"
	case errors.Is(err, ErrUserDisabled):
		return "user_disabled"
	case errors.Is(err, ErrCertificateFetch):
		return "certificate_fetch_failed"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	default:
		return "unknown"
	}
}

// UserFromContext returns the authenticated caller, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}
