package routes

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/linkhub/internal/http/v1/profile"
	"github.com/janisto/linkhub/internal/platform/auth"
	profilesvc "github.com/janisto/linkhub/internal/service/profile"
)

// Register wires all v1 operations into api. Operations that declare
// bearerAuth are authenticated with verifier.
func Register(api huma.API, verifier auth.Verifier, profileService profilesvc.Service) {
	api.UseMiddleware(auth.NewAuthMiddleware(api, verifier))

	profile.Register(api, profileService, apiPrefix(api))
}

// apiPrefix returns the path of the first OpenAPI server URL, e.g. "/v1".
func apiPrefix(api huma.API) string {
	for _, s := range api.OpenAPI().Servers {
		if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return ""
}
