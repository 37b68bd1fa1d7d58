package profile

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/linkhub/internal/platform/auth"
	profilesvc "github.com/janisto/linkhub/internal/service/profile"
)

func registerPublic(api huma.API, svc profilesvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-limits",
		Method:      http.MethodGet,
		Path:        "/limits",
		Summary:     "Get limits",
		Tags:        []string{"Public"},
	}, func(_ context.Context, _ *struct{}) (*LimitsOutput, error) {
		return &LimitsOutput{Body: Limits{LinkLimit: svc.LinkLimit()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/profiles/{owner}",
		Summary:     "Get profile record",
		Description: "Returns the stored profile whether or not it is published.",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *OwnerInput) (*ProfileOutput, error) {
		p, err := svc.Get(ctx, input.Owner)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile-info",
		Method:      http.MethodGet,
		Path:        "/profiles/{owner}/info",
		Summary:     "Get published profile info",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *OwnerInput) (*InfoOutput, error) {
		info, err := svc.Info(ctx, input.Owner)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &InfoOutput{Body: toHTTPInfo(info)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-profile-links",
		Method:      http.MethodGet,
		Path:        "/profiles/{owner}/links",
		Summary:     "List published links",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *OwnerInput) (*LinksOutput, error) {
		views, err := svc.ListLinks(ctx, input.Owner)
		if err != nil {
			return nil, mapServiceError(err)
		}
		out := &LinksOutput{}
		out.Body.Links = viewsToHTTPLinks(views)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-all-profile-links",
		Method:      http.MethodGet,
		Path:        "/profiles/{owner}/links/all",
		Summary:     "List all links of a profile",
		Description: "Lists links regardless of visibility. Only the owner may call it.",
		Tags:        []string{"Links"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *OwnerInput) (*LinksOutput, error) {
		user := auth.UserFromContext(ctx)

		links, err := svc.ListAllLinks(ctx, user.UID, input.Owner)
		if err != nil {
			return nil, mapServiceError(err)
		}
		out := &LinksOutput{}
		out.Body.Links = toHTTPLinks(links)
		return out, nil
	})
}
