package profile

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/linkhub/internal/platform/auth"
	profilesvc "github.com/janisto/linkhub/internal/service/profile"
)

var bearerAuth = []map[string][]string{
	{"bearerAuth": {}},
}

// Register registers the owner and public profile endpoints. prefix is the
// API base path used in Location headers.
func Register(api huma.API, svc profilesvc.Service, prefix string) {
	registerOwner(api, svc, prefix)
	registerPublic(api, svc)
}

func registerOwner(api huma.API, svc profilesvc.Service, prefix string) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-profile",
		Method:        http.MethodPost,
		Path:          "/profile",
		Summary:       "Create profile",
		Description:   "Creates the authenticated caller's profile with no links. A caller can own one profile.",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
	}, func(ctx context.Context, input *ProfileCreateInput) (*ProfileCreateOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.Create(ctx, user.UID, profilesvc.CreateParams{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			ImageURI:    input.Body.ImageURI,
			Published:   input.Body.Published,
		})
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileCreateOutput{
			Location: prefix + "/profile",
			Body:     toHTTPProfile(p),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-own-profile",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "Get own profile",
		Description: "Returns the caller's profile, including unpublished ones.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.Get(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/profile",
		Summary:     "Update profile metadata",
		Description: "Validates and applies changed title, description and image. Unchanged fields are not validated; an omitted image is kept.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *ProfileUpdateInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.UpdateProfile(ctx, user.UID, profilesvc.UpdateParams{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			ImageURI:    input.Body.ImageURI,
		})
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-profile-published",
		Method:      http.MethodPut,
		Path:        "/profile/published",
		Summary:     "Set profile visibility",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *PublishedInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.UpdatePublishedStatus(ctx, user.UID, input.Body.Published)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-own-links",
		Method:      http.MethodGet,
		Path:        "/profile/links",
		Summary:     "List own links",
		Description: "Lists every link of the caller's profile regardless of visibility.",
		Tags:        []string{"Links"},
		Security:    bearerAuth,
	}, func(ctx context.Context, _ *struct{}) (*LinksOutput, error) {
		user := auth.UserFromContext(ctx)

		links, err := svc.ListAllLinks(ctx, user.UID, user.UID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		out := &LinksOutput{}
		out.Body.Links = toHTTPLinks(links)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-link",
		Method:        http.MethodPost,
		Path:          "/profile/links",
		Summary:       "Add link",
		Description:   "Appends a link with a fresh id. Ids are never reused, even after deletion.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
	}, func(ctx context.Context, input *LinkCreateInput) (*LinkCreateOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.AddLink(ctx, user.UID, toLinkParams(input.Body))
		if err != nil {
			return nil, mapServiceError(err)
		}
		last := p.Links[len(p.Links)-1]
		return &LinkCreateOutput{
			Location: prefix + "/profile/links/" + strconv.FormatUint(last.ID, 10),
			Body:     toHTTPProfile(p),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-link",
		Method:      http.MethodPut,
		Path:        "/profile/links/{id}",
		Summary:     "Replace link",
		Description: "Replaces every field of the link in place.",
		Tags:        []string{"Links"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *LinkUpdateInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.UpdateLink(ctx, user.UID, input.ID, toLinkParams(input.Body))
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-link",
		Method:      http.MethodDelete,
		Path:        "/profile/links/{id}",
		Summary:     "Delete link",
		Description: "Removes the link and returns the updated profile.",
		Tags:        []string{"Links"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *LinkDeleteInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.DeleteLink(ctx, user.UID, input.ID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})
}

func toLinkParams(b LinkBody) profilesvc.LinkParams {
	return profilesvc.LinkParams{
		URI:         b.URI,
		Title:       b.Title,
		Description: b.Description,
		ImageURI:    b.ImageURI,
	}
}

func mapServiceError(err error) error {
	var fieldErr *profilesvc.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return huma.Error422UnprocessableEntity("validation failed", &huma.ErrorDetail{
			Message:  fieldErr.Message,
			Location: "body." + fieldErr.Field,
		})
	case errors.Is(err, profilesvc.ErrLinkNotFound):
		return huma.Error404NotFound("link not found")
	case errors.Is(err, profilesvc.ErrNotFound):
		return huma.Error404NotFound("profile not found")
	case errors.Is(err, profilesvc.ErrNotPublished):
		return huma.Error404NotFound("profile not published")
	case errors.Is(err, profilesvc.ErrAlreadyExists):
		return huma.Error409Conflict("profile already exists")
	case errors.Is(err, profilesvc.ErrLimitExceeded):
		return huma.Error409Conflict("link limit reached")
	case errors.Is(err, profilesvc.ErrUnauthorized):
		return huma.Error403Forbidden("not the profile owner")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}
