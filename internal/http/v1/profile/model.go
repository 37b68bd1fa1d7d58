package profile

import (
	"github.com/janisto/linkhub/internal/platform/timeutil"
	profilesvc "github.com/janisto/linkhub/internal/service/profile"
)

// Link is a profile link as seen by its owner.
type Link struct {
	ID          uint64  `json:"id"                 doc:"Link identifier, unique within the profile" example:"1"`
	URI         string  `json:"uri"                doc:"Link target"                                 example:"https://example.com"`
	Title       string  `json:"title"              doc:"Link title"                                  example:"My blog"`
	Description string  `json:"description"        doc:"Link description"                            example:"Things I write"`
	ImageURI    *string `json:"imageUri,omitempty" doc:"Content hash of the link image"              example:"QmUtLVS6EiS93sAFPpPXX8hEM4Gw1T3FTr7YWb2hMM7uhz"`
}

// Profile is the full profile record.
type Profile struct {
	Owner       string        `json:"owner"              doc:"Owner identity"        example:"alice-uid"`
	Title       string        `json:"title"              doc:"Profile title"         example:"Awesome title"`
	Description string        `json:"description"        doc:"Profile description"   example:"The perfect description"`
	ImageURI    *string       `json:"imageUri,omitempty" doc:"Content hash of the profile image"`
	Links       []Link        `json:"links"              doc:"Links in insertion order"`
	Published   bool          `json:"published"          doc:"Whether anonymous readers can see the profile" example:"true"`
	CreatedAt   timeutil.Time `json:"createdAt"          doc:"Creation timestamp"    example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt   timeutil.Time `json:"updatedAt"          doc:"Last update timestamp" example:"2024-01-15T10:30:00.000Z"`
}

// Info is the public metadata of a published profile.
type Info struct {
	Owner       string  `json:"owner"              doc:"Owner identity"      example:"alice-uid"`
	Title       string  `json:"title"              doc:"Profile title"       example:"Awesome title"`
	Description string  `json:"description"        doc:"Profile description" example:"The perfect description"`
	ImageURI    *string `json:"imageUri,omitempty" doc:"Content hash of the profile image"`
}

// Limits describes server-side limits.
type Limits struct {
	LinkLimit int `json:"linkLimit" doc:"Maximum links per profile" example:"10"`
}

func toHTTPLink(l profilesvc.Link) Link {
	return Link{
		ID:          l.ID,
		URI:         l.URI,
		Title:       l.Title,
		Description: l.Description,
		ImageURI:    l.ImageURI,
	}
}

func toHTTPLinks(links []profilesvc.Link) []Link {
	out := make([]Link, 0, len(links))
	for _, l := range links {
		out = append(out, toHTTPLink(l))
	}
	return out
}

func viewsToHTTPLinks(views []profilesvc.LinkView) []Link {
	out := make([]Link, 0, len(views))
	for _, v := range views {
		out = append(out, Link(v))
	}
	return out
}

func toHTTPProfile(p *profilesvc.Profile) Profile {
	return Profile{
		Owner:       p.Owner,
		Title:       p.Title,
		Description: p.Description,
		ImageURI:    p.ImageURI,
		Links:       toHTTPLinks(p.Links),
		Published:   p.Published,
		CreatedAt:   timeutil.NewTime(p.CreatedAt),
		UpdatedAt:   timeutil.NewTime(p.UpdatedAt),
	}
}

func toHTTPInfo(i *profilesvc.Info) Info {
	return Info{
		Owner:       i.Owner,
		Title:       i.Title,
		Description: i.Description,
		ImageURI:    i.ImageURI,
	}
}
