package profile

// Link is one entry of a profile's link directory. Its ID is unique
// within the owning profile.
type Link struct {
	ID          uint64
	URI         string
	Title       string
	Description string
	ImageURI    *string
}

// LinkView is the projection of a link shown to public viewers.
type LinkView struct {
	ID          uint64
	URI         string
	Title       string
	Description string
	ImageURI    *string
}

func newLink(id uint64, params LinkParams) Link {
	return Link{
		ID:          id,
		URI:         params.URI,
		Title:       params.Title,
		Description: params.Description,
		ImageURI:    cloneString(params.ImageURI),
	}
}

// Read returns the display fields of the link.
func (l Link) Read() LinkView {
	return LinkView{
		ID:          l.ID,
		URI:         l.URI,
		Title:       l.Title,
		Description: l.Description,
		ImageURI:    cloneString(l.ImageURI),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneLinks(links []Link) []Link {
	if links == nil {
		return nil
	}
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l
		out[i].ImageURI = cloneString(l.ImageURI)
	}
	return out
}
