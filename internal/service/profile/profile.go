package profile

import (
	"reflect"
	"slices"
	"time"
)

// NewProfile builds a profile owned by owner with an empty link list.
func NewProfile(owner string, params CreateParams, now time.Time) *Profile {
	published := true
	if params.Published != nil {
		published = *params.Published
	}
	return &Profile{
		Owner:       owner,
		Title:       params.Title,
		Description: params.Description,
		ImageURI:    cloneString(params.ImageURI),
		Links:       []Link{},
		Published:   published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	c := *p
	c.ImageURI = cloneString(p.ImageURI)
	c.Links = cloneLinks(p.Links)
	if c.Links == nil {
		c.Links = []Link{}
	}
	return &c
}

// sameContent reports whether p and o differ only in their timestamps.
func (p *Profile) sameContent(o *Profile) bool {
	a, b := p.Clone(), o.Clone()
	a.CreatedAt, a.UpdatedAt = time.Time{}, time.Time{}
	b.CreatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	return reflect.DeepEqual(a, b)
}

// Info returns the public metadata. Unpublished profiles are hidden from everyone.
func (p *Profile) Info() (*Info, error) {
	if !p.Published {
		return nil, ErrNotPublished
	}
	return &Info{
		Title:       p.Title,
		Description: p.Description,
		Owner:       p.Owner,
		ImageURI:    cloneString(p.ImageURI),
	}, nil
}

// List returns the public link views in insertion order.
func (p *Profile) List() ([]LinkView, error) {
	if !p.Published {
		return nil, ErrNotPublished
	}
	views := make([]LinkView, 0, len(p.Links))
	for _, l := range p.Links {
		views = append(views, l.Read())
	}
	return views, nil
}

// ListAll returns every link regardless of the published flag. Owner only.
func (p *Profile) ListAll(caller string) ([]Link, error) {
	if caller != p.Owner {
		return nil, ErrUnauthorized
	}
	links := cloneLinks(p.Links)
	if links == nil {
		links = []Link{}
	}
	return links, nil
}

// UpdatePublishedStatus sets the visibility flag. Owner only.
func (p *Profile) UpdatePublishedStatus(caller string, published bool) error {
	if caller != p.Owner {
		return ErrUnauthorized
	}
	if p.Published != published {
		p.Published = published
	}
	return nil
}

// Update changes the metadata fields that differ from the current values.
// Every changed field is validated before any is applied, so a rejected
// field leaves the profile untouched.
func (p *Profile) Update(caller string, params UpdateParams) error {
	if caller != p.Owner {
		return ErrUnauthorized
	}

	titleChanged := p.Title != params.Title
	if titleChanged {
		if err := ValidateTitle(params.Title); err != nil {
			return err
		}
	}
	descriptionChanged := p.Description != params.Description
	if descriptionChanged {
		if err := ValidateDescription(params.Description); err != nil {
			return err
		}
	}
	imageChanged := params.ImageURI != nil && (p.ImageURI == nil || *p.ImageURI != *params.ImageURI)
	if imageChanged {
		if err := ValidateImageURI(*params.ImageURI); err != nil {
			return err
		}
	}

	if titleChanged {
		p.Title = params.Title
	}
	if descriptionChanged {
		p.Description = params.Description
	}
	if imageChanged {
		p.ImageURI = cloneString(params.ImageURI)
	}
	return nil
}

// CreateLink appends a new link with the next id. Link fields are stored as given.
func (p *Profile) CreateLink(caller string, params LinkParams) (Link, error) {
	if caller != p.Owner {
		return Link{}, ErrUnauthorized
	}
	if len(p.Links) >= LinkLimit {
		return Link{}, ErrLimitExceeded
	}
	id := p.nextLinkID()
	link := newLink(id, params)
	p.Links = append(p.Links, link)
	p.NextLinkID = id
	return link, nil
}

// UpdateLink replaces the link with the given id, keeping its position.
func (p *Profile) UpdateLink(caller string, id uint64, params LinkParams) (Link, error) {
	if caller != p.Owner {
		return Link{}, ErrUnauthorized
	}
	i, err := p.linkIndex(id)
	if err != nil {
		return Link{}, err
	}
	p.Links[i] = newLink(id, params)
	return p.Links[i], nil
}

// DeleteLink removes the link with the given id. Later links shift left.
func (p *Profile) DeleteLink(caller string, id uint64) error {
	if caller != p.Owner {
		return ErrUnauthorized
	}
	i, err := p.linkIndex(id)
	if err != nil {
		return err
	}
	p.Links = slices.Delete(p.Links, i, i+1)
	return nil
}

func (p *Profile) linkIndex(id uint64) (int, error) {
	i := slices.IndexFunc(p.Links, func(l Link) bool { return l.ID == id })
	if i < 0 {
		return -1, ErrLinkNotFound
	}
	return i, nil
}

// nextLinkID never reuses an id. Records written before NextLinkID existed
// fall back to the id of the last link.
func (p *Profile) nextLinkID() uint64 {
	next := p.NextLinkID
	if n := len(p.Links); n > 0 && p.Links[n-1].ID > next {
		next = p.Links[n-1].ID
	}
	return next + 1
}
