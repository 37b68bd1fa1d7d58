package profile

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LinkLimit is the maximum number of links a profile may hold.
const LinkLimit = 10

// Service errors
var (
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
	ErrUnauthorized  = errors.New("caller is not the profile owner")
	ErrNotPublished  = errors.New("profile is not published")
	ErrLimitExceeded = errors.New("link limit reached")
	ErrInvalidField  = errors.New("invalid field")

	// ErrLinkNotFound also matches ErrNotFound.
	ErrLinkNotFound = fmt.Errorf("link does not exist: %w", ErrNotFound)
)

// FieldError reports which constraint a field violated. It matches ErrInvalidField.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidField
}

// Profile is the single page owned by one identity.
type Profile struct {
	Owner       string
	Title       string
	Description string
	ImageURI    *string
	Links       []Link
	Published   bool
	// NextLinkID is the highest link id ever assigned in this profile.
	NextLinkID uint64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Info is the public metadata view of a published profile.
type Info struct {
	Title       string
	Description string
	Owner       string
	ImageURI    *string
}

// CreateParams for creating a profile. A nil Published defaults to true.
type CreateParams struct {
	Title       string
	Description string
	ImageURI    *string
	Published   *bool
}

// UpdateParams for updating profile metadata. A nil ImageURI keeps the current image.
type UpdateParams struct {
	Title       string
	Description string
	ImageURI    *string
}

// LinkParams carries every field of a link; updates replace the whole link.
type LinkParams struct {
	URI         string
	Title       string
	Description string
	ImageURI    *string
}

// Service defines registry operations. The caller argument is the
// authenticated identity of the current request.
type Service interface {
	Get(ctx context.Context, owner string) (*Profile, error)
	LinkLimit() int
	Create(ctx context.Context, caller string, params CreateParams) (*Profile, error)
	UpdateProfile(ctx context.Context, caller string, params UpdateParams) (*Profile, error)
	UpdatePublishedStatus(ctx context.Context, caller string, published bool) (*Profile, error)
	AddLink(ctx context.Context, caller string, params LinkParams) (*Profile, error)
	UpdateLink(ctx context.Context, caller string, id uint64, params LinkParams) (*Profile, error)
	DeleteLink(ctx context.Context, caller string, id uint64) (*Profile, error)
	Info(ctx context.Context, owner string) (*Info, error)
	ListLinks(ctx context.Context, owner string) ([]LinkView, error)
	ListAllLinks(ctx context.Context, caller, owner string) ([]Link, error)
}

// Store persists profiles keyed by owner identity.
//
// Update must run fn and the write that follows as one atomic step for the
// given owner. When fn returns an error nothing is written.
type Store interface {
	Get(ctx context.Context, owner string) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, owner string, fn func(p *Profile) error) (*Profile, error)
}

// freshReader is implemented by stores whose Get may return stale data.
type freshReader interface {
	GetFresh(ctx context.Context, owner string) (*Profile, error)
}
