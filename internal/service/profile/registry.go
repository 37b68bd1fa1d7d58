package profile

import (
	"context"
	"errors"
	"time"

	applog "github.com/janisto/linkhub/internal/platform/logging"
	"github.com/janisto/linkhub/internal/platform/metrics"
)

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrLinkNotFound):
		return "link_not_found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotPublished):
		return "not_published"
	case errors.Is(err, ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ErrInvalidField):
		return "invalid_field"
	default:
		return "internal_error"
	}
}

// Registry maps each owner identity to exactly one Profile held in a Store.
type Registry struct {
	store Store
	now   func() time.Time
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the raw profile of owner without any visibility check.
func (r *Registry) Get(ctx context.Context, owner string) (*Profile, error) {
	p, err := r.store.Get(ctx, owner)
	metrics.ObserveOperation("get", categorizeError(err))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// LinkLimit reports the maximum number of links per profile.
func (r *Registry) LinkLimit() int {
	return LinkLimit
}

// Create stores a new profile owned by caller.
func (r *Registry) Create(ctx context.Context, caller string, params CreateParams) (*Profile, error) {
	p := NewProfile(caller, params, r.now())
	err := r.store.Create(ctx, p)
	r.record(ctx, "create", caller, err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfile applies a validated metadata update to caller's profile.
func (r *Registry) UpdateProfile(ctx context.Context, caller string, params UpdateParams) (*Profile, error) {
	return r.mutate(ctx, "update_profile", caller, func(p *Profile) error {
		return p.Update(caller, params)
	})
}

// UpdatePublishedStatus toggles the visibility of caller's profile.
func (r *Registry) UpdatePublishedStatus(ctx context.Context, caller string, published bool) (*Profile, error) {
	return r.mutate(ctx, "update_published_status", caller, func(p *Profile) error {
		return p.UpdatePublishedStatus(caller, published)
	})
}

// AddLink appends a link to caller's profile.
func (r *Registry) AddLink(ctx context.Context, caller string, params LinkParams) (*Profile, error) {
	return r.mutate(ctx, "add_link", caller, func(p *Profile) error {
		_, err := p.CreateLink(caller, params)
		return err
	})
}

// UpdateLink replaces link id in caller's profile.
func (r *Registry) UpdateLink(ctx context.Context, caller string, id uint64, params LinkParams) (*Profile, error) {
	return r.mutate(ctx, "update_link", caller, func(p *Profile) error {
		_, err := p.UpdateLink(caller, id, params)
		return err
	})
}

// DeleteLink removes link id from caller's profile.
func (r *Registry) DeleteLink(ctx context.Context, caller string, id uint64) (*Profile, error) {
	return r.mutate(ctx, "delete_link", caller, func(p *Profile) error {
		return p.DeleteLink(caller, id)
	})
}

// Info returns the public metadata of owner's profile.
func (r *Registry) Info(ctx context.Context, owner string) (*Info, error) {
	p, err := r.getFresh(ctx, owner)
	if err == nil {
		var info *Info
		info, err = p.Info()
		if err == nil {
			metrics.ObserveOperation("info", "success")
			return info, nil
		}
	}
	metrics.ObserveOperation("info", categorizeError(err))
	return nil, err
}

// ListLinks returns the public links of owner's profile.
func (r *Registry) ListLinks(ctx context.Context, owner string) ([]LinkView, error) {
	p, err := r.getFresh(ctx, owner)
	if err == nil {
		var views []LinkView
		views, err = p.List()
		if err == nil {
			metrics.ObserveOperation("list", "success")
			return views, nil
		}
	}
	metrics.ObserveOperation("list", categorizeError(err))
	return nil, err
}

// ListAllLinks returns every link of owner's profile when caller is the owner.
func (r *Registry) ListAllLinks(ctx context.Context, caller, owner string) ([]Link, error) {
	p, err := r.getFresh(ctx, owner)
	if err == nil {
		var links []Link
		links, err = p.ListAll(caller)
		if err == nil {
			metrics.ObserveOperation("list_all", "success")
			return links, nil
		}
	}
	metrics.ObserveOperation("list_all", categorizeError(err))
	return nil, err
}

// getFresh reads past any cache, for reads gated on visibility or ownership.
func (r *Registry) getFresh(ctx context.Context, owner string) (*Profile, error) {
	if fr, ok := r.store.(freshReader); ok {
		return fr.GetFresh(ctx, owner)
	}
	return r.store.Get(ctx, owner)
}

func (r *Registry) mutate(ctx context.Context, action, caller string, fn func(p *Profile) error) (*Profile, error) {
	p, err := r.store.Update(ctx, caller, func(p *Profile) error {
		before := p.Clone()
		if err := fn(p); err != nil {
			return err
		}
		if !p.sameContent(before) {
			p.UpdatedAt = r.now()
		}
		return nil
	})
	r.record(ctx, action, caller, err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Registry) record(ctx context.Context, action, caller string, err error) {
	category := categorizeError(err)
	metrics.ObserveOperation(action, category)
	if err != nil {
		applog.LogAuditEvent(ctx, action, caller, "profile", caller, "failure",
			map[string]any{"error": category})
		return
	}
	applog.LogAuditEvent(ctx, action, caller, "profile", caller, "success", nil)
}

// Compile-time interface check
var _ Service = (*Registry)(nil)
