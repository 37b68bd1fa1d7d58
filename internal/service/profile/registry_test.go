package profile

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func newTestRegistry(t *testing.T) (*Registry, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	reg := NewRegistry(store)
	tick := testTime
	reg.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return reg, store
}

func createTestProfile(t *testing.T, reg *Registry, owner string) *Profile {
	t.Helper()
	p, err := reg.Create(context.Background(), owner, CreateParams{
		Title:       "Awesome title",
		Description: "The perfect description",
		ImageURI:    strPtr(testImageURI),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return p
}

func TestRegistryCreateAndGet(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	created := createTestProfile(t, reg, testOwner)
	if created.Owner != testOwner {
		t.Fatalf("expected owner %s, got %s", testOwner, created.Owner)
	}

	p, err := reg.Get(ctx, testOwner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Owner != testOwner {
		t.Errorf("expected owner %s, got %s", testOwner, p.Owner)
	}
	if len(p.Links) != 0 {
		t.Errorf("expected no links, got %d", len(p.Links))
	}
	if !p.Published {
		t.Error("expected published by default")
	}
}

func TestRegistryCreateDuplicate(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)

	_, err := reg.Create(ctx, testOwner, CreateParams{Title: "Other title", Description: "Other description"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	p, _ := reg.Get(ctx, testOwner)
	if p.Title != "Awesome title" {
		t.Fatalf("duplicate create changed stored profile: %s", p.Title)
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if _, err := reg.Get(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistryLinkLimit(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if got := reg.LinkLimit(); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestRegistryMutationsRequireProfile(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	calls := map[string]func() error{
		"update_profile": func() error {
			_, err := reg.UpdateProfile(ctx, "ghost", UpdateParams{Title: "Title", Description: "Desc"})
			return err
		},
		"update_published_status": func() error {
			_, err := reg.UpdatePublishedStatus(ctx, "ghost", false)
			return err
		},
		"add_link": func() error {
			_, err := reg.AddLink(ctx, "ghost", testLinkParams("a"))
			return err
		},
		"update_link": func() error {
			_, err := reg.UpdateLink(ctx, "ghost", 1, testLinkParams("a"))
			return err
		},
		"delete_link": func() error {
			_, err := reg.DeleteLink(ctx, "ghost", 1)
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			if !errors.Is(err, ErrNotFound) || errors.Is(err, ErrLinkNotFound) {
				t.Fatalf("expected profile ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRegistryAddLinkPersists(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)

	updated, err := reg.AddLink(ctx, testOwner, testLinkParams("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Links) != 1 || updated.Links[0].ID != 1 {
		t.Fatalf("unexpected links in result: %+v", updated.Links)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("expected UpdatedAt to advance")
	}

	stored, _ := reg.Get(ctx, testOwner)
	if len(stored.Links) != 1 {
		t.Fatalf("expected link to be persisted, got %d", len(stored.Links))
	}
}

func TestRegistryAddLinkLimit(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)

	for range reg.LinkLimit() {
		if _, err := reg.AddLink(ctx, testOwner, testLinkParams("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := reg.AddLink(ctx, testOwner, testLinkParams("x")); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}

	p, _ := reg.Get(ctx, testOwner)
	if len(p.Links) != LinkLimit {
		t.Fatalf("expected %d links, got %d", LinkLimit, len(p.Links))
	}
}

func TestRegistryLinkIDsAfterDelete(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)

	_, _ = reg.AddLink(ctx, testOwner, testLinkParams("1"))
	_, _ = reg.AddLink(ctx, testOwner, testLinkParams("2"))
	if _, err := reg.DeleteLink(ctx, testOwner, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := reg.AddLink(ctx, testOwner, testLinkParams("3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := linkIDs(p.Links); !slices.Equal(got, []uint64{2, 3}) {
		t.Fatalf("expected ids [2 3], got %v", got)
	}
}

func TestRegistryUpdateLinkNotFoundLeavesState(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)
	_, _ = reg.AddLink(ctx, testOwner, testLinkParams("a"))
	before, _ := store.Get(ctx, testOwner)

	_, err := reg.UpdateLink(ctx, testOwner, 99, testLinkParams("b"))
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}

	after, _ := store.Get(ctx, testOwner)
	if !after.sameContent(before) || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatal("failed update must not change stored profile")
	}
}

func TestRegistryUpdateLinkAndDelete(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)
	for _, n := range []string{"a", "b", "c"} {
		_, _ = reg.AddLink(ctx, testOwner, testLinkParams(n))
	}

	p, err := reg.UpdateLink(ctx, testOwner, 2, LinkParams{URI: "https://new", Title: "New", Description: "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Links[1].URI != "https://new" || p.Links[1].ID != 2 {
		t.Fatalf("expected link 2 replaced in place, got %+v", p.Links[1])
	}

	p, err = reg.DeleteLink(ctx, testOwner, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := linkIDs(p.Links); !slices.Equal(got, []uint64{2, 3}) {
		t.Fatalf("expected ids [2 3], got %v", got)
	}
}

func TestRegistryUpdateProfileValidation(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)

	_, err := reg.UpdateProfile(ctx, testOwner, UpdateParams{Title: "ab", Description: "The perfect description"})
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Message != "title too short" {
		t.Fatalf("expected title too short, got %v", err)
	}
	stored, _ := store.Get(ctx, testOwner)
	if stored.Title != "Awesome title" {
		t.Fatalf("title changed after failed update: %s", stored.Title)
	}

	p, err := reg.UpdateProfile(ctx, testOwner, UpdateParams{Title: "Brand new", Description: "Fresh description"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "Brand new" || p.Description != "Fresh description" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestRegistryPublishedStatusIdempotent(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)

	if _, err := reg.UpdatePublishedStatus(ctx, testOwner, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, _ := store.Get(ctx, testOwner)

	if _, err := reg.UpdatePublishedStatus(ctx, testOwner, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := store.Get(ctx, testOwner)

	if !second.sameContent(first) || !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatal("second identical call must leave state identical")
	}
}

func TestRegistryPublicReads(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)
	_, _ = reg.AddLink(ctx, testOwner, testLinkParams("a"))

	info, err := reg.Info(ctx, testOwner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Owner != testOwner || info.Title != "Awesome title" {
		t.Fatalf("unexpected info: %+v", info)
	}
	views, err := reg.ListLinks(ctx, testOwner)
	if err != nil || len(views) != 1 {
		t.Fatalf("expected 1 link view, got %v, %v", views, err)
	}

	_, _ = reg.UpdatePublishedStatus(ctx, testOwner, false)

	if _, err := reg.Info(ctx, testOwner); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished, got %v", err)
	}
	if _, err := reg.ListLinks(ctx, testOwner); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished, got %v", err)
	}
	if _, err := reg.Info(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	links, err := reg.ListAllLinks(ctx, testOwner, testOwner)
	if err != nil || len(links) != 1 {
		t.Fatalf("owner should list all links, got %v, %v", links, err)
	}
	if _, err := reg.ListAllLinks(ctx, testNonOwner, testOwner); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRegistryOwnersAreIsolated(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	createTestProfile(t, reg, testOwner)
	createTestProfile(t, reg, testNonOwner)

	_, _ = reg.AddLink(ctx, testOwner, testLinkParams("a"))

	other, _ := reg.Get(ctx, testNonOwner)
	if len(other.Links) != 0 {
		t.Fatalf("links leaked across owners: %+v", other.Links)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := map[error]string{
		nil:                                  "success",
		ErrAlreadyExists:                     "already_exists",
		ErrNotFound:                          "not_found",
		ErrLinkNotFound:                      "link_not_found",
		ErrUnauthorized:                      "unauthorized",
		ErrNotPublished:                      "not_published",
		ErrLimitExceeded:                     "limit_exceeded",
		&FieldError{Field: "title"}:          "invalid_field",
		errors.New("connection reset"):       "internal_error",
	}
	for err, want := range tests {
		if got := categorizeError(err); got != want {
			t.Errorf("categorizeError(%v) = %s, want %s", err, got, want)
		}
	}
}
