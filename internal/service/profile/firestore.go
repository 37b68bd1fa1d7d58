package profile

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const profilesCollection = "profiles"

// firestoreLink maps to one element of the links array.
type firestoreLink struct {
	ID          int64   `firestore:"id"`
	URI         string  `firestore:"uri"`
	Title       string  `firestore:"title"`
	Description string  `firestore:"description"`
	ImageURI    *string `firestore:"image_uri"`
}

// firestoreProfile maps to Firestore document structure. The document ID is the owner.
type firestoreProfile struct {
	Title       string          `firestore:"title"`
	Description string          `firestore:"description"`
	ImageURI    *string         `firestore:"image_uri"`
	Links       []firestoreLink `firestore:"links"`
	Published   bool            `firestore:"is_published"`
	NextLinkID  int64           `firestore:"next_link_id"`
	CreatedAt   time.Time       `firestore:"created_at"`
	UpdatedAt   time.Time       `firestore:"updated_at"`
}

func toFirestoreProfile(p *Profile) firestoreProfile {
	links := make([]firestoreLink, 0, len(p.Links))
	for _, l := range p.Links {
		links = append(links, firestoreLink{
			ID:          int64(l.ID),
			URI:         l.URI,
			Title:       l.Title,
			Description: l.Description,
			ImageURI:    l.ImageURI,
		})
	}
	return firestoreProfile{
		Title:       p.Title,
		Description: p.Description,
		ImageURI:    p.ImageURI,
		Links:       links,
		Published:   p.Published,
		NextLinkID:  int64(p.NextLinkID),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (fp firestoreProfile) toProfile(owner string) *Profile {
	links := make([]Link, 0, len(fp.Links))
	for _, l := range fp.Links {
		links = append(links, Link{
			ID:          uint64(l.ID),
			URI:         l.URI,
			Title:       l.Title,
			Description: l.Description,
			ImageURI:    l.ImageURI,
		})
	}
	return &Profile{
		Owner:       owner,
		Title:       fp.Title,
		Description: fp.Description,
		ImageURI:    fp.ImageURI,
		Links:       links,
		Published:   fp.Published,
		NextLinkID:  uint64(fp.NextLinkID),
		CreatedAt:   fp.CreatedAt,
		UpdatedAt:   fp.UpdatedAt,
	}
}

// FirestoreStore implements Store using Firestore with transactions.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Get retrieves a profile by owner.
func (s *FirestoreStore) Get(ctx context.Context, owner string) (*Profile, error) {
	docRef := s.client.Collection(profilesCollection).Doc(owner)
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, err
	}
	return fp.toProfile(owner), nil
}

// Create stores a new profile using a transaction to prevent duplicates.
func (s *FirestoreStore) Create(ctx context.Context, p *Profile) error {
	docRef := s.client.Collection(profilesCollection).Doc(p.Owner)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil && doc.Exists() {
			return ErrAlreadyExists
		}
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		return tx.Set(docRef, toFirestoreProfile(p))
	})
}

// Update loads, mutates and rewrites a profile inside one transaction.
// Firestore may retry the transaction, so fn can run more than once.
func (s *FirestoreStore) Update(ctx context.Context, owner string, fn func(p *Profile) error) (*Profile, error) {
	docRef := s.client.Collection(profilesCollection).Doc(owner)

	var result *Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return err
		}

		p := fp.toProfile(owner)
		if err := fn(p); err != nil {
			return err
		}
		if err := tx.Set(docRef, toFirestoreProfile(p)); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Compile-time interface check
var _ Store = (*FirestoreStore)(nil)
