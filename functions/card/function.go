// Package card provides an HTTP Cloud Function that renders the public
// card of a published profile: its metadata plus links, in one response.
package card

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/janisto/linkhub/internal/platform/config"
	"github.com/janisto/linkhub/internal/platform/firebase"
	"github.com/janisto/linkhub/internal/platform/logging"
	profilesvc "github.com/janisto/linkhub/internal/service/profile"
)

var (
	initOnce sync.Once
	service  profilesvc.Service
	initErr  error
)

func init() {
	functions.HTTP("ProfileCard", func(w http.ResponseWriter, r *http.Request) {
		initOnce.Do(func() {
			service, initErr = newService(context.Background())
		})
		if initErr != nil {
			logging.LogError(r.Context(), "profile card init failed", initErr)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		newHandler(service)(w, r)
	})
}

// newService reads profiles from Firestore, the store the server writes to
// in production.
func newService(ctx context.Context) (profilesvc.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:                    cfg.FirebaseProjectID,
		GoogleApplicationCredentials: cfg.GoogleApplicationCredentials,
		WithFirestore:                true,
	})
	if err != nil {
		return nil, err
	}
	// Card reads are gated on visibility, which is always read fresh, so a
	// cache would never be consulted.
	return profilesvc.NewRegistry(profilesvc.NewFirestoreStore(clients.Firestore)), nil
}

// Card is the public view of a profile.
type Card struct {
	Owner       string  `json:"owner"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURI    *string `json:"imageUri,omitempty"`
	Links       []Link  `json:"links"`
}

// Link is one entry of a card.
type Link struct {
	ID          uint64  `json:"id"`
	URI         string  `json:"uri"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURI    *string `json:"imageUri,omitempty"`
}

type errorResponse struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// newHandler serves GET ?owner=<id>. Unpublished and missing profiles are
// both reported as 404.
func newHandler(svc profilesvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
			return
		}
		owner := r.URL.Query().Get("owner")
		if owner == "" {
			writeError(w, http.StatusBadRequest, "owner is required")
			return
		}

		info, err := svc.Info(r.Context(), owner)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		views, err := svc.ListLinks(r.Context(), owner)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		card := Card{
			Owner:       info.Owner,
			Title:       info.Title,
			Description: info.Description,
			ImageURI:    info.ImageURI,
			Links:       make([]Link, 0, len(views)),
		}
		for _, v := range views {
			card.Links = append(card.Links, Link(v))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=60")
		_ = json.NewEncoder(w).Encode(card)
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrNotFound), errors.Is(err, profilesvc.ErrNotPublished):
		writeError(w, http.StatusNotFound, "profile not found")
	default:
		logging.LogError(r.Context(), "profile card read failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Status: status, Detail: detail})
}
