package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Config holds Firebase configuration.
type Config struct {
	ProjectID                    string
	GoogleApplicationCredentials string // Path to service account JSON (optional)

	// WithFirestore opens a Firestore client. Only the firestore profile store needs one.
	WithFirestore bool
}

// Clients holds initialized Firebase clients. Firestore is nil unless requested.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// InitializeClients sets up the Firebase app and the clients cfg asks for.
// The Admin SDK honors FIREBASE_AUTH_EMULATOR_HOST and FIRESTORE_EMULATOR_HOST.
func InitializeClients(ctx context.Context, cfg Config) (*Clients, error) {
	var opts []option.ClientOption
	if cfg.GoogleApplicationCredentials != "" {
		creds, err := os.ReadFile(cfg.GoogleApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	ac, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init auth client: %w", err)
	}
	clients := &Clients{Auth: ac}

	if cfg.WithFirestore {
		fc, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("init firestore client: %w", err)
		}
		clients.Firestore = fc
	}
	return clients, nil
}

// Close closes the Firestore client when one was opened.
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}
