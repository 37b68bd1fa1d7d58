// Package testutil holds helpers for tests that talk to the Firebase
// emulators or a local Redis. Tests skip when those are not running.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"
)

const (
	AuthEmulatorHost      = "127.0.0.1:7110"
	FirestoreEmulatorHost = "127.0.0.1:7130"
	ProjectID             = "demo-test-project"

	// RedisAddr and RedisDB select a throwaway database; tests flush it.
	RedisAddr = "127.0.0.1:6379"
	RedisDB   = 15

	fakeAPIKey = "fake-api-key" //nolint:gosec // emulator accepts any key
)

func reachable(host string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// SkipIfEmulatorUnavailable skips unless both Auth and Firestore emulators run.
func SkipIfEmulatorUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(AuthEmulatorHost) || !reachable(FirestoreEmulatorHost) {
		t.Skip("Firebase emulators not available")
	}
}

func SkipIfFirestoreUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(FirestoreEmulatorHost) {
		t.Skip("Firestore emulator not available")
	}
}

func SkipIfRedisUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(RedisAddr) {
		t.Skip("Redis not available")
	}
}

// SetupEmulator points the Firebase Admin SDK at the local emulators.
func SetupEmulator(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_AUTH_EMULATOR_HOST", AuthEmulatorHost)
	t.Setenv("FIRESTORE_EMULATOR_HOST", FirestoreEmulatorHost)
}

// ClearAccounts removes all users from the Auth emulator.
func ClearAccounts(t *testing.T) {
	t.Helper()
	emulatorRequest(t, http.MethodDelete,
		fmt.Sprintf("http://%s/emulator/v1/projects/%s/accounts", AuthEmulatorHost, ProjectID), nil, nil)
}

// ClearFirestore removes all documents from the Firestore emulator.
func ClearFirestore(t *testing.T) {
	t.Helper()
	emulatorRequest(t, http.MethodDelete,
		fmt.Sprintf("http://%s/emulator/v1/projects/%s/databases/(default)/documents", FirestoreEmulatorHost, ProjectID),
		nil, nil)
}

// SignUpResponse is the Auth emulator's answer to accounts:signUp.
type SignUpResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

// CreateTestUser signs up a user in the Auth emulator. LocalID is the uid
// that owns the user's profile.
func CreateTestUser(t *testing.T, email, password string) *SignUpResponse {
	t.Helper()
	var out SignUpResponse
	emulatorRequest(t, http.MethodPost,
		fmt.Sprintf("http://%s/identitytoolkit.googleapis.com/v1/accounts:signUp?key=%s", AuthEmulatorHost, fakeAPIKey),
		map[string]any{"email": email, "password": password, "returnSecureToken": true},
		&out)
	if out.IDToken == "" {
		t.Fatalf("emulator returned no id token for %s", email)
	}
	return &out
}

func emulatorRequest(t *testing.T, method, url string, in, out any) {
	t.Helper()
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequestWithContext(t.Context(), method, url, &body)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		t.Fatalf("%s %s: status %d", method, url, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}
