package supabase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/supabase-community/gotrue-go"
)

var authClient gotrue.Client

// extractProjectRef extracts the project reference ID from a Supabase URL,
// e.g. akrqbuajqkirdekonpzy.supabase.co -> akrqbuajqkirdekonpzy.
func extractProjectRef(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	parts := strings.Split(url, ".")
	return parts[0]
}

// InitClient initializes the Supabase authentication client.
func InitClient(supabaseURL, supabaseKey string) error {
	projectRef := extractProjectRef(supabaseURL)

	slog.Info("Initializing Supabase client", "project_ref", projectRef)

	client := gotrue.New(projectRef, supabaseKey)

	if _, err := client.GetSettings(); err != nil {
		return fmt.Errorf("failed to connect to Supabase: %w", err)
	}

	authClient = client
	slog.Info("Supabase connection successful")
	return nil
}

// Authenticate validates the credentials with Supabase and returns the
// authenticated user's id on success.
func Authenticate(email, password string) (string, error) {
	if authClient == nil {
		return "", fmt.Errorf("supabase client is not initialized")
	}

	res, err := authClient.SignInWithEmailPassword(email, password)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	if res == nil || res.AccessToken == "" {
		return "", fmt.Errorf("invalid credentials")
	}

	return res.User.ID.String(), nil
}
