package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Resolver turns a bearer token into a user identity. The HTTP
// implementation asks the auth service; tests substitute a fake.
type Resolver interface {
	Resolve(ctx context.Context, token string) (userID string, err error)
}

// AuthClient resolves bearer tokens against the platform auth endpoint.
type AuthClient struct {
	authURL string
	client  *http.Client
}

// NewAuthClient constructs an AuthClient.
func NewAuthClient(authURL string) *AuthClient {
	return &AuthClient{
		authURL: authURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve calls the auth endpoint with the caller's token and returns the
// user ID it reports. Any failure means the caller is unauthenticated.
func (a *AuthClient) Resolve(ctx context.Context, token string) (string, error) {
	if a.authURL == "" {
		return "", fmt.Errorf("AUTH_URL is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.authURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth service returned %d", resp.StatusCode)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("auth response carried no user id")
	}
	return user.ID, nil
}

// bearerToken extracts the token from an Authorization header, empty when
// absent or malformed.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
