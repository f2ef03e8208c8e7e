package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// expiryLeeway refreshes slightly early so a token cannot expire mid-request.
const expiryLeeway = 30 * time.Second

// Credentials is the persisted OAuth2 state. ExpiresAt is RFC 3339.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}

// FileTokenSource serves bearer tokens from a credentials file, refreshing
// through the OAuth2 token endpoint when the stored access token is expired.
// Refreshed tokens are written back so the next run starts warm. It
// implements ports.TokenSource and is safe for concurrent workers.
type FileTokenSource struct {
	path       string
	tokenURL   string
	httpClient *http.Client

	mu    sync.Mutex
	creds Credentials
}

func NewFileTokenSource(path, baseURL string) (*FileTokenSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "credentials",
			fmt.Errorf("parse %s: %w", path, err))
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "credentials",
			fmt.Errorf("%s is missing client_id or client_secret", path))
	}
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "credentials",
			fmt.Errorf("%s holds no tokens; authorize the application first", path))
	}
	return &FileTokenSource{
		path:       path,
		tokenURL:   strings.TrimRight(baseURL, "/") + "/o/token/",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds:      creds,
	}, nil
}

// AuthHeader returns a ready-to-use Authorization header value.
func (s *FileTokenSource) AuthHeader(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tokenValid() {
		if err := s.refresh(ctx); err != nil {
			return "", err
		}
	}
	return "Bearer " + s.creds.AccessToken, nil
}

func (s *FileTokenSource) tokenValid() bool {
	if s.creds.AccessToken == "" {
		return false
	}
	if s.creds.ExpiresAt == "" {
		return true
	}
	expiresAt, err := time.Parse(time.RFC3339, s.creds.ExpiresAt)
	if err != nil {
		return false
	}
	return time.Now().Add(expiryLeeway).Before(expiresAt)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *FileTokenSource) refresh(ctx context.Context) error {
	if s.creds.RefreshToken == "" {
		return domain.WrapError(domain.ErrUnauthorized, "token refresh",
			fmt.Errorf("access token expired and no refresh token is stored"))
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.creds.RefreshToken)
	form.Set("client_id", s.creds.ClientID)
	form.Set("client_secret", s.creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WrapError(domain.ErrUnauthorized, "token refresh",
			fmt.Errorf("token endpoint returned %s", resp.Status))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}

	s.creds.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.creds.RefreshToken = token.RefreshToken
	}
	s.creds.ExpiresAt = time.Now().UTC().
		Add(time.Duration(token.ExpiresIn) * time.Second).
		Format(time.RFC3339)

	if err := s.persist(); err != nil {
		return err
	}
	return nil
}

func (s *FileTokenSource) persist() error {
	raw, err := json.MarshalIndent(s.creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("save credentials %s: %w", s.path, err)
	}
	return nil
}
