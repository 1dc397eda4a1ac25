package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
)

const (
	tokenRoute     = "/auth/v1/token?grant_type=refresh_token"
	requestTimeout = 10 * time.Second
	// expiryLeeway treats a token as expired slightly early
	expiryLeeway = 30 * time.Second
)

// Log messages
const (
	LogMsgSessionRefreshed = "User session refreshed"
	LogMsgSessionSet       = "User session replaced after sign-in"
)

// Error messages
const (
	ErrMsgNoRefreshToken = "no refresh token available"
	ErrMsgRefreshFailed  = "session refresh failed"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

// Client holds the signed-in user's session in memory and refreshes it with
// the refresh-token grant
type Client struct {
	baseURL    string
	gatewayKey string
	http       *http.Client

	mu           sync.Mutex
	session      domain.Session
	refreshToken string
	now          func() time.Time
}

// NewClient creates a session client seeded with a refresh token (may be empty)
func NewClient(baseURL, gatewayKey, refreshToken string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		gatewayKey:   gatewayKey,
		http:         &http.Client{Timeout: requestTimeout},
		refreshToken: refreshToken,
		now:          time.Now,
	}
}

// SetSession installs a session obtained by an interactive sign-in
func (c *Client) SetSession(ctx context.Context, session domain.Session, refreshToken string) {
	c.mu.Lock()
	c.session = session
	if refreshToken != "" {
		c.refreshToken = refreshToken
	}
	c.mu.Unlock()
	logger.FromContext(ctx).Info(LogMsgSessionSet, "user_id", session.UserID)
}

// Session returns the current session, refreshing it first if it has expired
func (c *Client) Session(ctx context.Context) (domain.Session, error) {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	if s.Valid(c.now().Add(expiryLeeway)) {
		return s, nil
	}
	return c.Refresh(ctx)
}

// Refresh exchanges the refresh token for a new session
func (c *Client) Refresh(ctx context.Context) (domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshToken == "" {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrUnauthorized, ErrMsgNoRefreshToken)
	}

	body, err := json.Marshal(map[string]string{"refresh_token": c.refreshToken})
	if err != nil {
		return domain.Session{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenRoute, bytes.NewReader(body))
	if err != nil {
		return domain.Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.gatewayKey != "" {
		req.Header.Set("apikey", c.gatewayKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", ErrMsgRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return domain.Session{}, fmt.Errorf("%w: %s (status %d)", domain.ErrUnauthorized, ErrMsgRefreshFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Session{}, fmt.Errorf("%s: status %d", ErrMsgRefreshFailed, resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", ErrMsgRefreshFailed, err)
	}

	session := domain.Session{AccessToken: tok.AccessToken, UserID: tok.User.ID}
	if tok.ExpiresIn > 0 {
		session.ExpiresAt = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	c.session = session
	if tok.RefreshToken != "" {
		c.refreshToken = tok.RefreshToken
	}

	logger.FromContext(ctx).Info(LogMsgSessionRefreshed, "user_id", session.UserID, "expires_at", session.ExpiresAt)
	return session, nil
}
