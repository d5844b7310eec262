// internal/common/auth/login.go
package auth

import (
	"context"
	"fmt"
	"strings"

	apperrors "wanted-applier/internal/common/errors"
	apphttp "wanted-applier/internal/common/http"
	"wanted-applier/internal/models"
)

// DefaultClientID is the client id the board's web login uses.
const DefaultClientID = "AhWBZolyUalsuJpHVRDrE4Px"

const (
	tokenPath    = "/v1/auth/token"
	callbackPath = "/api/chaos/auths/v1/callback/set-token"
)

// Client exchanges account credentials for a board session.
type Client struct {
	baseURL  string
	idURL    string
	clientID string
	http     *apphttp.Client
}

// TokenRequest is the password grant body accepted by the identity API.
type TokenRequest struct {
	GrantType   string `json:"grant_type"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	ClientID    string `json:"client_id"`
	RedirectURL string `json:"redirect_url"`
}

// TokenResponse holds the identity API's answer; Expires is unix seconds.
type TokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

func NewClient(baseURL, idURL, clientID string, httpClient *apphttp.Client) *Client {
	if clientID == "" {
		clientID = DefaultClientID
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		idURL:    strings.TrimSuffix(idURL, "/"),
		clientID: clientID,
		http:     httpClient,
	}
}

// Login performs the password grant. The request is sent without a session
// cookie. A rejected login keeps the underlying *errors.RequestError in its
// chain so callers can still inspect the status.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewAuthenticationError(fmt.Errorf("email and password are required"))
	}

	req := TokenRequest{
		GrantType:   "password",
		Email:       email,
		Password:    password,
		ClientID:    c.clientID,
		RedirectURL: c.baseURL + callbackPath,
	}

	var resp TokenResponse
	if err := c.http.Post(ctx, c.idURL+tokenPath, req, &resp); err != nil {
		return nil, fmt.Errorf("login %s: %w", email, err)
	}

	if resp.Token == "" || resp.Expires == 0 {
		return nil, apperrors.NewInvariantError("login must return a token and expiry", fmt.Sprintf("email=%s", email))
	}

	return &models.Session{Token: resp.Token, Expiry: resp.Expires}, nil
}
