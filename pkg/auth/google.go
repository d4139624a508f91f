package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reflaxess123/obedi/pkg/httpclient"
)

// ErrInvalidGoogleToken is returned for any ID token the tokeninfo endpoint
// rejects or that was issued for another client.
var ErrInvalidGoogleToken = errors.New("auth: invalid google token")

// GoogleProfile is the subset of the tokeninfo payload used to provision users.
type GoogleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Aud     string `json:"aud"`
}

// GoogleVerifier checks a Google ID token and returns the profile it carries.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// TokenInfoVerifier validates ID tokens against Google's tokeninfo endpoint.
type TokenInfoVerifier struct {
	ClientID string
	Endpoint string
	Client   *httpclient.Client
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

func NewTokenInfoVerifier(clientID string) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		ClientID: clientID,
		Endpoint: googleTokenInfoURL,
		Client:   httpclient.New(5 * time.Second),
	}
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	if idToken == "" || v.ClientID == "" {
		return nil, ErrInvalidGoogleToken
	}

	resp, err := v.Client.Get(v.Endpoint).
		Query("id_token", idToken).
		Retry(2, 200*time.Millisecond).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth/google: tokeninfo: %w", err)
	}
	if !resp.OK() {
		return nil, ErrInvalidGoogleToken
	}

	var p GoogleProfile
	if err := resp.JSON(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}
	if p.Aud != v.ClientID || p.Email == "" {
		return nil, ErrInvalidGoogleToken
	}
	return &p, nil
}
