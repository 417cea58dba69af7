package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var ErrGoogleDisabled = errors.New("google login is not configured")

// GoogleAuthenticator turns an OAuth authorization code into a verified email.
type GoogleAuthenticator interface {
	Email(ctx context.Context, code string) (string, error)
}

type googleAuthenticator struct {
	oauthConfig *oauth2.Config
	userInfoURL string
}

func NewGoogleAuthenticator(clientID, clientSecret, redirectURL string) GoogleAuthenticator {
	return &googleAuthenticator{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *googleAuthenticator) Email(ctx context.Context, code string) (string, error) {
	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange google code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google userinfo returned %d", resp.StatusCode)
	}

	var info struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode google userinfo: %w", err)
	}
	if info.Email == "" || !info.EmailVerified {
		return "", errors.New("google account has no verified email")
	}
	return info.Email, nil
}
