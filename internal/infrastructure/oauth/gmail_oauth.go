package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ssim-converter-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// ErrMissingCredentials is returned when the client or refresh token is not configured
var ErrMissingCredentials = errors.New("gmail credentials not configured")

// GmailOAuth builds read-only Gmail credentials for the inbox poller
type GmailOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

// NewGmailOAuth creates a new Gmail OAuth handler
func NewGmailOAuth(clientID, clientSecret, refreshToken string, logger logger.Logger) *GmailOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	return &GmailOAuth{
		config:       config,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// WithRedirectURL sets the callback the consent screen redirects to
func (o *GmailOAuth) WithRedirectURL(url string) *GmailOAuth {
	o.config.RedirectURL = url
	return o
}

// Validate checks that polling can authenticate
func (o *GmailOAuth) Validate() error {
	var missing []string
	if o.config.ClientID == "" {
		missing = append(missing, "GMAIL_CLIENT_ID")
	}
	if o.config.ClientSecret == "" {
		missing = append(missing, "GMAIL_CLIENT_SECRET")
	}
	if o.refreshToken == "" {
		missing = append(missing, "GMAIL_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrMissingCredentials, missing)
	}
	return nil
}

// GetTokenSource returns a token source refreshing from the stored refresh token
func (o *GmailOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // Force refresh
	}

	return o.config.TokenSource(ctx, token)
}

// GenerateAuthURL generates a URL for the user to authorize the application
func (o *GmailOAuth) GenerateAuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode exchanges an authorization code for a token
func (o *GmailOAuth) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		o.logger.Warn("No refresh token returned; revoke the app's access and retry")
	} else {
		o.logger.Info("Refresh token obtained", "expiry", token.Expiry)
	}

	return token, nil
}

// TokenToJSON converts a token to JSON
func (o *GmailOAuth) TokenToJSON(token *oauth2.Token) (string, error) {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
