package oauth

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"ssim-converter-service/pkg/logger"
)

func TestGmailOAuth_Validate(t *testing.T) {
	err := NewGmailOAuth("id", "", "", logger.NewNop()).Validate()
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Contains(t, err.Error(), "GMAIL_CLIENT_SECRET")
	assert.Contains(t, err.Error(), "GMAIL_REFRESH_TOKEN")
	assert.NotContains(t, err.Error(), "GMAIL_CLIENT_ID")

	assert.NoError(t, NewGmailOAuth("id", "secret", "refresh", logger.NewNop()).Validate())
}

func TestGmailOAuth_GenerateAuthURL(t *testing.T) {
	o := NewGmailOAuth("client-1", "secret", "", logger.NewNop()).
		WithRedirectURL("http://localhost:8090/oauth2callback")

	u, err := url.Parse(o.GenerateAuthURL("abc"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "abc", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "http://localhost:8090/oauth2callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "gmail.readonly")
}

func TestTokenToJSON(t *testing.T) {
	o := NewGmailOAuth("", "", "", logger.NewNop())
	out, err := o.TokenToJSON(&oauth2.Token{RefreshToken: "r-1", TokenType: "Bearer"})
	require.NoError(t, err)
	assert.Contains(t, out, `"refresh_token": "r-1"`)
}
