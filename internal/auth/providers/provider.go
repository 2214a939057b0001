package providers

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuthUser is the normalized identity returned by an OAuth provider.
type OAuthUser struct {
	ID        string
	Username  string
	Name      string
	AvatarURL string
}

// OAuthProvider is implemented by every login provider the server accepts.
type OAuthProvider interface {
	Name() string
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUser, error)
}
