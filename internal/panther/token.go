package panther

import "context"

// TokenProvider supplies the API token attached to each request. How the
// token is obtained or refreshed is the provider's concern; the client only
// attaches what it is given.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider returning a fixed token, the common case
// for Panther API tokens supplied via configuration.
type StaticToken string

func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}
