// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"fmt"
)

// Credentials are the username/password pair exchanged for a bearer token.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token, installs it on the client,
// and returns it so the caller can persist it for later sessions.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.postJSON(ctx, "/api/login", creds, &body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", &Failure{Message: fmt.Sprintf("login response missing access token (token_type %q)", body.TokenType)}
	}

	c.SetToken(body.AccessToken)
	return body.AccessToken, nil
}
