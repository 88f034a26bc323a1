package apiclient

import (
	"context"
	"fmt"
	"time"

	"github.com/anonymeye/apex-platform/pkg/types"
)

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type,omitempty"`
	User        types.User `json:"user"`
}

// Login exchanges credentials for a session. The caller is responsible for
// persisting the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*types.Session, error) {
	var resp loginResponse
	err := c.do(ctx, "POST", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login: backend returned no access token")
	}
	return &types.Session{
		Token:          resp.AccessToken,
		User:           resp.User,
		OrganizationID: resp.User.OrganizationID,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Register creates an account and returns the resulting session.
func (c *Client) Register(ctx context.Context, email, password, name string) (*types.Session, error) {
	var resp loginResponse
	err := c.do(ctx, "POST", "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("register: backend returned no access token")
	}
	return &types.Session{
		Token:          resp.AccessToken,
		User:           resp.User,
		OrganizationID: resp.User.OrganizationID,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.do(ctx, "GET", "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SwitchOrg re-issues the session scoped to another organization.
func (c *Client) SwitchOrg(ctx context.Context, orgID string) (*types.Session, error) {
	var resp loginResponse
	err := c.do(ctx, "POST", "/auth/switch-org", map[string]string{
		"organization_id": orgID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	session := &types.Session{
		Token:          resp.AccessToken,
		User:           resp.User,
		OrganizationID: orgID,
		CreatedAt:      time.Now().UTC(),
	}
	return session, nil
}
