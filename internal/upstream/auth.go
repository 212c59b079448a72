package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
)

// Me resolves the account behind the session cookies. An anonymous
// session surfaces as ErrUnauthorized.
func (c *Client) Me(ctx context.Context, session *models.Session) (*models.Account, error) {
	var account models.Account
	if err := c.getJSON(ctx, session, "/me/", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Login opens an upstream session. The returned cookies carry the new
// session and anti-forgery tokens and must be relayed to the caller.
func (c *Client) Login(ctx context.Context, session *models.Session, creds *dto.LoginRequest) (*models.Account, []*http.Cookie, error) {
	var account models.Account
	cookies, err := c.postJSON(ctx, session, "/login/", creds, &account)
	if err != nil {
		return nil, cookies, err
	}
	return &account, cookies, nil
}

// Logout closes the upstream session. The upstream answers with expired
// cookies that the caller needs to clear its own.
func (c *Client) Logout(ctx context.Context, session *models.Session) ([]*http.Cookie, error) {
	return c.postJSON(ctx, session, "/logout/", struct{}{}, nil)
}

// Register creates an account. The upstream logs the new account in, so
// the returned cookies are a live session.
func (c *Client) Register(ctx context.Context, session *models.Session, req *dto.RegisterRequest) (*models.Account, []*http.Cookie, error) {
	var account models.Account
	cookies, err := c.postJSON(ctx, session, "/register/", req, &account)
	if err != nil {
		return nil, cookies, err
	}
	return &account, cookies, nil
}

// UpdateProfile patches the caller's own account.
func (c *Client) UpdateProfile(ctx context.Context, session *models.Session, id int64, req *dto.UpdateProfileRequest) (*models.Account, error) {
	var account models.Account
	if err := c.patchJSON(ctx, session, fmt.Sprintf("/users/%d/", id), req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes the caller's own account upstream.
func (c *Client) DeleteAccount(ctx context.Context, session *models.Session, id int64) error {
	req, err := c.newRequest(ctx, session, http.MethodDelete, fmt.Sprintf("/users/%d/", id), nil, "")
	if err != nil {
		return err
	}
	_, _, err = c.do(req)
	return err
}
