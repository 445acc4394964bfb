package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"fujao/internal/model"
)

// RegisterUser creates a new account and returns the stored user.
func (c *Client) RegisterUser(ctx context.Context, user *model.User) (*model.User, error) {
	var created model.User
	if err := c.send(ctx, http.MethodPost, "/api/usuarios", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Login authenticates and returns the user record on success.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	var user model.User
	if err := c.send(ctx, http.MethodPost, "/api/usuarios/login", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByEmail looks a user up by email address.
func (c *Client) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	endpoint := "/api/usuarios/email/" + url.PathEscape(email)
	if err := c.get(ctx, endpoint, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByID looks a user up by id.
func (c *Client) UserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, fmt.Sprintf("/api/usuarios/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates profile fields and returns the stored user.
func (c *Client) UpdateUser(ctx context.Context, id int64, user *model.User) (*model.User, error) {
	var updated model.User
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/api/usuarios/%d", id), user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
