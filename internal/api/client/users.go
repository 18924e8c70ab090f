package client

import (
	"context"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// createUserRequest contains only the fields the API accepts for create.
type createUserRequest struct {
	Username    string              `json:"username"`
	Password    string              `json:"password"`
	Role        domain.Role         `json:"role"`
	Permissions *domain.Permissions `json:"permissions,omitempty"`
}

// updateUserRequest contains only the fields the API accepts for update.
type updateUserRequest struct {
	Role        domain.Role        `json:"role"`
	Permissions domain.Permissions `json:"permissions"`
	Password    string             `json:"password,omitempty"`
}

// Me returns the calling user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/v1/users/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all dashboard users.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/api/v1/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser adds a dashboard user.
func (c *Client) CreateUser(ctx context.Context, username, password string, role domain.Role, perms *domain.Permissions) (*domain.User, error) {
	var u domain.User
	req := createUserRequest{
		Username:    username,
		Password:    password,
		Role:        role,
		Permissions: perms,
	}
	if err := c.post(ctx, "/api/v1/users", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser changes a user's role, permissions, and optionally password.
func (c *Client) UpdateUser(ctx context.Context, id string, role domain.Role, perms domain.Permissions, password string) (*domain.User, error) {
	var u domain.User
	req := updateUserRequest{
		Role:        role,
		Permissions: perms,
		Password:    password,
	}
	if err := c.put(ctx, "/api/v1/users/"+id, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes a dashboard user.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/users/"+id, nil)
}
