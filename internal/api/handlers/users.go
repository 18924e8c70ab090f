package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vieirasantos/meli-seller-hub/internal/store"
	"github.com/vieirasantos/meli-seller-hub/internal/users"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// sessionHeader carries the opaque session token issued at login.
const sessionHeader = "X-Session-Token"

// UsersHandler handles login, sessions, and user management endpoints.
type UsersHandler struct {
	svc *users.Service
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(svc *users.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// userError maps service errors onto HTTP responses.
func userError(err error) error {
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		return huma.Error401Unauthorized("invalid credentials")
	case errors.Is(err, users.ErrSessionInvalid):
		return huma.Error401Unauthorized("session invalid or expired")
	case errors.Is(err, users.ErrPermissionDenied):
		return huma.Error403Forbidden("permission denied")
	case errors.Is(err, users.ErrMasterProtected):
		return huma.Error403Forbidden("master user is protected")
	case errors.Is(err, users.ErrPasswordTooShort):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound("user not found")
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}

// actor resolves the calling user from the session token header.
func (h *UsersHandler) actor(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, huma.Error401Unauthorized("missing session token")
	}
	u, err := h.svc.Authenticate(ctx, token)
	if err != nil {
		return nil, userError(err)
	}
	return u, nil
}

// --- Input/Output types ---

// LoginInput is the request body for login.
type LoginInput struct {
	Body struct {
		Username string `json:"username" doc:"Dashboard username"`
		Password string `json:"password" doc:"Dashboard password"`
	}
}

// LoginOutput carries the issued session token and the authenticated user.
type LoginOutput struct {
	Body struct {
		Token string      `json:"token" doc:"Opaque session token"`
		User  domain.User `json:"user"`
	}
}

// LogoutInput is the input for logout.
type LogoutInput struct {
	Token string `header:"X-Session-Token" doc:"Session token"`
}

// LogoutOutput is the response for logout.
type LogoutOutput struct {
	Body StatusResponse
}

// MeInput is the input for fetching the calling user.
type MeInput struct {
	Token string `header:"X-Session-Token" doc:"Session token"`
}

// MeOutput is the response for fetching the calling user.
type MeOutput struct {
	Body domain.User
}

// ListUsersInput is the input for listing users.
type ListUsersInput struct {
	Token string `header:"X-Session-Token" doc:"Session token"`
}

// ListUsersOutput is the response for listing users.
type ListUsersOutput struct {
	Body []domain.User
}

// CreateUserInput is the request body for creating a user.
type CreateUserInput struct {
	Token string `header:"X-Session-Token" doc:"Session token"`
	Body  struct {
		Username    string              `json:"username"              doc:"New username"`
		Password    string              `json:"password"              doc:"Initial password (min 8 chars)"`
		Role        domain.Role         `json:"role"                  doc:"User role"          enum:"admin,user"`
		Permissions *domain.Permissions `json:"permissions,omitempty" doc:"Explicit grants; defaults derive from the role"`
	}
}

// CreateUserOutput is the response for creating a user.
type CreateUserOutput struct {
	Body domain.User
}

// UpdateUserInput is the request body for updating a user.
type UpdateUserInput struct {
	Token string `header:"X-Session-Token" doc:"Session token"`
	ID    string `path:"id"                doc:"User UUID"`
	Body  struct {
		Role        domain.Role        `json:"role"               doc:"User role" enum:"admin,user,master"`
		Permissions domain.Permissions `json:"permissions"`
		Password    string             `json:"password,omitempty" doc:"New password, when rotating"`
	}
}

// UpdateUserOutput is the response for updating a user.
type UpdateUserOutput struct {
	Body domain.User
}

// DeleteUserInput is the input for deleting a user.
type DeleteUserInput struct {
	Token string `header:"X-Session-Token" doc:"Session token"`
	ID    string `path:"id"                doc:"User UUID"`
}

// DeleteUserOutput is the response for deleting a user.
type DeleteUserOutput struct {
	Body StatusResponse
}

// --- Handlers ---

// Login authenticates a user and issues a session token.
func (h *UsersHandler) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	token, u, err := h.svc.Login(ctx, input.Body.Username, input.Body.Password)
	if err != nil {
		return nil, userError(err)
	}

	resp := &LoginOutput{}
	resp.Body.Token = token
	resp.Body.User = *u
	return resp, nil
}

// Logout drops the session token.
func (h *UsersHandler) Logout(_ context.Context, input *LogoutInput) (*LogoutOutput, error) {
	h.svc.Logout(input.Token)

	resp := &LogoutOutput{}
	resp.Body.Status = "logged out"
	return resp, nil
}

// Me returns the calling user.
func (h *UsersHandler) Me(ctx context.Context, input *MeInput) (*MeOutput, error) {
	u, err := h.actor(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	return &MeOutput{Body: *u}, nil
}

// ListUsers returns all dashboard users.
func (h *UsersHandler) ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	actor, err := h.actor(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	list, err := h.svc.List(ctx, actor)
	if err != nil {
		return nil, userError(err)
	}

	if list == nil {
		list = []domain.User{}
	}
	return &ListUsersOutput{Body: list}, nil
}

// CreateUser adds a dashboard user.
func (h *UsersHandler) CreateUser(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
	actor, err := h.actor(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	perms := users.DefaultPermissions(input.Body.Role)
	if input.Body.Permissions != nil {
		perms = *input.Body.Permissions
	}

	u, err := h.svc.Create(ctx, actor, input.Body.Username, input.Body.Password, input.Body.Role, perms)
	if err != nil {
		return nil, userError(err)
	}
	return &CreateUserOutput{Body: *u}, nil
}

// UpdateUser changes a user's role, permissions, and optionally password.
func (h *UsersHandler) UpdateUser(ctx context.Context, input *UpdateUserInput) (*UpdateUserOutput, error) {
	actor, err := h.actor(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	u, err := h.svc.Update(ctx, actor, input.ID, input.Body.Role, input.Body.Permissions, input.Body.Password)
	if err != nil {
		return nil, userError(err)
	}
	return &UpdateUserOutput{Body: *u}, nil
}

// DeleteUser removes a dashboard user.
func (h *UsersHandler) DeleteUser(ctx context.Context, input *DeleteUserInput) (*DeleteUserOutput, error) {
	actor, err := h.actor(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	if err := h.svc.Delete(ctx, actor, input.ID); err != nil {
		return nil, userError(err)
	}

	resp := &DeleteUserOutput{}
	resp.Body.Status = "deleted"
	return resp, nil
}

// RegisterUserRoutes registers login and user management endpoints with the
// Huma API.
func RegisterUserRoutes(api huma.API, h *UsersHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Tags:        []string{"users"},
		Errors:      []int{http.StatusUnauthorized},
	}, h.Login)

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Log out",
		Tags:        []string{"users"},
	}, h.Logout)

	huma.Register(api, huma.Operation{
		OperationID: "get-current-user",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get the calling user",
		Tags:        []string{"users"},
		Errors:      []int{http.StatusUnauthorized},
	}, h.Me)

	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Tags:        []string{"users"},
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, h.ListUsers)

	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Create a user",
		Tags:          []string{"users"},
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusUnprocessableEntity,
		},
	}, h.CreateUser)

	huma.Register(api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{id}",
		Summary:     "Update a user",
		Tags:        []string{"users"},
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
		},
	}, h.UpdateUser)

	huma.Register(api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete a user",
		Tags:        []string{"users"},
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
		},
	}, h.DeleteUser)
}
