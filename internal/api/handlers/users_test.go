package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vieirasantos/meli-seller-hub/internal/api/handlers"
	"github.com/vieirasantos/meli-seller-hub/internal/store/storetest"
	"github.com/vieirasantos/meli-seller-hub/internal/users"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

const masterPassword = "senha-master-123"

func newUsersAPI(t *testing.T) (humatest.TestAPI, *users.Service) {
	t.Helper()

	svc := users.New(storetest.New())
	require.NoError(t, svc.EnsureMaster(context.Background(), masterPassword))

	h := handlers.NewUsersHandler(svc)
	_, api := humatest.New(t)
	handlers.RegisterUserRoutes(api, h)
	return api, svc
}

func loginMaster(t *testing.T, svc *users.Service) string {
	t.Helper()
	token, _, err := svc.Login(context.Background(), users.MasterUsername, masterPassword)
	require.NoError(t, err)
	return token
}

func TestLogin(t *testing.T) {
	t.Parallel()

	api, _ := newUsersAPI(t)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		resp := api.Post("/api/v1/auth/login", map[string]any{
			"username": "master",
			"password": masterPassword,
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"token"`)
		assert.Contains(t, resp.Body.String(), `"role":"master"`)
		assert.NotContains(t, resp.Body.String(), "password_hash")
	})

	t.Run("wrong password returns 401", func(t *testing.T) {
		resp := api.Post("/api/v1/auth/login", map[string]any{
			"username": "master",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestMe(t *testing.T) {
	t.Parallel()

	api, svc := newUsersAPI(t)
	token := loginMaster(t, svc)

	resp := api.Get("/api/v1/users/me", "X-Session-Token: "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"username":"master"`)

	resp = api.Get("/api/v1/users/me", "X-Session-Token: bogus")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	t.Parallel()

	api, svc := newUsersAPI(t)
	token := loginMaster(t, svc)

	resp := api.Post("/api/v1/auth/logout", "X-Session-Token: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Get("/api/v1/users/me", "X-Session-Token: "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	api, svc := newUsersAPI(t)
	token := loginMaster(t, svc)

	t.Run("master creates an admin", func(t *testing.T) {
		resp := api.Post("/api/v1/users", "X-Session-Token: "+token, map[string]any{
			"username": "carla",
			"password": "senha-segura",
			"role":     "admin",
		})
		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Contains(t, resp.Body.String(), `"username":"carla"`)
		assert.Contains(t, resp.Body.String(), `"manage_users":true`)
	})

	t.Run("short password rejected", func(t *testing.T) {
		resp := api.Post("/api/v1/users", "X-Session-Token: "+token, map[string]any{
			"username": "rafa",
			"password": "curta",
			"role":     "user",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("regular user cannot create", func(t *testing.T) {
		resp := api.Post("/api/v1/users", "X-Session-Token: "+token, map[string]any{
			"username": "joao",
			"password": "senha-segura",
			"role":     "user",
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		joaoToken, _, err := svc.Login(context.Background(), "joao", "senha-segura")
		require.NoError(t, err)

		resp = api.Post("/api/v1/users", "X-Session-Token: "+joaoToken, map[string]any{
			"username": "intruso",
			"password": "senha-segura",
			"role":     "user",
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	api, svc := newUsersAPI(t)
	token := loginMaster(t, svc)

	resp := api.Get("/api/v1/users", "X-Session-Token: "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"username":"master"`)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	api, svc := newUsersAPI(t)
	token := loginMaster(t, svc)

	created, err := svc.Create(
		context.Background(),
		mustMaster(t, svc),
		"bruno", "senha-segura", "user",
		users.DefaultPermissions("user"),
	)
	require.NoError(t, err)

	resp := api.Put("/api/v1/users/"+created.ID, "X-Session-Token: "+token, map[string]any{
		"role": "admin",
		"permissions": map[string]any{
			"view_dashboard": true,
			"manage_sync":    true,
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"role":"admin"`)
	assert.Contains(t, resp.Body.String(), `"manage_sync":true`)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	api, svc := newUsersAPI(t)
	token := loginMaster(t, svc)

	master := mustMaster(t, svc)
	created, err := svc.Create(
		context.Background(),
		master,
		"temp", "senha-segura", "user",
		users.DefaultPermissions("user"),
	)
	require.NoError(t, err)

	resp := api.Delete("/api/v1/users/"+created.ID, "X-Session-Token: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	// The master user is protected.
	resp = api.Delete("/api/v1/users/"+master.ID, "X-Session-Token: "+token)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func mustMaster(t *testing.T, svc *users.Service) *domain.User {
	t.Helper()
	_, u, err := svc.Login(context.Background(), users.MasterUsername, masterPassword)
	require.NoError(t, err)
	return u
}
