package meli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeCodeForToken_ValidatesBeforeAnyRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		code    string
		id      string
		secret  string
		uri     string
		wantErr string
	}{
		{"missing code", "", "id", "secret", "https://app.example.com/cb", "Código de autorização é obrigatório"},
		{"blank code", "   ", "id", "secret", "https://app.example.com/cb", "Código de autorização é obrigatório"},
		{"missing client id", "TG-abc", "", "secret", "https://app.example.com/cb", "Client ID é obrigatório"},
		{"missing client secret", "TG-abc", "id", "", "https://app.example.com/cb", "Client Secret é obrigatório"},
		{"missing redirect uri", "TG-abc", "id", "secret", "", "Redirect URI é obrigatório"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ExchangeCodeForToken(
				context.Background(),
				tt.code, tt.id, tt.secret, tt.uri,
				WithExchangeTokenURL(srv.URL),
			)
			assert.False(t, out.Success)
			assert.Equal(t, tt.wantErr, out.Error)
		})
	}

	assert.Equal(t, int64(0), calls.Load(), "validation failures must not reach the network")
}

func TestExchangeCodeForToken_StripsWhitespaceFromCode(t *testing.T) {
	t.Parallel()

	var gotCode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotCode = r.PostFormValue("code")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"APP_USR-1-2-x","token_type":"Bearer","expires_in":21600,"user_id":1}`))
	}))
	defer srv.Close()

	out := ExchangeCodeForToken(
		context.Background(),
		"TG-123\n456 789\t",
		"id", "secret", "https://app.example.com/cb",
		WithExchangeTokenURL(srv.URL),
	)

	require.True(t, out.Success, out.Error)
	assert.Equal(t, "TG-123456789", gotCode)
}

func TestExchangeCodeForToken_SendsFormGrant(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "authorization_code", r.PostFormValue("grant_type"))
		assert.Equal(t, "my-id", r.PostFormValue("client_id"))
		assert.Equal(t, "my-secret", r.PostFormValue("client_secret"))
		assert.Equal(t, "https://app.example.com/cb", r.PostFormValue("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "APP_USR-123-456-abc",
			"token_type": "Bearer",
			"expires_in": 21600,
			"scope": "read write offline_access",
			"user_id": 123456,
			"refresh_token": "TG-refresh"
		}`))
	}))
	defer srv.Close()

	out := ExchangeCodeForToken(
		context.Background(),
		"TG-code", "my-id", "my-secret", "https://app.example.com/cb",
		WithExchangeTokenURL(srv.URL),
	)

	require.True(t, out.Success, out.Error)
	assert.Equal(t, "APP_USR-123-456-abc", out.Data.AccessToken)
	assert.Equal(t, "TG-refresh", out.Data.RefreshToken)
	assert.Equal(t, int64(123456), out.Data.UserID)
}

func TestExchangeCodeForToken_InvalidGrant(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"code already consumed"}`))
	}))
	defer srv.Close()

	out := ExchangeCodeForToken(
		context.Background(),
		"TG-used", "id", "secret", "https://app.example.com/cb",
		WithExchangeTokenURL(srv.URL),
	)

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "uso único e vale por 10 minutos")
}

func TestExchangeCodeForToken_NetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	out := ExchangeCodeForToken(
		context.Background(),
		"TG-code", "id", "secret", "https://app.example.com/cb",
		WithExchangeTokenURL(srv.URL),
	)

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "Erro de conexão")
}

func TestTestConnection(t *testing.T) {
	t.Parallel()

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()
		out := TestConnection(context.Background(), "  ")
		assert.False(t, out.Success)
		assert.Equal(t, "Access token é obrigatório", out.Error)
	})

	t.Run("round trip after exchange", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/me", r.URL.Path)
			assert.Equal(t, "Bearer APP_USR-123-456-abc", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":123456,"nickname":"LOJA_TESTE","email":"loja@example.com","site_id":"MLB"}`))
		}))
		defer srv.Close()

		out := TestConnection(context.Background(), "APP_USR-123-456-abc", WithBaseURL(srv.URL))
		require.True(t, out.Success, out.Error)
		assert.Equal(t, "LOJA_TESTE", out.Data.Nickname)
		assert.Equal(t, int64(123456), out.Data.ID)
	})
}
