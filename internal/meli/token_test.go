package meli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vieirasantos/meli-seller-hub/internal/meli"
)

func TestIsValidTokenFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "standard APP_USR token", token: "APP_USR-1234567890-123456-abcdef123456", want: true},
		{name: "APP_USR lowercase prefix", token: "app_usr-1234567890-123456-abcdef123456", want: true},
		{name: "hex-number shape", token: "a1b2c3d4e5f6a7b8c9d0e1f2-4815162342", want: true},
		{name: "long generic token", token: "zXy_1234567890abcdefghijklmnop-qrstuv", want: true},
		{name: "surrounding whitespace trimmed", token: "  APP_USR-1234567890-123456-abcdef  ", want: true},
		{name: "empty", token: "", want: false},
		{name: "whitespace only", token: "   ", want: false},
		{name: "short authorization code", token: "TG-12345678", want: false},
		{name: "nineteen chars", token: strings.Repeat("a", 19), want: false},
		{name: "twenty chars but wrong shape", token: "TG-abc!def!ghi!jkl!m", want: false},
		{name: "contains spaces inside", token: "APP_USR 1234567890 123456 abcdef1234", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, meli.IsValidTokenFormat(tt.token))
		})
	}
}

func TestIsValidTokenFormat_AllShortTokensRejected(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		token := strings.Repeat("x", i)
		assert.Falsef(t, meli.IsValidTokenFormat(token), "length %d must be rejected", i)
	}
}

// A plausible-looking bogus token passes the heuristic; rejecting it is the
// provider's job, not this check's.
func TestIsValidTokenFormat_AcceptsBogusButWellFormed(t *testing.T) {
	t.Parallel()

	assert.True(t, meli.IsValidTokenFormat("APP_USR-0000000000-000000-deadbeef"))
}

func TestValidateAuthorizationCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		want string
	}{
		{name: "usable code", code: "TG-68b1c2d3e4f5a6b7c8d9e0f1-123456789", want: ""},
		{name: "too short", code: "TG-123", want: "Código muito curto - verifique se copiou corretamente"},
		{name: "whole URL pasted", code: "https://app.example.com/callback?code=TG-68b1c2d3", want: "Copie apenas o valor após ?code=, não a URL inteira"},
		{name: "embedded spaces", code: "TG-68b1c2d3 e4f5a6b7", want: "Código contém espaços - remova espaços extras"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, meli.ValidateAuthorizationCode(tt.code))
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	t.Parallel()

	valid, errs := meli.ValidateCredentials("12345", "secret", "https://app.example.com/callback")
	assert.True(t, valid)
	assert.Empty(t, errs)

	valid, errs = meli.ValidateCredentials("", "", "")
	assert.False(t, valid)
	assert.Len(t, errs, 3)

	valid, errs = meli.ValidateCredentials("12345", "secret", "not-a-url")
	assert.False(t, valid)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "URL absoluta")
}

func TestAuthorizationURL(t *testing.T) {
	t.Parallel()

	u := meli.AuthorizationURL("12345", "https://app.example.com/callback", "")
	assert.Contains(t, u, "https://auth.mercadolivre.com.br/authorization?")
	assert.Contains(t, u, "response_type=code")
	assert.Contains(t, u, "client_id=12345")
	assert.Contains(t, u, "redirect_uri=https%3A%2F%2Fapp.example.com%2Fcallback")
	assert.Contains(t, u, "scope=read+write+offline_access")
	assert.NotContains(t, u, "state=")

	withState := meli.AuthorizationURL("12345", "https://app.example.com/callback", "xyz")
	assert.Contains(t, withState, "state=xyz")
}
