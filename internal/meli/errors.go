package meli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ScopeErrorMessage is the fixed remediation text for permission failures.
// A token issued before a scope change cannot be upgraded in place; the
// operator must re-authorize and exchange a fresh code.
const ScopeErrorMessage = `Erro de permissão: scopes necessários

Sua aplicação precisa dos seguintes scopes: read, write, offline_access

Como resolver:
1. Configure os scopes: acesse https://developers.mercadolibre.com.br/,
   abra "Minhas Aplicações", marque read, write e offline_access e salve.
2. Obtenha um novo código: abra a URL de autorização, autorize novamente
   e copie o código retornado na URL de redirect.
3. Gere um novo token: troque o novo código por um novo access token.

Atenção: o token antigo não funciona após mudar os scopes.`

// NetworkErrorMessage is the fixed guidance for transport-level failures.
// No automatic retry is attempted.
const NetworkErrorMessage = `Erro de conexão com a API do Mercado Livre

Possíveis causas: sem conexão com a internet, firewall ou proxy bloqueando
a requisição, ou API temporariamente indisponível.

Verifique sua conexão e tente novamente em alguns minutos.`

const invalidGrantMessage = "Código de autorização inválido ou expirado. " +
	"O código é de uso único e vale por 10 minutos; obtenha um novo código e tente de novo."

const invalidClientMessage = "Client ID ou Client Secret inválidos. " +
	"Verifique as credenciais cadastradas na sua aplicação."

const invalidRequestMessage = "Requisição inválida. " +
	"Verifique se todos os campos estão preenchidos corretamente."

// isScopeText reports whether an error payload mentions a missing scope.
// The provider is inconsistent about where the hint appears, so the whole
// body is searched for the known scope names.
func isScopeText(body []byte) bool {
	s := strings.ToLower(string(body))
	for _, needle := range []string{"scope", "read", "write", "offline_access"} {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// classifyAPIError maps a non-2xx resource endpoint response to an
// operator-facing diagnostic.
func classifyAPIError(status int, body []byte) string {
	if status == http.StatusForbidden || isScopeText(body) {
		return ScopeErrorMessage
	}

	if status == http.StatusUnauthorized {
		return fmt.Sprintf("Token inválido ou expirado (HTTP 401)\n\nDetalhes: %s\n\n"+
			"Causas prováveis: token expirado, token corrompido, ou uso do código "+
			"de autorização no lugar do access token. Obtenha um novo access token.",
			providerMessage(body))
	}

	return fmt.Sprintf("Erro HTTP %d\n\nMensagem: %s", status, providerMessage(body))
}

// classifyTokenError maps a non-2xx token endpoint response to an
// operator-facing diagnostic. invalid_grant gets the code-exchange-specific
// explanation: authorization codes are single use with a short validity.
func classifyTokenError(status int, body []byte) string {
	var payload apiError
	_ = json.Unmarshal(body, &payload) //nolint:errcheck // best-effort error parsing

	if payload.Error == "" && isScopeText(body) {
		return ScopeErrorMessage
	}

	switch payload.Error {
	case "invalid_grant":
		return invalidGrantMessage
	case "invalid_client":
		return invalidClientMessage
	case "invalid_request":
		return invalidRequestMessage
	case "invalid_scope":
		return ScopeErrorMessage
	case "":
		return fmt.Sprintf("Erro HTTP %d\n\nMensagem: %s", status, providerMessage(body))
	default:
		if isScopeText(body) {
			return ScopeErrorMessage
		}
		if payload.ErrorDescription != "" {
			return payload.ErrorDescription
		}
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
}

// networkError renders a transport failure as the fixed connectivity
// guidance plus the underlying error detail.
func networkError(err error) string {
	return NetworkErrorMessage + "\n\nDetalhes: " + err.Error()
}

// providerMessage extracts the provider's message field from an error body,
// falling back to the raw body.
func providerMessage(body []byte) string {
	var payload apiError
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if len(body) == 0 {
		return "(sem corpo de resposta)"
	}
	return string(body)
}

// DiagnoseAuthorizationError maps free-form authorization error text to the
// scope remediation message when it looks permission-related; anything else
// passes through unchanged.
func DiagnoseAuthorizationError(errText string) string {
	lower := strings.ToLower(errText)
	for _, needle := range []string{"scope", "unauthorized", "policy", "permiss"} {
		if strings.Contains(lower, needle) {
			return ScopeErrorMessage
		}
	}
	return errText
}
