package meli

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const minTokenLength = 20

// Accepted access token shapes. This is a paste-error heuristic, not an
// authoritative check: it exists to catch operators pasting the
// authorization code where the access token belongs, before the provider
// returns an opaque 401. The provider call remains the source of truth.
var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^APP_USR-[\w-]+$`),
	regexp.MustCompile(`(?i)^[a-f0-9]{24}-\d+$`),
	regexp.MustCompile(`^[a-zA-Z0-9_-]{30,}$`),
}

// IsValidTokenFormat reports whether token plausibly looks like a Mercado
// Livre access token. False negatives and positives are acceptable.
func IsValidTokenFormat(token string) bool {
	trimmed := strings.TrimSpace(token)
	if len(trimmed) < minTokenLength {
		return false
	}
	for _, p := range tokenPatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// ValidateAuthorizationCode checks a pasted authorization code for the
// common copy-paste mistakes and returns a diagnostic, or "" when the code
// looks usable.
func ValidateAuthorizationCode(code string) string {
	clean := strings.TrimSpace(code)
	switch {
	case len(clean) < 10:
		return "Código muito curto - verifique se copiou corretamente"
	case strings.Contains(clean, "?code="):
		return "Copie apenas o valor após ?code=, não a URL inteira"
	case strings.Contains(clean, " "):
		return "Código contém espaços - remova espaços extras"
	default:
		return ""
	}
}

// ValidateCredentials checks the OAuth application credentials before any
// network call. It returns whether the set is usable plus one message per
// problem found.
func ValidateCredentials(clientID, clientSecret, redirectURI string) (bool, []string) {
	var errs []string

	if strings.TrimSpace(clientID) == "" {
		errs = append(errs, "Client ID é obrigatório")
	}
	if strings.TrimSpace(clientSecret) == "" {
		errs = append(errs, "Client Secret é obrigatório")
	}
	trimmedURI := strings.TrimSpace(redirectURI)
	if trimmedURI == "" {
		errs = append(errs, "Redirect URI é obrigatório")
	} else if u, err := url.Parse(trimmedURI); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "Redirect URI deve ser uma URL absoluta")
	}

	return len(errs) == 0, errs
}

// AuthorizationURL builds the browser consent URL for the authorization
// code flow. state is optional.
func AuthorizationURL(clientID, redirectURI, state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", strings.TrimSpace(clientID))
	params.Set("redirect_uri", strings.TrimSpace(redirectURI))
	params.Set("scope", "read write offline_access")
	if state != "" {
		params.Set("state", state)
	}
	return fmt.Sprintf("%s?%s", defaultAuthURL, params.Encode())
}
