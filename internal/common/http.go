package common

import "strings"

// BearerToken extracts the credential from an Authorization header value.
// Returns the empty string when the header does not carry a bearer scheme.
func BearerToken(header string) string {
	trimmed := strings.TrimSpace(header)
	if strings.HasPrefix(strings.ToLower(trimmed), "bearer ") {
		return strings.TrimSpace(trimmed[7:])
	}
	return ""
}
