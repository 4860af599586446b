package qrstyle

import (
	"net/url"
	"strings"
)

// MaxPayloadLength caps payload URLs before they reach the encoder.
const MaxPayloadLength = 4096

// NormalizeURL validates s as an absolute http or https URL and returns its
// cleaned form. Input without a scheme is rejected; see DefaultScheme for the
// lenient variant used by interactive callers.
func NormalizeURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", newError(KindValidation, "payload URL is required")
	}
	if len(v) > MaxPayloadLength {
		return "", newError(KindValidation, "payload URL is too long (max %d bytes)", MaxPayloadLength)
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", wrapError(KindValidation, err, "invalid payload URL")
	}
	if !u.IsAbs() {
		return "", newError(KindValidation, "payload URL must be absolute")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", newError(KindValidation, "only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", newError(KindValidation, "payload URL must include a valid host")
	}
	return u.String(), nil
}

// DefaultScheme prefixes https:// when s carries no scheme.
func DefaultScheme(s string) string {
	v := strings.TrimSpace(s)
	if v != "" && !strings.Contains(v, "://") {
		return "https://" + v
	}
	return v
}
