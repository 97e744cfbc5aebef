package common

import (
	"net/mail"
	"net/url"
	"strings"
)

// IsValidBaseURL reports whether rawurl is an absolute http(s) URL usable as
// an API origin.
func IsValidBaseURL(rawurl string) bool {
	parsed, err := url.ParseRequestURI(rawurl)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return (scheme == "http" || scheme == "https") && len(parsed.Host) > 0
}

func IsValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
