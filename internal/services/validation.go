package services

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength = 100
	maxTextLength = 500
)

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email,max=254") == nil
}

func validOTPFormat(code string, length int) bool {
	return validate.Var(code, fmt.Sprintf("required,numeric,len=%d", length)) == nil
}

// cleanName trims name and reports whether it has 1 to 100 characters
func cleanName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	return name, n >= 1 && n <= maxNameLength
}

// ValidDomain reports whether raw is an absolute http or https URL with a
// fully qualified host (or IP) and no query or fragment.
func ValidDomain(raw string) bool {
	if raw == "" || strings.ContainsAny(raw, "?# \t\r\n") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Opaque != "" {
		return false
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	return net.ParseIP(host) != nil || validate.Var(host, "fqdn") == nil
}

func validPage(raw string) bool {
	if validate.Var(raw, "url") != nil {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs()
}
