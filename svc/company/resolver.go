package company

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const (
	// MaxIDLength keeps identifiers DNS compatible.
	MaxIDLength = 63

	// DefaultHeader carries the company selected by the portal frontend.
	DefaultHeader = "X-Company-ID"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Resolver extracts the company identifier from a request.
// It returns an empty string when the request does not name a company.
type Resolver func(r *http.Request) (string, error)

// Valid reports whether id is an acceptable company identifier.
func Valid(id string) bool {
	return id != "" && len(id) <= MaxIDLength && idPattern.MatchString(id)
}

func checked(source, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if !Valid(value) {
		return "", fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, source, value)
	}
	return value, nil
}

// HeaderResolver reads the company from a request header, DefaultHeader when name is empty.
func HeaderResolver(name string) Resolver {
	if name == "" {
		name = DefaultHeader
	}
	return func(r *http.Request) (string, error) {
		return checked("header", r.Header.Get(name))
	}
}

// QueryResolver reads the company from a query parameter.
func QueryResolver(param string) Resolver {
	return func(r *http.Request) (string, error) {
		return checked("query", r.URL.Query().Get(param))
	}
}

// SubdomainResolver reads the company from the first label of a host under
// baseDomain, so acme.bi.example.com resolves to "acme" for "bi.example.com".
// The bare base domain and "www" resolve to nothing.
func SubdomainResolver(baseDomain string) Resolver {
	suffix := "." + strings.TrimPrefix(baseDomain, ".")
	return func(r *http.Request) (string, error) {
		host := r.Host
		if i := strings.LastIndex(host, ":"); i != -1 && !strings.Contains(host[i:], "]") {
			host = host[:i]
		}
		sub, ok := strings.CutSuffix(strings.ToLower(host), suffix)
		if !ok || sub == "" {
			return "", nil
		}
		label, _, _ := strings.Cut(sub, ".")
		if label == "www" {
			return "", nil
		}
		return checked("subdomain", label)
	}
}

// Chain tries resolvers in order and returns the first non-empty result.
// Errors are reported only when no resolver produced an identifier.
func Chain(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		var errs []error
		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if id != "" {
				return id, nil
			}
		}
		return "", errors.Join(errs...)
	}
}
