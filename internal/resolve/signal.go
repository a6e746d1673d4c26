package resolve

import (
	"net"
	"net/http"
	"strings"

	"github.com/jverho/kontor/internal/domain"
)

// TenantCookie is the session cookie that pins a request to a tenant slug.
const TenantCookie = "tenant-slug"

// ExplicitCompanyHeader carries an explicit company id when the caller does
// not want the tenant's primary company.
const ExplicitCompanyHeader = "X-Company-ID"

// ExtractSignals pulls every tenant-identifying hint out of the request, in
// extraction order: cookie, path segment, subdomain, custom domain. It never
// fails; a missing signal type is simply absent from the result. Precedence
// between signals is the resolver's job.
func ExtractSignals(r *http.Request, baseDomain string) []domain.Signal {
	var signals []domain.Signal

	if c, err := r.Cookie(TenantCookie); err == nil && c.Value != "" {
		signals = append(signals, domain.Signal{Source: domain.SignalCookie, Value: c.Value})
	}

	if slug := pathTenantSlug(r.URL.Path); slug != "" {
		signals = append(signals, domain.Signal{Source: domain.SignalPath, Value: slug})
	}

	host := hostname(r.Host)
	switch {
	case isBareHost(host):
		// Bare development hosts (localhost, IP literals) carry no
		// host-derived signal.
	case baseDomain != "" && strings.HasSuffix(host, "."+baseDomain):
		sub := strings.TrimSuffix(host, "."+baseDomain)
		if sub != "" && !strings.Contains(sub, ".") {
			signals = append(signals, domain.Signal{Source: domain.SignalSubdomain, Value: sub})
		}
	case host != "" && host != baseDomain:
		signals = append(signals, domain.Signal{Source: domain.SignalCustomDomain, Value: host})
	}

	return signals
}

// ExplicitCompanyID returns the company id a request names explicitly, from
// the company_id query parameter or the X-Company-ID header. Empty when the
// caller wants the implicit primary company.
func ExplicitCompanyID(r *http.Request) string {
	if id := r.URL.Query().Get("company_id"); id != "" {
		return id
	}
	return r.Header.Get(ExplicitCompanyHeader)
}

// pathTenantSlug recognizes the /tenant/{slug}/... path convention.
func pathTenantSlug(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "tenant" && parts[1] != "" {
		return parts[1]
	}
	return ""
}

func hostname(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return hostport
}

func isBareHost(host string) bool {
	if host == "" || host == "localhost" {
		return true
	}
	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		return true
	}
	return !strings.Contains(host, ".")
}
