package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	corsAllowHeaders = strings.Join([]string{
		"Accept", "Authorization", "Cache-Control", "Content-Type",
		"Last-Event-ID", "X-Request-Id", "X-Requested-With", "X-Signup-Key",
	}, ", ")
	corsAllowMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", ")
)

// corsPolicy matches request hosts against CORS_ALLOWED_HOSTS. An entry
// "*.ventech.id" admits any subdomain of ventech.id but not the apex.
type corsPolicy struct {
	exact    map[string]struct{}
	suffixes []string
}

func newCORSPolicy(hosts []string) corsPolicy {
	p := corsPolicy{exact: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			p.suffixes = append(p.suffixes, h[1:])
		default:
			p.exact[h] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allows(host string) bool {
	if host == "" {
		return false
	}
	if _, ok := p.exact[host]; ok {
		return true
	}
	for _, s := range p.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

// requestOrigin returns scheme://host of the Origin header, falling back to
// the Referer, plus the lower-cased host with default ports removed.
func requestOrigin(r *http.Request) (origin, host string) {
	raw := r.Header.Get("Origin")
	if raw == "" {
		raw = r.Header.Get("Referer")
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ""
	}
	host = strings.ToLower(u.Host)
	if h, port, ok := strings.Cut(host, ":"); ok && (port == "443" || port == "80") {
		host = h
	}
	return u.Scheme + "://" + u.Host, host
}

// CORSMiddleware echoes allowed storefront and admin origins and answers
// preflight requests.
func CORSMiddleware(hosts []string) gin.HandlerFunc {
	policy := newCORSPolicy(hosts)

	return func(c *gin.Context) {
		if origin, host := requestOrigin(c.Request); policy.allows(host) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Expose-Headers", "X-Request-Id")
		}
		c.Header("Vary", "Origin")
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
