package requestctx

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sdko-org/content-gateway/internal/headers"
)

// UnknownIP is the sentinel used when no client address header is present.
const UnknownIP = "unknown"

// Context is an immutable snapshot of one inbound request. It is built once
// per request and read by every downstream component.
type Context struct {
	Timestamp time.Time
	IP        string
	Domain    string
	Path      string
	Method    string
	Headers   *headers.Map
	UserAgent string
	Referer   string
	URL       string
}

// Extract builds a Context from the raw request. It cannot fail: missing
// headers degrade to empty values and a missing client address degrades to
// the "unknown" sentinel.
func Extract(r *http.Request) *Context {
	return &Context{
		Timestamp: time.Now(),
		IP:        clientIP(r),
		Domain:    r.Host,
		Path:      r.URL.Path,
		Method:    r.Method,
		Headers:   copyHeaders(r.Header),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
		URL:       fullURL(r),
	}
}

// clientIP resolves the client address from the edge-injected header first,
// then the generic forwarding headers. The first non-empty value wins and is
// used verbatim, without syntax validation.
func clientIP(r *http.Request) string {
	for _, name := range []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"} {
		if v := r.Header.Get(name); v != "" {
			return v
		}
	}
	return UnknownIP
}

// copyHeaders snapshots all inbound headers, none dropped or redacted.
// net/http stores headers in an unordered map, so names are inserted in
// sorted order to keep iteration deterministic.
func copyHeaders(h http.Header) *headers.Map {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	m := headers.New()
	for _, name := range names {
		m.Set(name, strings.Join(h[name], ", "))
	}
	return m
}

func fullURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
