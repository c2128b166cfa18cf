package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin resource sharing for the API.
type CORSConfig struct {
	// AllowOrigins lists origins permitted to call the API from a browser.
	// Empty, or the single entry "*", allows every origin.
	AllowOrigins []string

	// AllowMethods lists the HTTP methods advertised on preflight responses.
	// Empty uses the methods the API actually serves.
	AllowMethods []string

	// AllowHeaders lists request headers clients may send. Empty echoes the
	// preflight's Access-Control-Request-Headers back to the client.
	AllowHeaders []string

	// ExposeHeaders lists response headers scripts may read. The back office
	// needs Content-Disposition here so spreadsheet downloads keep their
	// filename.
	ExposeHeaders []string

	// AllowCredentials permits cookies and authorization headers on
	// cross-origin requests. Incompatible with a wildcard origin, so setting
	// it forces per-origin echo even when AllowOrigins is empty.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Zero omits the
	// header entirely, negative sends "0" to disable caching.
	MaxAge int
}

// cors holds precomputed header values so per-request work is a map lookup
// and a handful of Header.Set calls.
type cors struct {
	wildcard      bool
	origins       map[string]string
	allowMethods  string
	allowHeaders  string
	exposeHeaders string
	credentials   bool
	maxAge        string
}

// CORS returns a middleware handling cross-origin requests, including
// OPTIONS preflights, which it answers with 204 without invoking the next
// handler. Origins are matched case-insensitively and the configured
// spelling is echoed back. Vary headers are set whenever the response
// depends on request headers, so shared caches never serve a response
// negotiated for one origin to another.
func CORS(cfg CORSConfig) Middleware {
	c := &cors{
		origins:       make(map[string]string, len(cfg.AllowOrigins)),
		allowMethods:  strings.Join(cfg.AllowMethods, ", "),
		allowHeaders:  strings.Join(cfg.AllowHeaders, ", "),
		exposeHeaders: strings.Join(cfg.ExposeHeaders, ", "),
		credentials:   cfg.AllowCredentials,
	}

	c.wildcard = len(cfg.AllowOrigins) == 0
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			c.wildcard = true
			continue
		}
		c.origins[strings.ToLower(o)] = o
	}
	if c.credentials {
		// Browsers reject "Access-Control-Allow-Origin: *" combined with
		// credentials, so echo the specific origin instead.
		c.wildcard = false
	}

	if c.allowMethods == "" {
		c.allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	switch {
	case cfg.MaxAge > 0:
		c.maxAge = strconv.Itoa(cfg.MaxAge)
	case cfg.MaxAge < 0:
		c.maxAge = "0"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Same-origin or non-browser client. Still vary on Origin
				// when responses differ per origin.
				if !c.wildcard {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				c.preflight(w, r, origin)
				return
			}

			c.actual(w, origin)
			next.ServeHTTP(w, r)
		})
	}
}

func (c *cors) preflight(w http.ResponseWriter, r *http.Request, origin string) {
	h := w.Header()
	h.Add("Vary", "Origin")
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")

	allow := c.allowOrigin(origin)
	if allow == "" {
		// Unknown origin: answer the preflight but grant nothing.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.Set("Access-Control-Allow-Origin", allow)
	h.Set("Access-Control-Allow-Methods", c.allowMethods)

	if c.allowHeaders != "" {
		h.Set("Access-Control-Allow-Headers", c.allowHeaders)
	} else if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
		h.Set("Access-Control-Allow-Headers", req)
	}
	if c.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if c.maxAge != "" {
		h.Set("Access-Control-Max-Age", c.maxAge)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *cors) actual(w http.ResponseWriter, origin string) {
	h := w.Header()
	if !c.wildcard {
		h.Add("Vary", "Origin")
	}

	allow := c.allowOrigin(origin)
	if allow == "" {
		return
	}
	h.Set("Access-Control-Allow-Origin", allow)
	if c.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if c.exposeHeaders != "" {
		h.Set("Access-Control-Expose-Headers", c.exposeHeaders)
	}
}

func (c *cors) allowOrigin(origin string) string {
	if c.wildcard {
		return "*"
	}
	return c.origins[strings.ToLower(origin)]
}
