package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// LocaleResolver picks the locale for a request: the first path segment when
// it names a supported locale, else the best Accept-Language match, else the
// default.
type LocaleResolver struct {
	supported []string
	index     map[string]struct{}
	matcher   language.Matcher
	fallback  string
}

// NewLocaleResolver creates a resolver over the supported locales
func NewLocaleResolver(supported []string, fallback string) *LocaleResolver {
	tags := make([]language.Tag, 0, len(supported))
	index := make(map[string]struct{}, len(supported))
	for _, s := range supported {
		tags = append(tags, language.Make(s))
		index[s] = struct{}{}
	}
	return &LocaleResolver{
		supported: supported,
		index:     index,
		matcher:   language.NewMatcher(tags),
		fallback:  fallback,
	}
}

// Locales returns the supported locales
func (r *LocaleResolver) Locales() []string {
	return r.supported
}

// Default returns the fallback locale
func (r *LocaleResolver) Default() string {
	return r.fallback
}

// Supported reports whether locale is served
func (r *LocaleResolver) Supported(locale string) bool {
	_, ok := r.index[locale]
	return ok
}

// FromPath returns the locale named by the first path segment
func (r *LocaleResolver) FromPath(path string) (string, bool) {
	seg := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	if r.Supported(seg) {
		return seg, true
	}
	return "", false
}

// Negotiate matches an Accept-Language header against the supported locales
func (r *LocaleResolver) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" || len(r.supported) == 0 {
		return r.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return r.fallback
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(r.supported) {
		return r.fallback
	}
	return r.supported[idx]
}

// Resolve returns the locale for the request
func (r *LocaleResolver) Resolve(c *gin.Context) string {
	if l, ok := r.FromPath(c.Request.URL.Path); ok {
		return l
	}
	return r.Negotiate(c.GetHeader("Accept-Language"))
}

// Middleware stores the resolved locale in the gin context
func (r *LocaleResolver) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(LocaleKey, r.Resolve(c))
		c.Next()
	}
}
