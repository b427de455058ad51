package handler

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/interfaces/http/dto"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names rendered into the shell
const (
	PageHome      = "home"
	PageProducts  = "products"
	PageProduct   = "product"
	PageCart      = "cart"
	PageCheckout  = "checkout"
	PageAccount   = "account"
	PageLogin     = "login"
	PageForbidden = "forbidden"
	PageAdmin     = "admin"
)

var pageTitles = map[string]string{
	PageHome:      "Home",
	PageProducts:  "Products",
	PageProduct:   "Product",
	PageCart:      "Cart",
	PageCheckout:  "Checkout",
	PageAccount:   "Account",
	PageLogin:     "Sign in",
	PageForbidden: "Access denied",
	PageAdmin:     "Backoffice",
}

type shellData struct {
	AppName   string
	Title     string
	Page      string
	Param     string
	Locale    string
	Locales   []string
	RequestID string
	User      *account.User
}

type errorData struct {
	AppName string
	Locale  string
	Status  int
	Message string
}

// PagesHandler renders the HTML shells the browser app boots from
type PagesHandler struct {
	tmpl    *template.Template
	locales *middleware.LocaleResolver
	appName string
}

// NewPagesHandler parses the embedded templates
func NewPagesHandler(locales *middleware.LocaleResolver, appName string) (*PagesHandler, error) {
	tmpl, err := template.New("pages").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PagesHandler{tmpl: tmpl, locales: locales, appName: appName}, nil
}

// Root handles GET / by redirecting to the negotiated locale
func (h *PagesHandler) Root(c *gin.Context) {
	locale := h.locales.Negotiate(c.GetHeader("Accept-Language"))
	c.Redirect(http.StatusFound, "/"+locale+"/")
}

// Render returns a handler for one page shell. param names the route
// parameter passed through to the app, if any.
func (h *PagesHandler) Render(page, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := c.Param("locale")
		if !h.locales.Supported(locale) {
			h.NotFound(c)
			return
		}
		data := shellData{
			AppName:   h.appName,
			Title:     pageTitles[page],
			Page:      page,
			Locale:    locale,
			Locales:   h.locales.Locales(),
			RequestID: middleware.GetRequestID(c),
		}
		if param != "" {
			data.Param = strings.TrimPrefix(c.Param(param), "/")
		}
		if u, ok := middleware.CurrentUser(c); ok {
			data.User = u
		}
		c.Header("Cache-Control", "no-store")
		c.Render(http.StatusOK, render.HTML{Template: h.tmpl, Name: "shell", Data: data})
	}
}

// NotFound renders the 404 page, or the envelope for API paths
func (h *PagesHandler) NotFound(c *gin.Context) {
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
		return
	}
	h.ErrorPage(c, http.StatusNotFound)
}

// ErrorPage renders a minimal HTML error page for status
func (h *PagesHandler) ErrorPage(c *gin.Context, status int) {
	c.Render(status, render.HTML{Template: h.tmpl, Name: "error", Data: errorData{
		AppName: h.appName,
		Locale:  h.locales.Resolve(c),
		Status:  status,
		Message: http.StatusText(status),
	}})
}
