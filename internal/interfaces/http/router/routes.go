package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/erp/storefront/internal/interfaces/http/handler"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/erp/storefront/internal/interfaces/http/proxy"
)

// Handlers bundles every HTTP handler the gateway serves
type Handlers struct {
	Auth        *handler.AuthHandler
	Account     *handler.AccountHandler
	Catalog     *handler.CatalogHandler
	Cart        *handler.CartHandler
	Preferences *handler.PreferencesHandler
	Checkout    *handler.CheckoutHandler
	Backoffice  *handler.BackofficeHandler
	System      *handler.SystemHandler
	Pages       *handler.PagesHandler
}

// Gateway mounts the JSON API, page shells, probes and the backend proxy
type Gateway struct {
	Handlers Handlers
	Locales  *middleware.LocaleResolver
	// Customer resolves the storefront session cookie, if any
	Customer gin.HandlerFunc
	// Guard protects backoffice routes
	Guard gin.HandlerFunc
	// Proxy is optional; without it unmatched /api/ paths get a 404 envelope
	Proxy *proxy.Proxy
	// Metrics serves the Prometheus scrape endpoint when set
	Metrics     http.Handler
	MetricsPath string
}

// Mount registers all routes on the engine through r
func (g *Gateway) Mount(engine *gin.Engine, r *Router) {
	h := g.Handlers
	// gin would answer /api/products/ with a 301 to the /:locale/products page
	// route; unmatched paths must reach the fallback untouched
	engine.RedirectTrailingSlash = false
	for _, group := range g.apiGroups() {
		r.Register(group)
	}
	r.Setup()

	engine.GET("/health/live", h.System.Live)
	engine.GET("/health/ready", h.System.Ready)
	engine.GET("/system/info", h.System.Info)
	if g.Metrics != nil {
		path := g.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(g.Metrics))
	}

	g.mountPages(engine)
	engine.NoRoute(g.fallback)
}

func (g *Gateway) apiGroups() []*DomainGroup {
	h := g.Handlers
	customer := g.customer()

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	acct := NewDomainGroup("account", "/account")
	acct.Use(customer)
	acct.POST("/register", h.Account.Register).
		GET("/orders", middleware.RequireUser(), h.Account.Orders)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", h.Catalog.ListProducts).
		GET("/products/:id", h.Catalog.GetProduct).
		GET("/categories", h.Catalog.ListCategories)

	cart := NewDomainGroup("cart", "/cart")
	cart.Use(customer)
	cart.GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem).
		PUT("/items/:lineId", h.Cart.UpdateItem).
		DELETE("/items/:lineId", h.Cart.RemoveItem)

	prefs := NewDomainGroup("preferences", "/preferences")
	prefs.Use(customer)
	prefs.GET("", h.Preferences.Get).
		PATCH("", h.Preferences.Update)

	checkout := NewDomainGroup("checkout", "/checkout")
	checkout.Use(customer)
	checkout.POST("/preview", h.Checkout.Preview).
		POST("/orders", middleware.RequireUser(), h.Checkout.PlaceOrder)

	return []*DomainGroup{auth, acct, catalog, cart, prefs, checkout, g.backofficeGroup()}
}

func (g *Gateway) backofficeGroup() *DomainGroup {
	b := g.Handlers.Backoffice
	bo := NewDomainGroup("backoffice", "/backoffice")
	if g.Guard != nil {
		bo.Use(g.Guard)
	}

	bo.Group("orders", "/orders").
		GET("", b.ListOrders).
		GET("/:id", b.GetOrder).
		POST("/:id/status", b.ChangeOrderStatus)

	bo.Group("purchase-orders", "/purchase-orders").
		GET("", b.ListPurchaseOrders).
		POST("", b.CreatePurchaseOrder).
		GET("/:id", b.GetPurchaseOrder).
		POST("/:id/submit", b.SubmitPurchaseOrder).
		POST("/:id/receive", b.ReceivePurchaseOrder).
		POST("/:id/cancel", b.CancelPurchaseOrder)

	bo.Group("suppliers", "/suppliers").
		GET("", b.ListSuppliers).
		POST("", b.CreateSupplier).
		GET("/:id", b.GetSupplier).
		PUT("/:id", b.UpdateSupplier)

	bo.Group("price-lists", "/price-lists").
		GET("", b.ListPriceLists).
		POST("", b.CreatePriceList).
		GET("/:id", b.GetPriceList).
		PUT("/:id/items", b.ReplacePriceListItems)

	bo.Group("promotions", "/promotions").
		GET("", b.ListPromotions).
		POST("", b.CreatePromotion).
		POST("/calculate-discount", b.CalculateDiscount).
		PUT("/:id", b.UpdatePromotion)

	bo.Group("inventory", "/inventory").
		GET("/stock", b.ListStock).
		GET("/movements", b.ListMovements)

	bo.Group("stock-transfers", "/stock-transfers").
		GET("", b.ListStockTransfers).
		POST("", b.CreateStockTransfer).
		POST("/:id/ship", b.ShipStockTransfer).
		POST("/:id/receive", b.ReceiveStockTransfer)

	bo.Group("cycle-counts", "/cycle-counts").
		GET("", b.ListCycleCounts).
		POST("", b.CreateCycleCount).
		GET("/:id", b.GetCycleCount).
		POST("/:id/counts", b.RecordCounts).
		POST("/:id/complete", b.CompleteCycleCount)

	bo.Group("reports", "/reports").
		GET("/sales", b.SalesReport).
		GET("/inventory", b.InventoryReport).
		GET("/purchasing", b.PurchasingReport)

	bo.GET("/audit-logs", b.ListAuditLogs)
	return bo
}

func (g *Gateway) mountPages(engine *gin.Engine) {
	p := g.Handlers.Pages
	engine.GET("/", p.Root)

	// /:locale also matches paths like /api/products; anything that is not a
	// supported locale goes to the fallback instead of a page shell.
	locale := func(c *gin.Context) {
		if !g.Locales.Supported(c.Param("locale")) {
			g.fallback(c)
			c.Abort()
			return
		}
		c.Next()
	}

	pages := engine.Group("/:locale", locale, g.customer())
	pages.GET("/", p.Render(handler.PageHome, ""))
	pages.GET("/products", p.Render(handler.PageProducts, ""))
	pages.GET("/products/:id", p.Render(handler.PageProduct, "id"))
	pages.GET("/cart", p.Render(handler.PageCart, ""))
	pages.GET("/checkout", p.Render(handler.PageCheckout, ""))
	pages.GET("/account", p.Render(handler.PageAccount, ""))
	pages.GET("/login", p.Render(handler.PageLogin, ""))
	pages.GET("/forbidden", p.Render(handler.PageForbidden, ""))

	admin := engine.Group("/:locale/admin", locale)
	if g.Guard != nil {
		admin.Use(g.Guard)
	}
	admin.GET("/*module", p.Render(handler.PageAdmin, "module"))
}

func (g *Gateway) customer() gin.HandlerFunc {
	if g.Customer != nil {
		return g.Customer
	}
	return func(c *gin.Context) { c.Next() }
}

func (g *Gateway) fallback(c *gin.Context) {
	path := c.Request.URL.Path
	if g.Proxy != nil && g.Proxy.Matches(path) {
		g.Proxy.Handler()(c)
		return
	}
	if to, ok := g.canonicalPage(path); ok && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
		if c.Request.URL.RawQuery != "" {
			to += "?" + c.Request.URL.RawQuery
		}
		c.Redirect(http.StatusMovedPermanently, to)
		return
	}
	g.Handlers.Pages.NotFound(c)
}

// canonicalPage maps /es to /es/, /es/admin to /es/admin/ and /es/cart/ to
// /es/cart for supported locales only.
func (g *Gateway) canonicalPage(path string) (string, bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "", false
	}
	locale, rest, _ := strings.Cut(trimmed, "/")
	if !g.Locales.Supported(locale) {
		return "", false
	}
	if rest == "" || rest == "admin" {
		if !strings.HasSuffix(path, "/") {
			return path + "/", true
		}
		return "", false
	}
	if strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/"), true
	}
	return "", false
}
