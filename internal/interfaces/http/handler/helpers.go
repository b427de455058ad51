package handler

import (
	"github.com/erp/storefront/internal/application/storefront"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// cartOwner returns the signed-in user, else the guest cart cookie. The
// cookie is issued on first use.
func cartOwner(c *gin.Context, cookies *middleware.Cookies) storefront.Owner {
	if u, ok := middleware.CurrentUser(c); ok {
		return storefront.Owner{UserID: u.ID}
	}
	return storefront.Owner{CartID: cookies.EnsureCartID(c)}
}

// visitorID keys per-visitor state: the user id when signed in, else the cart cookie.
func visitorID(c *gin.Context, cookies *middleware.Cookies, issue bool) string {
	if u, ok := middleware.CurrentUser(c); ok {
		return u.ID
	}
	if issue {
		return cookies.EnsureCartID(c)
	}
	return cookies.CartID(c)
}
