package handler

import (
	"context"

	"github.com/erp/storefront/internal/domain/preferences"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// PreferencesService stores per-visitor preferences
type PreferencesService interface {
	Get(ctx context.Context, visitorID string) (preferences.Preferences, error)
	Update(ctx context.Context, visitorID string, patch preferences.Patch) (preferences.Preferences, error)
}

// PreferencesHandler serves visitor preferences
type PreferencesHandler struct {
	BaseHandler
	prefs   PreferencesService
	cookies *middleware.Cookies
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(prefs PreferencesService, cookies *middleware.Cookies) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs, cookies: cookies}
}

// Get handles GET /preferences. Visitors without a cookie get the defaults.
func (h *PreferencesHandler) Get(c *gin.Context) {
	p, err := h.prefs.Get(c.Request.Context(), visitorID(c, h.cookies, false))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Update handles PATCH /preferences
func (h *PreferencesHandler) Update(c *gin.Context) {
	var patch preferences.Patch
	if !h.BindJSON(c, &patch) {
		return
	}
	p, err := h.prefs.Update(c.Request.Context(), visitorID(c, h.cookies, true), patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
