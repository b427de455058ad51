// Package preferences holds per-visitor UI preferences that survive across
// sessions.
package preferences

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/storefront/internal/domain/shared"
)

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ErrInvalid is returned for preference values outside the allowed set.
var ErrInvalid = shared.NewDomainError("PREFERENCES_INVALID", "Invalid preference value")

// Preferences are stored per visitor (cart id for guests, user id when
// signed in).
type Preferences struct {
	Locale    string    `json:"locale"`
	Currency  string    `json:"currency"`
	Theme     Theme     `json:"theme"`
	PageSize  int       `json:"page_size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Locale   *string `json:"locale,omitempty"`
	Currency *string `json:"currency,omitempty"`
	Theme    *Theme  `json:"theme,omitempty"`
	PageSize *int    `json:"page_size,omitempty"`
}

// Defaults returns the preferences used before a visitor changes anything.
func Defaults(locale, currency string) Preferences {
	return Preferences{
		Locale:   locale,
		Currency: currency,
		Theme:    ThemeSystem,
		PageSize: shared.DefaultPageSize,
	}
}

// Apply merges the patch into p and validates the result against the
// supported locales. p is unchanged when an error is returned.
func (p *Preferences) Apply(patch Patch, locales []string) error {
	next := *p
	if patch.Locale != nil {
		next.Locale = strings.TrimSpace(*patch.Locale)
	}
	if patch.Currency != nil {
		next.Currency = strings.ToUpper(strings.TrimSpace(*patch.Currency))
	}
	if patch.Theme != nil {
		next.Theme = *patch.Theme
	}
	if patch.PageSize != nil {
		next.PageSize = *patch.PageSize
	}

	if err := next.Validate(locales); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	*p = next
	return nil
}

// Validate checks every field.
func (p Preferences) Validate(locales []string) error {
	if !contains(locales, p.Locale) {
		return invalid(fmt.Sprintf("Unsupported locale %q", p.Locale))
	}
	if len(p.Currency) != 3 {
		return invalid("Currency must be a 3-letter ISO 4217 code")
	}
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return invalid(fmt.Sprintf("Unknown theme %q", p.Theme))
	}
	if p.PageSize < 1 || p.PageSize > shared.MaxPageSize {
		return invalid(fmt.Sprintf("Page size must be between 1 and %d", shared.MaxPageSize))
	}
	return nil
}

func invalid(msg string) error {
	return shared.NewDomainError(ErrInvalid.Code, msg)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
