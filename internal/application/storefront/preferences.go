package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/storefront/internal/domain/preferences"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/cache"
)

// PreferencesConfig holds the defaults and limits for visitor preferences
type PreferencesConfig struct {
	Locales       []string
	DefaultLocale string
	Currency      string
	TTL           time.Duration
}

// PreferencesService stores preferences per visitor. Guests are keyed by
// their cart id and signed-in customers by user id.
type PreferencesService struct {
	store  shared.KVStore
	config PreferencesConfig
}

// NewPreferencesService creates a preferences service
func NewPreferencesService(store shared.KVStore, config PreferencesConfig) *PreferencesService {
	return &PreferencesService{store: store, config: config}
}

func preferencesKey(visitorID string) string {
	return "prefs:" + visitorID
}

// Defaults returns the preferences of a visitor who has not changed anything
func (s *PreferencesService) Defaults() preferences.Preferences {
	return preferences.Defaults(s.config.DefaultLocale, s.config.Currency)
}

// Get returns the stored preferences, or the defaults when none are stored
func (s *PreferencesService) Get(ctx context.Context, visitorID string) (preferences.Preferences, error) {
	if visitorID == "" {
		return s.Defaults(), nil
	}
	p, err := cache.GetJSON[preferences.Preferences](ctx, s.store, preferencesKey(visitorID))
	if errors.Is(err, shared.ErrKeyNotFound) {
		return s.Defaults(), nil
	}
	if err != nil {
		return preferences.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return p, nil
}

// Update applies a partial change and stores the result
func (s *PreferencesService) Update(ctx context.Context, visitorID string, patch preferences.Patch) (preferences.Preferences, error) {
	if visitorID == "" {
		return preferences.Preferences{}, ErrNoCartOwner
	}
	p, err := s.Get(ctx, visitorID)
	if err != nil {
		return preferences.Preferences{}, err
	}
	if err := p.Apply(patch, s.config.Locales); err != nil {
		return preferences.Preferences{}, err
	}
	if err := cache.SetJSON(ctx, s.store, preferencesKey(visitorID), p, s.config.TTL); err != nil {
		return preferences.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return p, nil
}
