// Package audit mirrors the backend audit log.
package audit

import (
	"encoding/json"
	"time"

	"github.com/erp/storefront/internal/domain/shared"
)

// Log is one audited action.
type Log struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Username     string          `json:"username"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Changes      json.RawMessage `json:"changes,omitempty"`
	IPAddress    string          `json:"ip_address,omitempty"`
	RequestID    string          `json:"request_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Filter narrows the audit log listing.
type Filter struct {
	shared.ListParams
	UserID       string `form:"user_id" json:"user_id,omitempty"`
	Action       string `form:"action" json:"action,omitempty"`
	ResourceType string `form:"resource_type" json:"resource_type,omitempty"`
	ResourceID   string `form:"resource_id" json:"resource_id,omitempty"`
	From         string `form:"from" json:"from,omitempty" binding:"omitempty,datetime=2006-01-02"`
	To           string `form:"to" json:"to,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

// Query renders the filter as backend query parameters.
func (f Filter) Query() map[string]string {
	q := f.ListParams.Query()
	for k, v := range map[string]string{
		"user_id":       f.UserID,
		"action":        f.Action,
		"resource_type": f.ResourceType,
		"resource_id":   f.ResourceID,
		"from":          f.From,
		"to":            f.To,
	} {
		if v != "" {
			q[k] = v
		}
	}
	return q
}
