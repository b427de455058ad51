// Package account holds the authenticated user and session token shapes
// returned by the backend auth endpoints.
package account

import (
	"strings"
	"time"
)

// Scope selects which cookie family a session is stored in.
type Scope string

const (
	ScopeBackoffice Scope = "backoffice"
	ScopeStorefront Scope = "storefront"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeBackoffice || s == ScopeStorefront
}

// User is the current user as reported by /api/auth/me.
type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles"`
	RoleIDs     []string `json:"role_ids,omitempty"`
	Permissions []string `json:"permissions"`
}

// HasAnyRole reports whether any of the user's roles is in allowed.
// Comparison is case-insensitive.
func (u *User) HasAnyRole(allowed RoleSet) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if allowed.Contains(r) {
			return true
		}
	}
	return false
}

// HasPermission reports whether the user holds perm.
func (u *User) HasPermission(perm string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// RoleSet is a normalized role allow-list.
type RoleSet map[string]struct{}

// NewRoleSet builds an allow-list from role names, ignoring blanks.
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			set[r] = struct{}{}
		}
	}
	return set
}

// Contains reports whether role is allowed.
func (s RoleSet) Contains(role string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(role))]
	return ok
}

// TokenPair is the token block of a login or refresh response.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// Credentials is a login request.
type Credentials struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// Registration is a storefront customer sign-up request.
type Registration struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
	Phone       string `json:"phone,omitempty" binding:"omitempty,max=32"`
}

// Session is the result of a successful login.
type Session struct {
	Token TokenPair `json:"token"`
	User  User      `json:"user"`
}
