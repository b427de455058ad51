package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_HasAnyRole(t *testing.T) {
	allowed := NewRoleSet("Admin", " manager ", "")

	tests := []struct {
		name  string
		user  *User
		allow bool
	}{
		{"nil user", nil, false},
		{"no roles", &User{}, false},
		{"matching role case-insensitive", &User{Roles: []string{"customer", "ADMIN"}}, true},
		{"trimmed allow-list entry", &User{Roles: []string{"manager"}}, true},
		{"only other roles", &User{Roles: []string{"customer"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allow, tt.user.HasAnyRole(allowed))
		})
	}
	assert.Len(t, allowed, 2)
}

func TestUser_HasPermission(t *testing.T) {
	u := &User{Permissions: []string{"order:read"}}
	assert.True(t, u.HasPermission("order:read"))
	assert.False(t, u.HasPermission("order:write"))
}

func TestScope_Valid(t *testing.T) {
	assert.True(t, ScopeBackoffice.Valid())
	assert.True(t, ScopeStorefront.Valid())
	assert.False(t, Scope("admin").Valid())
}
