package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewCasbinEnforcer_DefaultPolicies(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	e, err := NewCasbinEnforcer(db, "")
	require.NoError(t, err)

	tests := []struct {
		sub, obj, act string
		allowed       bool
	}{
		{"admin", "/api/admin/stats", "GET", true},
		{"admin", "/api/admin/orders/ORD-1", "PUT", true},
		{"customer", "/api/admin/stats", "GET", false},
		{"admin", "/api/cart", "GET", false},
	}
	for _, tt := range tests {
		ok, err := e.Enforce(tt.sub, tt.obj, tt.act)
		require.NoError(t, err)
		assert.Equal(t, tt.allowed, ok, "%s %s %s", tt.sub, tt.act, tt.obj)
	}

	// A second enforcer on the same table does not duplicate the defaults
	again, err := NewCasbinEnforcer(db, "")
	require.NoError(t, err)
	policies, err := again.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, len(DefaultPolicies))
}
