package database

import (
	"context"
	"testing"

	"github.com/pinobite/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"storefront.db", "storefront.db?_pragma=foreign_keys(1)"},
		{"file:shop?mode=memory&cache=shared", "file:shop?mode=memory&cache=shared&_pragma=foreign_keys(1)"},
		{"file:shop?_pragma=foreign_keys(0)", "file:shop?_pragma=foreign_keys(0)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteDSN(tt.raw), tt.raw)
	}
}

func TestNewConnectionSqliteEnforcesForeignKeys(t *testing.T) {
	db, err := NewConnection(&config.DBConfig{Driver: "sqlite", DSN: "file:fkconn?mode=memory&cache=shared", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var enabled int
	require.NoError(t, db.WithContext(context.Background()).Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}
