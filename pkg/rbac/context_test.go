package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/biportal/pkg/rbac"
)

func TestRoleContext(t *testing.T) {
	t.Parallel()

	t.Run("set and get role", func(t *testing.T) {
		t.Parallel()
		ctx := rbac.SetRoleToContext(context.Background(), rbac.RoleAdmin)
		role, ok := rbac.GetRoleFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, rbac.RoleAdmin, role)
	})

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()
		role, ok := rbac.GetRoleFromContext(context.Background())
		assert.False(t, ok)
		assert.Empty(t, role)
	})

	t.Run("plain string is not a role", func(t *testing.T) {
		t.Parallel()
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "admin")
		_, ok := rbac.GetRoleFromContext(ctx)
		assert.False(t, ok)
	})
}

func TestRequire(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, rbac.Require(context.Background(), rbac.RoleViewer), rbac.ErrRoleNotInContext)

	ctx := rbac.SetRoleToContext(context.Background(), rbac.RoleViewer)
	assert.NoError(t, rbac.Require(ctx, rbac.RoleViewer))
	assert.ErrorIs(t, rbac.Require(ctx, rbac.RoleAdmin), rbac.ErrInsufficientRole)

	ctx = rbac.SetRoleToContext(context.Background(), rbac.RoleMasterAdmin)
	assert.NoError(t, rbac.Require(ctx, rbac.RoleAdmin))
	assert.NoError(t, rbac.Require(ctx, rbac.RoleMasterAdmin))
}
