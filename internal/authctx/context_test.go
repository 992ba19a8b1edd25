package authctx

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	auth := AuthContext{UserID: node.Generate(), Role: RoleOrganizer, OrganizerID: node.Generate()}
	got, ok := FromContext(WithAuth(context.Background(), auth))
	require.True(t, ok)
	assert.Equal(t, auth, got)

	// A zero principal is treated as absent.
	_, ok = FromContext(WithAuth(context.Background(), AuthContext{}))
	assert.False(t, ok)
}

func TestCanActFor(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	orgID := node.Generate()

	admin := AuthContext{UserID: node.Generate(), Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.CanActFor(orgID))

	owner := AuthContext{UserID: node.Generate(), Role: RoleOrganizer, OrganizerID: orgID}
	assert.False(t, owner.IsAdmin())
	assert.True(t, owner.CanActFor(orgID))
	assert.False(t, owner.CanActFor(node.Generate()))

	plain := AuthContext{UserID: node.Generate(), Role: RoleUser}
	assert.False(t, plain.CanActFor(orgID))
}
