package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyDerivedProperties(t *testing.T) {
	full := Policy{CanCreate: true, CanRead: true, CanUpdate: true, CanDelete: true}
	require.True(t, full.HasFullAccess())
	require.False(t, full.IsReadOnly())

	readOnly := Policy{CanRead: true}
	require.False(t, readOnly.HasFullAccess())
	require.True(t, readOnly.IsReadOnly())

	none := Policy{}
	require.False(t, none.HasFullAccess())
	require.False(t, none.IsReadOnly())

	require.True(t, full.HasPermission(ActionCreate))
	require.False(t, readOnly.HasPermission(ActionUpdate))
	require.False(t, full.HasPermission(Action("unknown")))
}

func TestEntityValidation(t *testing.T) {
	for _, entity := range Entities() {
		require.True(t, entity.Valid())
	}
	require.False(t, Entity("warehouse").Valid())

	require.True(t, RoleProgrammer.Valid())
	require.False(t, RoleKind("admin").Valid())
}
