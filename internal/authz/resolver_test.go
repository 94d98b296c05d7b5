package authz

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/treyhulse/kcsf-ops/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeAuthzFile(t *testing.T, table Table) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authz.json")
	raw, err := json.Marshal(table)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func fileResolver(t *testing.T, table Table) *Resolver {
	t.Helper()
	return NewResolver(config.Config{AuthzFile: writeAuthzFile(t, table)}, nil, zap.NewNop())
}

func scenarioTable() Table {
	return Table{
		Roles: map[string][]string{
			"Administrator": {"a@x"},
			"Sales":         {"b@x"},
		},
		Permissions: map[string][]string{
			"TMS":   {"Administrator", "Sales"},
			"Admin": {"Administrator"},
		},
	}
}

func TestAccessDecisions(t *testing.T) {
	r := fileResolver(t, scenarioTable())
	ctx := context.Background()

	tests := []struct {
		email, page string
		want        bool
	}{
		{"b@x", "TMS", true},
		{"b@x", "Admin", false},
		{"c@x", "TMS", false},
		{"a@x", "Admin", true},
		{"a@x", "TMS", true},
	}
	for _, tt := range tests {
		got, err := r.Access(ctx, tt.email, tt.page)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "access(%s, %s)", tt.email, tt.page)
	}
}

func TestMissingPageEntryDenies(t *testing.T) {
	r := fileResolver(t, scenarioTable())
	got, err := r.Access(context.Background(), "a@x", "Nonexistent Page")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestRolesOf(t *testing.T) {
	r := fileResolver(t, scenarioTable())
	roles, err := r.RolesOf(context.Background(), "b@x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales"}, roles)
}

func TestLoadFailureMaterializesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	r := NewResolver(config.Config{AuthzFile: path}, nil, zap.NewNop())

	// Nobody is in the default roles, so every page denies.
	got, err := r.Access(context.Background(), "someone@x", "TMS")
	require.NoError(t, err)
	assert.False(t, got)

	// The defaults were written back for the next load.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var table Table
	require.NoError(t, json.Unmarshal(raw, &table))
	assert.Contains(t, table.Roles, AdministratorRole)
	assert.Contains(t, table.Permissions, "TMS")
}

func TestEditsRequireAdministrator(t *testing.T) {
	r := fileResolver(t, scenarioTable())
	ctx := context.Background()

	err := r.SetRoleMembers(ctx, "b@x", "Sales", []string{"b@x", "d@x"})
	assert.ErrorIs(t, err, ErrNotAdministrator)

	err = r.SetPageRoles(ctx, "c@x", "TMS", []string{"Sales"})
	assert.ErrorIs(t, err, ErrNotAdministrator)
}

func TestAdministratorEditsPersist(t *testing.T) {
	table := scenarioTable()
	path := writeAuthzFile(t, table)
	r := NewResolver(config.Config{AuthzFile: path}, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, r.SetRoleMembers(ctx, "a@x", "Sales", []string{"b@x", "d@x"}))
	require.NoError(t, r.SetPageRoles(ctx, "a@x", "MRP", []string{"Sales"}))

	got, err := r.Access(ctx, "d@x", "TMS")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = r.Access(ctx, "d@x", "MRP")
	require.NoError(t, err)
	assert.True(t, got)

	// A fresh resolver sees the persisted state.
	fresh := NewResolver(config.Config{AuthzFile: path}, nil, zap.NewNop())
	got, err = fresh.Access(ctx, "d@x", "MRP")
	require.NoError(t, err)
	assert.True(t, got)
}
