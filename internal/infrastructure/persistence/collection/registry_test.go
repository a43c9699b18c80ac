package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/asset-console/internal/domain/module"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/memory"
)

func TestRegistry_CoversEveryModule(t *testing.T) {
	reg := NewRegistry(memory.NewStore())

	require.Len(t, reg.Modules, len(module.Codes()))
	for _, code := range module.Codes() {
		repo, ok := reg.Modules[code]
		require.True(t, ok, code)
		assert.Equal(t, code.StoreKey(), repo.Key())
		assert.True(t, repo.Approvable(), code)
	}
	assert.Equal(t, module.KeyBuildings, reg.Buildings.Key())
	assert.False(t, reg.Vendors.Approvable())
}

func TestRegistry_LoadRestoresSnapshots(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.Put("atkRequestData", []byte(`[{"id":"atk-1","requester":"Sari","approvalStatus":"Pending Approval - Branch Manager","currentTier":1}]`))
	store.Put(module.KeyVendors, []byte(`[{"id":"v-1","name":"PT Maju"}]`))

	reg := NewRegistry(store)
	require.NoError(t, reg.Load(ctx))

	st, err := reg.Modules[module.Stationery].State("atk-1")
	require.NoError(t, err)
	assert.Equal(t, "Pending Approval - Branch Manager", st.Status)
	assert.Equal(t, 1, st.CurrentTier)

	assert.Empty(t, reg.Modules[module.Vehicle].List())
	require.Equal(t, 1, reg.Vendors.Len())
	v, err := reg.Vendors.Get("v-1")
	require.NoError(t, err)
	assert.Equal(t, "PT Maju", v.Name)
}
