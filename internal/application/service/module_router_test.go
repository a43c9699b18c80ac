package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/domain/module"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/collection"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/memory"
)

func TestModuleRouter_ResolvesEveryCode(t *testing.T) {
	reg := collection.NewRegistry(memory.NewStore())
	router, err := NewModuleRouter(reg.Modules)
	require.NoError(t, err)

	for _, code := range module.Codes() {
		route, err := router.Resolve(code)
		require.NoError(t, err)
		assert.Equal(t, code.ModuleName(), route.ModuleName)
		assert.Equal(t, code.StoreKey(), route.Repository.Key())
	}

	routes := router.Routes()
	require.Len(t, routes, len(module.Codes()))
	assert.Equal(t, module.Vehicle, routes[0].Code)

	_, err = router.Resolve("PAYROLL")
	assert.ErrorIs(t, err, module.ErrUnknownModule)
}

func TestModuleRouter_RejectsIncompleteMaps(t *testing.T) {
	reg := collection.NewRegistry(memory.NewStore())

	missing := make(map[module.Code]port.RecordRepository)
	for code, repo := range reg.Modules {
		if code != module.Household {
			missing[code] = repo
		}
	}
	_, err := NewModuleRouter(missing)
	assert.ErrorIs(t, err, ErrIncompleteRouting)

	master := make(map[module.Code]port.RecordRepository)
	for code, repo := range reg.Modules {
		master[code] = repo
	}
	master[module.Household] = collection.Erase(reg.Vendors)
	_, err = NewModuleRouter(master)
	assert.ErrorIs(t, err, ErrIncompleteRouting)

	extra := make(map[module.Code]port.RecordRepository)
	for code, repo := range reg.Modules {
		extra[code] = repo
	}
	extra["PAYROLL"] = reg.Modules[module.Vehicle]
	_, err = NewModuleRouter(extra)
	assert.ErrorIs(t, err, module.ErrUnknownModule)
}
