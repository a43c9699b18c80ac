package collection

import (
	"context"
	"fmt"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/module"
)

// Registry is every collection of the console, keyed by module code for the
// approvable ones plus the two master data sets.
type Registry struct {
	Modules   map[module.Code]port.RecordRepository
	Buildings *Collection[entity.Building, *entity.Building]
	Vendors   *Collection[entity.Vendor, *entity.Vendor]
}

func approval[T any, PT interface {
	*T
	entity.Approvable
}](code module.Code, store port.Store, opts []Option) port.RecordRepository {
	return Erase(New[T, PT](code.StoreKey(), store, ApprovalBinding[T, PT]{}, opts...))
}

// NewRegistry builds one collection per module over a shared store
func NewRegistry(store port.Store, opts ...Option) *Registry {
	return &Registry{
		Modules: map[module.Code]port.RecordRepository{
			module.Vehicle:             approval[entity.Vehicle](module.Vehicle, store, opts),
			module.VehicleService:      approval[entity.VehicleService](module.VehicleService, store, opts),
			module.TaxKir:              approval[entity.TaxKir](module.TaxKir, store, opts),
			module.Mutation:            approval[entity.Mutation](module.Mutation, store, opts),
			module.Sales:               approval[entity.Sales](module.Sales, store, opts),
			module.Contract:            approval[entity.Contract](module.Contract, store, opts),
			module.BuildingMaintenance: approval[entity.BuildingMaintenance](module.BuildingMaintenance, store, opts),
			module.BranchImprovement: Erase(New[entity.BranchImprovement](
				module.BranchImprovement.StoreKey(), store, BranchImprovementBinding{}, opts...)),
			module.AssetHC:    approval[entity.AssetRequest](module.AssetHC, store, opts),
			module.AssetIT:    approval[entity.AssetRequest](module.AssetIT, store, opts),
			module.AssetCS:    approval[entity.AssetRequest](module.AssetCS, store, opts),
			module.Stationery: approval[entity.SupplyRequest](module.Stationery, store, opts),
			module.Household:  approval[entity.SupplyRequest](module.Household, store, opts),
		},
		Buildings: New[entity.Building](module.KeyBuildings, store, MasterBinding[entity.Building]{}, opts...),
		Vendors:   New[entity.Vendor](module.KeyVendors, store, MasterBinding[entity.Vendor]{}, opts...),
	}
}

// Load restores every collection from the store
func (r *Registry) Load(ctx context.Context) error {
	for _, code := range module.Codes() {
		if err := r.Modules[code].Load(ctx); err != nil {
			return fmt.Errorf("load %s: %w", code, err)
		}
	}
	if err := r.Buildings.Load(ctx); err != nil {
		return fmt.Errorf("load buildings: %w", err)
	}
	if err := r.Vendors.Load(ctx); err != nil {
		return fmt.Errorf("load vendors: %w", err)
	}
	return nil
}
