// Package fixtures holds the approval chains seeded into an empty store.
package fixtures

import (
	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/module"
)

// ApprovalConfigurations returns a fresh copy of the default chains
func ApprovalConfigurations() []entity.ApprovalConfiguration {
	return []entity.ApprovalConfiguration{
		{
			ID:          "cfg-vehicle",
			ModuleName:  module.Vehicle.ModuleName(),
			BranchScope: entity.AllBranches,
			Tiers: []entity.ApprovalTier{
				{Level: 1, ApproverType: entity.ApproverRole, ApproverValue: "Branch Manager", SLADays: 2},
				{Level: 2, ApproverType: entity.ApproverRole, ApproverValue: "Regional Head", SLADays: 3},
				{Level: 3, ApproverType: entity.ApproverUser, ApproverValue: "Budi Santoso", SLADays: 5},
			},
			UpdatedAt: "2024-01-15",
		},
		{
			ID:          "cfg-atk",
			ModuleName:  module.Stationery.ModuleName(),
			BranchScope: entity.AllBranches,
			Tiers: []entity.ApprovalTier{
				{Level: 1, ApproverType: entity.ApproverRole, ApproverValue: "Section Head", SLADays: 1},
				{Level: 2, ApproverType: entity.ApproverRole, ApproverValue: "GA Manager", SLADays: 2},
			},
			UpdatedAt: "2024-01-15",
		},
		{
			ID:          "cfg-bld-maint",
			ModuleName:  module.BuildingMaintenance.ModuleName(),
			BranchScope: entity.AllBranches,
			Tiers: []entity.ApprovalTier{
				{Level: 1, ApproverType: entity.ApproverRole, ApproverValue: "Branch Manager", SLADays: 2},
				{Level: 2, ApproverType: entity.ApproverRole, ApproverValue: "Facility Manager", SLADays: 3},
			},
			UpdatedAt: "2024-01-15",
		},
	}
}
