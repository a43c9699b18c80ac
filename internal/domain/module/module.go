// Package module holds the closed set of business modules that carry an
// approval workflow and the configuration name each one is looked up by.
package module

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownModule is returned for a code outside the catalogue
var ErrUnknownModule = errors.New("unknown module")

// Code identifies a business module
type Code string

const (
	Vehicle             Code = "VEHICLE"
	VehicleService      Code = "SERVICE"
	TaxKir              Code = "TAX"
	Mutation            Code = "MUTATION"
	Sales               Code = "SALES"
	Contract            Code = "CONTRACT"
	BuildingMaintenance Code = "BLD_MAINT"
	BranchImprovement   Code = "BRANCH_IMP"
	AssetHC             Code = "ASSET_HC"
	AssetIT             Code = "ASSET_IT"
	AssetCS             Code = "ASSET_CS"
	Stationery          Code = "ATK_REQ"
	Household           Code = "ARK_REQ"
)

type entry struct {
	code       Code
	moduleName string
	storeKey   string
}

// catalogue order is the order modules are listed in
var catalogue = []entry{
	{Vehicle, "Vehicle Request (Pengajuan Baru)", "vehicleData"},
	{VehicleService, "Vehicle Service Request (Servis)", "serviceData"},
	{TaxKir, "Vehicle Tax & KIR Renewal", "taxKirData"},
	{Mutation, "Vehicle Mutation (Mutasi)", "mutationData"},
	{Sales, "Vehicle Disposal (Penjualan)", "salesData"},
	{Contract, "Vehicle Contract (Sewa)", "contractData"},
	{BuildingMaintenance, "Building Maintenance Request", "buildingMaintenanceData"},
	{BranchImprovement, "New Building Request (Sewa/Beli)", "branchImprovementData"},
	{AssetHC, "General Asset Request (Furniture/etc)", "assetHcData"},
	{AssetIT, "IT Asset Request (Laptop/Devices)", "assetItData"},
	{AssetCS, "General Asset Request (Furniture/etc)", "assetCsData"},
	{Stationery, "Stationery Request (Permintaan ATK)", "atkRequestData"},
	{Household, "Household Request (Permintaan ARK)", "arkRequestData"},
}

// Store keys of the collections that are not routed by module code
const (
	KeyBuildings       = "buildingAssetData"
	KeyVendors         = "vendorData"
	KeyApprovalConfigs = "masterApprovalData"
)

var byCode = func() map[Code]entry {
	m := make(map[Code]entry, len(catalogue))
	for _, e := range catalogue {
		m[e.code] = e
	}
	return m
}()

// Codes returns every module code in catalogue order
func Codes() []Code {
	out := make([]Code, len(catalogue))
	for i, e := range catalogue {
		out[i] = e.code
	}
	return out
}

// Parse converts a raw code, ignoring surrounding space and case
func Parse(raw string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownModule, raw)
	}
	return c, nil
}

// IsValid returns true if the code is in the catalogue
func (c Code) IsValid() bool {
	_, ok := byCode[c]
	return ok
}

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// ModuleName returns the approval configuration name for the code
func (c Code) ModuleName() string {
	return byCode[c].moduleName
}

// StoreKey returns the key the module's collection is persisted under
func (c Code) StoreKey() string {
	return byCode[c].storeKey
}

// LabelKey returns the translation key of the module's display label
func (c Code) LabelKey() string {
	return "module." + strings.ToLower(string(c))
}
