package entity

func (r *Vehicle) GetID() string               { return r.ID }
func (r *Vehicle) SetID(id string)             { r.ID = id }
func (r *VehicleService) GetID() string        { return r.ID }
func (r *VehicleService) SetID(id string)      { r.ID = id }
func (r *TaxKir) GetID() string                { return r.ID }
func (r *TaxKir) SetID(id string)              { r.ID = id }
func (r *Mutation) GetID() string              { return r.ID }
func (r *Mutation) SetID(id string)            { r.ID = id }
func (r *Sales) GetID() string                 { return r.ID }
func (r *Sales) SetID(id string)               { r.ID = id }
func (r *Contract) GetID() string              { return r.ID }
func (r *Contract) SetID(id string)            { r.ID = id }
func (r *BuildingMaintenance) GetID() string   { return r.ID }
func (r *BuildingMaintenance) SetID(id string) { r.ID = id }
func (r *BranchImprovement) GetID() string     { return r.ID }
func (r *BranchImprovement) SetID(id string)   { r.ID = id }
func (r *AssetRequest) GetID() string          { return r.ID }
func (r *AssetRequest) SetID(id string)        { r.ID = id }
func (r *SupplyRequest) GetID() string         { return r.ID }
func (r *SupplyRequest) SetID(id string)       { r.ID = id }
func (r *Building) GetID() string              { return r.ID }
func (r *Building) SetID(id string)            { r.ID = id }
func (r *Vendor) GetID() string                { return r.ID }
func (r *Vendor) SetID(id string)              { r.ID = id }
