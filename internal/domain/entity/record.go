package entity

// Vehicle is a vehicle procurement request (Pengajuan Baru)
type Vehicle struct {
	ID          string `json:"id"`
	PlateNumber string `json:"plateNumber"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Branch      string `json:"branch"`
	Purpose     string `json:"purpose"`
	RequestDate string `json:"requestDate"`
	Approval
}

// VehicleService is a workshop service request for a fleet vehicle
type VehicleService struct {
	ID            string  `json:"id"`
	PlateNumber   string  `json:"plateNumber"`
	ServiceType   string  `json:"serviceType"`
	Workshop      string  `json:"workshop"`
	EstimatedCost float64 `json:"estimatedCost"`
	ScheduledDate string  `json:"scheduledDate"`
	Branch        string  `json:"branch"`
	Approval
}

// TaxKir is a vehicle tax or KIR inspection renewal
type TaxKir struct {
	ID          string  `json:"id"`
	PlateNumber string  `json:"plateNumber"`
	Kind        string  `json:"kind"`
	DueDate     string  `json:"dueDate"`
	Amount      float64 `json:"amount"`
	Branch      string  `json:"branch"`
	Approval
}

// Mutation moves a vehicle between branches
type Mutation struct {
	ID            string `json:"id"`
	PlateNumber   string `json:"plateNumber"`
	FromBranch    string `json:"fromBranch"`
	ToBranch      string `json:"toBranch"`
	Reason        string `json:"reason"`
	EffectiveDate string `json:"effectiveDate"`
	Approval
}

// Sales is a vehicle disposal (Penjualan)
type Sales struct {
	ID           string  `json:"id"`
	PlateNumber  string  `json:"plateNumber"`
	Method       string  `json:"method"`
	ReservePrice float64 `json:"reservePrice"`
	Branch       string  `json:"branch"`
	Reason       string  `json:"reason"`
	Approval
}

// Contract is a vehicle rental contract (Sewa)
type Contract struct {
	ID          string  `json:"id"`
	PlateNumber string  `json:"plateNumber"`
	Vendor      string  `json:"vendor"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	MonthlyCost float64 `json:"monthlyCost"`
	Branch      string  `json:"branch"`
	Approval
}

// BuildingMaintenance is a maintenance request for a building asset
type BuildingMaintenance struct {
	ID            string  `json:"id"`
	BuildingID    string  `json:"buildingId"`
	BuildingName  string  `json:"buildingName"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	EstimatedCost float64 `json:"estimatedCost"`
	Branch        string  `json:"branch"`
	Approval
}

// BranchWorkflowEntry is the log shape kept by branch improvement records
type BranchWorkflowEntry struct {
	Role    string `json:"role"`
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

// BranchImprovement is a new building request (Sewa/Beli). It keeps its
// own status field and log shape instead of embedding Approval.
type BranchImprovement struct {
	ID          string                `json:"id"`
	BranchName  string                `json:"branchName"`
	Location    string                `json:"location"`
	Ownership   string                `json:"ownership"`
	Budget      float64               `json:"budget"`
	Status      string                `json:"status"`
	CurrentTier int                   `json:"currentTier"`
	Workflow    []BranchWorkflowEntry `json:"workflow"`
}

// AssetRequest is a general, IT or CS asset request
type AssetRequest struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	ItemName      string `json:"itemName"`
	Quantity      int    `json:"quantity"`
	Requester     string `json:"requester"`
	Department    string `json:"department"`
	Branch        string `json:"branch"`
	Justification string `json:"justification"`
	Approval
}

// SupplyLine is one item of a supply request
type SupplyLine struct {
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// SupplyRequest is a stationery (ATK) or household (ARK) request
type SupplyRequest struct {
	ID          string       `json:"id"`
	Requester   string       `json:"requester"`
	Department  string       `json:"department"`
	Branch      string       `json:"branch"`
	RequestDate string       `json:"requestDate"`
	Items       []SupplyLine `json:"items"`
	Approval
}

// Building is a master building asset
type Building struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Branch    string  `json:"branch"`
	Ownership string  `json:"ownership"`
	AreaSqm   float64 `json:"areaSqm"`
}

// Vendor is a master vendor entry
type Vendor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Contact  string `json:"contact"`
	Phone    string `json:"phone"`
}
