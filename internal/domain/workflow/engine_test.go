package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/asset-console/internal/domain/entity"
)

var today = time.Date(2024, time.March, 11, 15, 4, 0, 0, time.UTC)

func vehicleConfig() *entity.ApprovalConfiguration {
	return &entity.ApprovalConfiguration{
		ID:          "cfg-vehicle",
		ModuleName:  "Vehicle Request (Pengajuan Baru)",
		BranchScope: entity.AllBranches,
		Tiers: []entity.ApprovalTier{
			{Level: 1, ApproverType: entity.ApproverRole, ApproverValue: "Branch Manager", SLADays: 2},
			{Level: 2, ApproverType: entity.ApproverRole, ApproverValue: "Regional Head", SLADays: 3},
			{Level: 3, ApproverType: entity.ApproverUser, ApproverValue: "Budi Santoso", SLADays: 5},
		},
	}
}

func decide(t *testing.T, in Input) Decision {
	t.Helper()
	if in.Today.IsZero() {
		in.Today = today
	}
	if in.Actor == "" {
		in.Actor = entity.DefaultActor
	}
	d, err := Decide(in)
	require.NoError(t, err)
	return d
}

func TestDecide_WalksVehicleChain(t *testing.T) {
	cfg := vehicleConfig()
	snap := Snapshot{Status: entity.StatusPending}

	steps := []struct {
		tier   int
		status string
		due    string
	}{
		{1, "Pending Approval - Branch Manager", "2024-03-13"},
		{2, "Pending Approval - Regional Head", "2024-03-14"},
		{3, "Pending Approval - Budi Santoso", "2024-03-16"},
		{3, entity.StatusApproved, ""},
	}

	for i, step := range steps {
		d := decide(t, Input{Action: ActionApprove, Record: snap, Config: cfg})
		assert.Equal(t, step.tier, d.NextTier, "step %d", i+1)
		assert.Equal(t, step.status, d.NextStatus, "step %d", i+1)
		assert.Equal(t, step.due, d.DueDate, "step %d", i+1)
		assert.NoError(t, d.Anomaly)
		snap = Snapshot{Status: d.NextStatus, CurrentTier: d.NextTier}
	}
}

func TestDecide_RejectKeepsTier(t *testing.T) {
	d := decide(t, Input{
		Action:  ActionReject,
		Record:  Snapshot{Status: "Pending Approval - Branch Manager", CurrentTier: 1},
		Config:  vehicleConfig(),
		Comment: "Missing documents",
	})

	assert.Equal(t, entity.StatusRejected, d.NextStatus)
	assert.Equal(t, 1, d.NextTier)
	assert.Equal(t, entity.WorkflowLogEntry{
		Step:            "Reject",
		ResultingStatus: entity.StatusRejected,
		Actor:           entity.DefaultActor,
		Date:            "2024-03-11",
		Comment:         "Missing documents",
	}, d.LogEntry)
	assert.Nil(t, d.PendingTier)
}

func TestDecide_NoConfigurationApprovesAtOnce(t *testing.T) {
	tests := []struct {
		name   string
		config *entity.ApprovalConfiguration
		tier   int
	}{
		{"absent configuration", nil, 0},
		{"absent configuration mid chain", nil, 4},
		{"empty tier list", &entity.ApprovalConfiguration{ModuleName: "Stationery Request (Permintaan ATK)"}, 0},
		{"empty tier list mid chain", &entity.ApprovalConfiguration{ModuleName: "x", Tiers: []entity.ApprovalTier{}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(t, Input{Action: ActionApprove, Record: Snapshot{CurrentTier: tt.tier}, Config: tt.config})
			assert.Equal(t, entity.StatusApproved, d.NextStatus)
			assert.Equal(t, tt.tier, d.NextTier)
			assert.Equal(t, "Approve", d.LogEntry.Step)
		})
	}
}

func TestDecide_CommentRequired(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		comment string
		wantErr bool
	}{
		{"revise empty", ActionRevise, "", true},
		{"revise whitespace", ActionRevise, " \t\n", true},
		{"reject empty", ActionReject, "", true},
		{"reject whitespace", ActionReject, "   ", true},
		{"reject with comment", ActionReject, "no budget", false},
		{"approve empty", ActionApprove, "", false},
		{"approve whitespace", ActionApprove, "  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decide(Input{Action: tt.action, Config: vehicleConfig(), Comment: tt.comment, Today: today})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidComment)
				assert.Equal(t, Decision{}, d)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDecide_InvalidAction(t *testing.T) {
	_, err := Decide(Input{Action: "Escalate", Today: today})
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = Decide(Input{Today: today})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestDecide_ApproveReachesEndInTotalSteps(t *testing.T) {
	for total := 0; total <= 6; total++ {
		cfg := &entity.ApprovalConfiguration{ModuleName: "chain"}
		for level := 1; level <= total; level++ {
			cfg.Tiers = append(cfg.Tiers, entity.ApprovalTier{
				Level: level, ApproverType: entity.ApproverRole, ApproverValue: "Approver", SLADays: 1,
			})
		}

		snap := Snapshot{}
		for i := 0; i < total; i++ {
			d := decide(t, Input{Action: ActionApprove, Record: snap, Config: cfg})
			require.GreaterOrEqual(t, d.NextTier, snap.CurrentTier)
			snap = Snapshot{Status: d.NextStatus, CurrentTier: d.NextTier}
		}
		assert.Equal(t, total, snap.CurrentTier, "total %d", total)

		d := decide(t, Input{Action: ActionApprove, Record: snap, Config: cfg})
		assert.Equal(t, entity.StatusApproved, d.NextStatus, "total %d", total)
		assert.Equal(t, total, d.NextTier, "total %d", total)
	}
}

func TestDecide_TerminalStaysApproved(t *testing.T) {
	cfg := vehicleConfig()
	for _, status := range []string{entity.StatusApproved, entity.StatusRejected} {
		t.Run(status, func(t *testing.T) {
			snap := Snapshot{Status: status, CurrentTier: 3}
			for i := 0; i < 3; i++ {
				d := decide(t, Input{Action: ActionApprove, Record: snap, Config: cfg})
				assert.Equal(t, entity.StatusApproved, d.NextStatus)
				assert.Equal(t, 3, d.NextTier)
				snap = Snapshot{Status: d.NextStatus, CurrentTier: d.NextTier}
			}
		})
	}
}

func TestDecide_RejectAndReviseNeverMoveTier(t *testing.T) {
	configs := map[string]*entity.ApprovalConfiguration{
		"none":    nil,
		"empty":   {ModuleName: "x"},
		"vehicle": vehicleConfig(),
	}

	for name, cfg := range configs {
		for _, action := range []Action{ActionReject, ActionRevise} {
			for tier := -1; tier <= 5; tier++ {
				d := decide(t, Input{Action: action, Record: Snapshot{CurrentTier: tier}, Config: cfg, Comment: "fix it"})
				assert.Equal(t, tier, d.NextTier, "%s %s tier %d", name, action, tier)
			}
		}
	}
}

func TestDecide_ReviseIgnoresConfiguration(t *testing.T) {
	d := decide(t, Input{Action: ActionRevise, Record: Snapshot{CurrentTier: 2}, Config: vehicleConfig(), Comment: "wrong plate"})
	assert.Equal(t, entity.StatusRevised, d.NextStatus)
	assert.Equal(t, "Revise", d.LogEntry.Step)
	assert.Equal(t, entity.StatusRevised, d.LogEntry.ResultingStatus)
}

func TestDecide_MalformedChainFallsBackToApproved(t *testing.T) {
	cfg := &entity.ApprovalConfiguration{
		ModuleName: "Vehicle Mutation (Mutasi)",
		Tiers: []entity.ApprovalTier{
			{Level: 1, ApproverType: entity.ApproverRole, ApproverValue: "Branch Manager", SLADays: 1},
			{Level: 3, ApproverType: entity.ApproverRole, ApproverValue: "Director", SLADays: 1},
		},
	}

	d := decide(t, Input{Action: ActionApprove, Record: Snapshot{CurrentTier: 1}, Config: cfg})
	assert.Equal(t, entity.StatusApproved, d.NextStatus)
	assert.Equal(t, 1, d.NextTier)
	assert.ErrorIs(t, d.Anomaly, ErrMalformedConfiguration)
	assert.Equal(t, entity.StatusApproved, d.LogEntry.ResultingStatus)
}

func TestDecide_UnsortedTiersFollowLevel(t *testing.T) {
	cfg := vehicleConfig()
	cfg.Tiers[0], cfg.Tiers[2] = cfg.Tiers[2], cfg.Tiers[0]

	d := decide(t, Input{Action: ActionApprove, Config: cfg})
	assert.Equal(t, "Pending Approval - Branch Manager", d.NextStatus)
	require.NotNil(t, d.PendingTier)
	assert.Equal(t, entity.ApproverRole, d.PendingTier.ApproverType)
}

func TestDecide_NegativeTierClamped(t *testing.T) {
	d := decide(t, Input{Action: ActionApprove, Record: Snapshot{CurrentTier: -3}, Config: vehicleConfig()})
	assert.Equal(t, 1, d.NextTier)
	assert.Equal(t, "Pending Approval - Branch Manager", d.NextStatus)
}

func TestDecide_EmptyApproverIsDiagnosed(t *testing.T) {
	cfg := &entity.ApprovalConfiguration{
		ModuleName: "IT Asset Request (Laptop/Devices)",
		Tiers:      []entity.ApprovalTier{{Level: 1, ApproverType: entity.ApproverUser, SLADays: 2}},
	}

	d := decide(t, Input{Action: ActionApprove, Config: cfg})
	assert.Equal(t, 1, d.NextTier)
	assert.Equal(t, entity.PendingApprovalPrefix, d.NextStatus)
	assert.ErrorIs(t, d.Anomaly, ErrMalformedConfiguration)
}

func TestDecide_DoesNotMutateConfiguration(t *testing.T) {
	cfg := vehicleConfig()
	cfg.Tiers[0], cfg.Tiers[1] = cfg.Tiers[1], cfg.Tiers[0]
	before := cfg.Clone()

	decide(t, Input{Action: ActionApprove, Config: cfg})
	assert.Equal(t, before, *cfg)
}

func TestDecide_LogEntryCarriesActor(t *testing.T) {
	d := decide(t, Input{Action: ActionApprove, Actor: "siti.rahma", Comment: "ok"})
	assert.Equal(t, "siti.rahma", d.LogEntry.Actor)
	assert.Equal(t, "ok", d.LogEntry.Comment)
	assert.Equal(t, "2024-03-11", d.LogEntry.Date)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		raw     string
		want    Action
		wantErr bool
	}{
		{"Approve", ActionApprove, false},
		{"reject", ActionReject, false},
		{" REVISE ", ActionRevise, false},
		{"cancel", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAction(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPendingApprover(t *testing.T) {
	approver, ok := PendingApprover("Pending Approval - Regional Head")
	assert.True(t, ok)
	assert.Equal(t, "Regional Head", approver)

	_, ok = PendingApprover(entity.StatusPending)
	assert.False(t, ok)
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{entity.StatusApproved, true},
		{entity.StatusRejected, true},
		{entity.StatusRevised, true},
		{entity.StatusPending, false},
		{entity.StatusDraft, false},
		{"Pending Approval - Branch Manager", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTerminal(tt.status))
		})
	}
}
