package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/workflow"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/memory"
)

type countingObserver struct {
	ok, failed int
}

func (o *countingObserver) Persisted(_ string, err error) {
	if err != nil {
		o.failed++
		return
	}
	o.ok++
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newVehicles(store *memory.Store, opts ...Option) *Collection[entity.Vehicle, *entity.Vehicle] {
	opts = append([]Option{WithIDGenerator(sequentialIDs("veh"))}, opts...)
	return New[entity.Vehicle]("vehicleData", store, ApprovalBinding[entity.Vehicle, *entity.Vehicle]{}, opts...)
}

func approveDecision(status string, tier int, comment string) workflow.Decision {
	return workflow.Decision{
		NextStatus: status,
		NextTier:   tier,
		LogEntry: entity.WorkflowLogEntry{
			Step: "Approve", ResultingStatus: status, Actor: entity.DefaultActor, Date: "2024-03-11", Comment: comment,
		},
	}
}

func storedVehicles(t *testing.T, raw []byte) []entity.Vehicle {
	t.Helper()
	var out []entity.Vehicle
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestCreate_AssignsIDAndDefaults(t *testing.T) {
	store := memory.NewStore()
	c := newVehicles(store)

	v := c.Create(context.Background(), entity.Vehicle{
		ID:          "client-supplied",
		PlateNumber: "B 1234 XYZ",
		Approval:    entity.Approval{ApprovalStatus: entity.StatusApproved, CurrentTier: 7},
	})

	assert.Equal(t, "veh-1", v.ID)
	assert.Equal(t, entity.StatusPending, v.ApprovalStatus)
	assert.Equal(t, 0, v.CurrentTier)
	assert.NotNil(t, v.Workflow)
	assert.Empty(t, v.Workflow)

	other := c.Create(context.Background(), entity.Vehicle{PlateNumber: "L 9 AB"})
	assert.NotEqual(t, v.ID, other.ID)
}

func TestCollection_EveryMutationSavesOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	obs := &countingObserver{}
	c := newVehicles(store, WithObserver(obs))

	v := c.Create(ctx, entity.Vehicle{PlateNumber: "B 1"})
	require.Len(t, store.Saves("vehicleData"), 1)

	_, err := c.UpdateByID(ctx, v.ID, func(r *entity.Vehicle) error {
		r.Brand = "Toyota"
		return nil
	})
	require.NoError(t, err)
	require.Len(t, store.Saves("vehicleData"), 2)

	_, err = c.ApplyWorkflowDecision(ctx, v.ID, approveDecision("Pending Approval - Branch Manager", 1, ""))
	require.NoError(t, err)
	saves := store.Saves("vehicleData")
	require.Len(t, saves, 3)

	snapshot := storedVehicles(t, saves[2].Value)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Toyota", snapshot[0].Brand)
	assert.Equal(t, 1, snapshot[0].CurrentTier)
	assert.Equal(t, "Pending Approval - Branch Manager", snapshot[0].ApprovalStatus)

	assert.True(t, c.Delete(ctx, v.ID))
	saves = store.Saves("vehicleData")
	require.Len(t, saves, 4)
	assert.Empty(t, storedVehicles(t, saves[3].Value))

	assert.Equal(t, 4, obs.ok)
	assert.Equal(t, 0, obs.failed)
}

func TestCollection_FailedMutationsDoNotSave(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newVehicles(store)

	_, err := c.UpdateByID(ctx, "missing", func(*entity.Vehicle) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.ApplyWorkflowDecision(ctx, "missing", approveDecision(entity.StatusApproved, 0, ""))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.False(t, c.Delete(ctx, "missing"))

	v := c.Create(ctx, entity.Vehicle{})
	patchErr := errors.New("bad patch")
	_, err = c.UpdateByID(ctx, v.ID, func(*entity.Vehicle) error { return patchErr })
	assert.ErrorIs(t, err, patchErr)

	assert.Len(t, store.Saves("vehicleData"), 1)
}

func TestApplyWorkflowDecision_AppendsOneEntry(t *testing.T) {
	ctx := context.Background()
	c := newVehicles(memory.NewStore())
	v := c.Create(ctx, entity.Vehicle{})

	statuses := []string{"Pending Approval - Branch Manager", "Pending Approval - Regional Head", entity.StatusApproved}
	previous := []entity.WorkflowLogEntry{}
	for i, status := range statuses {
		updated, err := c.ApplyWorkflowDecision(ctx, v.ID, approveDecision(status, i+1, fmt.Sprintf("step %d", i+1)))
		require.NoError(t, err)

		require.Len(t, updated.Workflow, len(previous)+1)
		assert.Equal(t, previous, updated.Workflow[:len(previous)])
		assert.Equal(t, status, updated.Workflow[len(previous)].ResultingStatus)
		previous = updated.Workflow
	}
}

func TestApplyWorkflowDecision_DoesNotAliasEarlierSnapshots(t *testing.T) {
	ctx := context.Background()
	c := newVehicles(memory.NewStore())
	v := c.Create(ctx, entity.Vehicle{})

	first, err := c.ApplyWorkflowDecision(ctx, v.ID, approveDecision("Pending Approval - A", 1, "one"))
	require.NoError(t, err)
	listed := c.List()

	_, err = c.ApplyWorkflowDecision(ctx, v.ID, approveDecision("Pending Approval - B", 2, "two"))
	require.NoError(t, err)

	assert.Len(t, first.Workflow, 1)
	assert.Len(t, listed[0].Workflow, 1)
	assert.Equal(t, "Pending Approval - A", listed[0].ApprovalStatus)
}

func TestUpdateByID_KeepsIDAndApproval(t *testing.T) {
	ctx := context.Background()
	c := newVehicles(memory.NewStore())
	v := c.Create(ctx, entity.Vehicle{PlateNumber: "B 1"})
	_, err := c.ApplyWorkflowDecision(ctx, v.ID, approveDecision("Pending Approval - A", 1, ""))
	require.NoError(t, err)

	updated, err := c.UpdateByID(ctx, v.ID, func(r *entity.Vehicle) error {
		r.ID = "hijacked"
		r.PlateNumber = "B 2"
		r.ApprovalStatus = entity.StatusApproved
		r.CurrentTier = 9
		r.Workflow = nil
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, v.ID, updated.ID)
	assert.Equal(t, "B 2", updated.PlateNumber)
	assert.Equal(t, "Pending Approval - A", updated.ApprovalStatus)
	assert.Equal(t, 1, updated.CurrentTier)
	assert.Len(t, updated.Workflow, 1)
}

func TestList_PreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	c := newVehicles(memory.NewStore())
	for _, plate := range []string{"C", "A", "B"} {
		c.Create(ctx, entity.Vehicle{PlateNumber: plate})
	}
	c.Delete(ctx, "veh-2")

	var plates []string
	for _, v := range c.List() {
		plates = append(plates, v.PlateNumber)
	}
	assert.Equal(t, []string{"C", "B"}, plates)
	assert.Equal(t, 2, c.Len())
}

func TestPersistFailure_KeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.FailWith(errors.New("disk full"))
	core, logs := observer.New(zap.WarnLevel)
	obs := &countingObserver{}
	c := newVehicles(store, WithLogger(zap.New(core)), WithObserver(obs))

	v := c.Create(ctx, entity.Vehicle{PlateNumber: "B 1"})
	got, err := c.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "B 1", got.PlateNumber)

	_, err = c.ApplyWorkflowDecision(ctx, v.ID, approveDecision(entity.StatusApproved, 0, ""))
	require.NoError(t, err)
	got, _ = c.Get(v.ID)
	assert.Equal(t, entity.StatusApproved, got.ApprovalStatus)

	assert.Equal(t, 2, obs.failed)
	assert.Equal(t, 2, logs.FilterMessage("Failed to persist collection").Len())
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key leaves collection empty", func(t *testing.T) {
		c := newVehicles(memory.NewStore())
		require.NoError(t, c.Load(ctx))
		assert.Empty(t, c.List())
	})

	t.Run("restores and normalizes snapshot", func(t *testing.T) {
		store := memory.NewStore()
		store.Put("vehicleData", []byte(`[
			{"id":"v1","plateNumber":"B 1","approvalStatus":"Approved","currentTier":3,"workflow":[{"step":"Approve"}]},
			{"id":"v2","plateNumber":"B 2","currentTier":-1}
		]`))
		c := newVehicles(store)
		require.NoError(t, c.Load(ctx))

		items := c.List()
		require.Len(t, items, 2)
		assert.Equal(t, entity.StatusApproved, items[0].ApprovalStatus)
		assert.Len(t, items[0].Workflow, 1)
		assert.Equal(t, entity.StatusPending, items[1].ApprovalStatus)
		assert.Equal(t, 0, items[1].CurrentTier)
		assert.NotNil(t, items[1].Workflow)
		assert.Empty(t, store.Saves("vehicleData"))
	})

	t.Run("corrupt snapshot is an error", func(t *testing.T) {
		store := memory.NewStore()
		store.Put("vehicleData", []byte(`{not json`))
		assert.Error(t, newVehicles(store).Load(ctx))
	})
}

func TestMasterCollection(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	vendors := New[entity.Vendor]("vendorData", store, MasterBinding[entity.Vendor]{}, WithIDGenerator(sequentialIDs("vnd")))

	v := vendors.Create(ctx, entity.Vendor{Name: "PT Sinar"})
	assert.Equal(t, "vnd-1", v.ID)
	assert.False(t, vendors.Approvable())
	assert.Empty(t, vendors.States())

	_, err := vendors.ApplyWorkflowDecision(ctx, v.ID, approveDecision(entity.StatusApproved, 0, ""))
	assert.ErrorIs(t, err, ErrNotApprovable)
	_, err = vendors.State(v.ID)
	assert.ErrorIs(t, err, ErrNotApprovable)
	assert.Len(t, store.Saves("vendorData"), 1)
}

func TestBranchImprovementBinding(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := New[entity.BranchImprovement]("branchImprovementData", store, BranchImprovementBinding{}, WithIDGenerator(sequentialIDs("bi")))

	r := c.Create(ctx, entity.BranchImprovement{BranchName: "Surabaya"})
	assert.Equal(t, entity.StatusPending, r.Status)
	assert.True(t, c.Approvable())

	d := workflow.Decision{
		NextStatus: entity.StatusRejected,
		NextTier:   0,
		LogEntry: entity.WorkflowLogEntry{
			Step: "Reject", ResultingStatus: entity.StatusRejected, Actor: "Regional Head", Date: "2024-03-11", Comment: "over budget",
		},
	}
	updated, err := c.ApplyWorkflowDecision(ctx, r.ID, d)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, updated.Status)
	assert.Equal(t, []entity.BranchWorkflowEntry{
		{Role: "Regional Head", Status: entity.StatusRejected, Comment: "over budget", Date: "2024-03-11"},
	}, updated.Workflow)

	state, err := c.State(r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, state.Status)
	require.Len(t, state.Workflow, 1)
	assert.Equal(t, d.LogEntry, state.Workflow[0])

	var raw []map[string]interface{}
	saves := store.Saves("branchImprovementData")
	require.NoError(t, json.Unmarshal(saves[len(saves)-1].Value, &raw))
	assert.Equal(t, entity.StatusRejected, raw[0]["status"])
	assert.NotContains(t, raw[0], "approvalStatus")
}

func TestErased(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := Erase(newVehicles(store))

	id, created, err := repo.CreateJSON(ctx, []byte(`{"plateNumber":"B 77","brand":"Isuzu","approvalStatus":"Approved"}`))
	require.NoError(t, err)
	v := created.(entity.Vehicle)
	assert.NotEmpty(t, id)
	assert.Equal(t, v.ID, id)
	assert.Equal(t, entity.StatusPending, v.ApprovalStatus)

	patched, err := repo.PatchJSON(ctx, v.ID, []byte(`{"brand":"Hino","currentTier":3}`))
	require.NoError(t, err)
	pv := patched.(entity.Vehicle)
	assert.Equal(t, "Hino", pv.Brand)
	assert.Equal(t, "B 77", pv.PlateNumber)
	assert.Equal(t, 0, pv.CurrentTier)

	_, err = repo.PatchJSON(ctx, v.ID, []byte(`[`))
	assert.ErrorIs(t, err, ErrInvalidRecord)
	_, _, err = repo.CreateJSON(ctx, []byte(`"nope"`))
	assert.ErrorIs(t, err, ErrInvalidRecord)

	assert.Len(t, repo.List(), 1)
	assert.Equal(t, "vehicleData", repo.Key())
	assert.True(t, repo.Approvable())
	assert.Len(t, store.Saves("vehicleData"), 2)
}
