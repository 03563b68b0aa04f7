package service

import (
	"context"
	"testing"
	"time"

	"bhms-backend/internal/model"
	"bhms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTenantEnv(t *testing.T) (*billingEnv, TenantService) {
	t.Helper()
	env := newBillingEnv(t)
	svc := NewTenantService(
		repository.NewTenantRepository(env.db),
		repository.NewContractRepository(env.db),
		env.rooms,
		repository.NewAuditRepository(env.db),
		repository.NewTransactionManager(env.db),
	)
	return env, svc
}

func TestCreateContract_OccupiesRoom(t *testing.T) {
	env, svc := newTenantEnv(t)
	ctx := context.Background()
	actorID := uuid.NewString()

	room := seedRoom(t, env.db)
	require.NoError(t, env.db.Model(room).Update("status", model.RoomEmpty).Error)

	tenant, err := svc.Create(ctx, actorID, CreateTenantRequest{FullName: "Tran Thi B", Email: "b@example.com"})
	require.NoError(t, err)

	contract, err := svc.CreateContract(ctx, actorID, CreateContractRequest{
		RoomID:    room.ID.String(),
		TenantID:  tenant.ID,
		Deposit:   "500000",
		StartDate: time.Now().Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ContractActive, contract.Status)
	assert.Equal(t, "500000.00", contract.Deposit)

	fresh := reloadRoom(t, env.db, room.ID)
	assert.Equal(t, model.RoomOccupied, fresh.Status)

	assert.EqualValues(t, 1, auditCount(t, env.db, model.ActionCreateTenant))
	assert.EqualValues(t, 1, auditCount(t, env.db, model.ActionCreateContract))
}

func TestCreateContract_LockedRoomIsRejected(t *testing.T) {
	env, svc := newTenantEnv(t)
	ctx := context.Background()

	room := seedRoom(t, env.db)
	require.NoError(t, env.db.Model(room).Update("status", model.RoomLocked).Error)

	tenant, err := svc.Create(ctx, "", CreateTenantRequest{FullName: "Tran Thi B"})
	require.NoError(t, err)

	_, err = svc.CreateContract(ctx, "", CreateContractRequest{
		RoomID:    room.ID.String(),
		TenantID:  tenant.ID,
		StartDate: time.Now().Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
	assert.EqualValues(t, 0, auditCount(t, env.db, model.ActionCreateContract))
}

func TestEndContract_FreesRoomWhenLastTenantLeaves(t *testing.T) {
	env, svc := newTenantEnv(t)
	ctx := context.Background()
	actorID := uuid.NewString()

	room := seedRoom(t, env.db)
	first := seedContract(t, env.db, room.ID, "a@example.com")
	second := seedContract(t, env.db, room.ID, "c@example.com")

	ended, err := svc.EndContract(ctx, actorID, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.ContractEnded, ended.Status)
	require.NotNil(t, ended.EndDate)

	// One housemate remains, the room stays occupied.
	fresh := reloadRoom(t, env.db, room.ID)
	assert.Equal(t, model.RoomOccupied, fresh.Status)

	_, err = svc.EndContract(ctx, actorID, second.ID.String())
	require.NoError(t, err)

	fresh = reloadRoom(t, env.db, room.ID)
	assert.Equal(t, model.RoomEmpty, fresh.Status)

	// Ending an already-ended contract is a no-op.
	again, err := svc.EndContract(ctx, actorID, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.ContractEnded, again.Status)
	assert.EqualValues(t, 2, auditCount(t, env.db, model.ActionEndContract))
}

func TestListContractsByRoom_FiltersByStatus(t *testing.T) {
	env, svc := newTenantEnv(t)
	ctx := context.Background()

	room := seedRoom(t, env.db)
	active := seedContract(t, env.db, room.ID, "a@example.com")
	endedContract := seedContract(t, env.db, room.ID, "c@example.com")
	_, err := svc.EndContract(ctx, "", endedContract.ID.String())
	require.NoError(t, err)

	activeOnly, err := svc.ListContractsByRoom(ctx, room.ID.String(), model.ContractActive)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active.ID.String(), activeOnly[0].ID)

	all, err := svc.ListContractsByRoom(ctx, room.ID.String(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
