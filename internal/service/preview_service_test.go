package service

import (
	"context"
	"testing"

	"bhms-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview_HappyPath(t *testing.T) {
	env := newBillingEnv(t)
	room := seedRoom(t, env.db)
	seedContract(t, env.db, room.ID, "tenant@example.com")
	seedRoomService(t, env.db, room.ID)

	electric, water := 150.0, 60.0
	preview, err := env.previewSvc.Preview(context.Background(), room.ID.String(), PreviewRequest{
		ElectricReading: &electric,
		WaterReading:    &water,
	})
	require.NoError(t, err)

	assert.True(t, preview.CanSend)
	assert.Empty(t, preview.Issues)
	assert.Equal(t, 1, preview.ActiveTenants)
	assert.Equal(t, 50.0, preview.ElectricUsage)
	assert.Equal(t, "175000.00", preview.ElectricCost)
	assert.Equal(t, "80000.00", preview.WaterCost)
	require.Len(t, preview.ServiceLines, 1)
	assert.Equal(t, "Internet", preview.ServiceLines[0].Name)
	assert.Equal(t, "2355000.00", preview.Total)

	// Preview is read-only: no invoice rows, meters untouched.
	var invoiceCount int64
	require.NoError(t, env.db.Model(&model.Invoice{}).Count(&invoiceCount).Error)
	assert.Zero(t, invoiceCount)
	fresh := reloadRoom(t, env.db, room.ID)
	assert.Equal(t, 100.0, fresh.ElectricMeterNow)
}

func TestPreview_VacantRoomCannotSend(t *testing.T) {
	env := newBillingEnv(t)
	room := seedRoom(t, env.db)

	electric, water := 150.0, 60.0
	preview, err := env.previewSvc.Preview(context.Background(), room.ID.String(), PreviewRequest{
		ElectricReading: &electric,
		WaterReading:    &water,
	})
	require.NoError(t, err, "a blocked preview is still a successful preview")

	assert.False(t, preview.CanSend)
	require.NotEmpty(t, preview.Issues)
	assert.Equal(t, "Room has no active rental contract", preview.Issues[0].Message)
	assert.Equal(t, "critical", preview.Issues[0].Severity)
	// The cost breakdown remains available for the owner to inspect.
	assert.Equal(t, "2255000.00", preview.Total)
}

func TestPreview_ExpectedTotalMismatchWarns(t *testing.T) {
	env := newBillingEnv(t)
	room := seedRoom(t, env.db)
	seedContract(t, env.db, room.ID, "tenant@example.com")

	electric, water := 150.0, 60.0
	expected := "2000000"
	preview, err := env.previewSvc.Preview(context.Background(), room.ID.String(), PreviewRequest{
		ElectricReading: &electric,
		WaterReading:    &water,
		ExpectedTotal:   &expected,
	})
	require.NoError(t, err)

	require.Len(t, preview.Issues, 1)
	assert.Equal(t, "warning", preview.Issues[0].Severity)
	assert.True(t, preview.CanSend, "warnings never block sending")
}

func TestPreview_UnknownRoom(t *testing.T) {
	env := newBillingEnv(t)

	_, err := env.previewSvc.Preview(context.Background(), uuid.NewString(), PreviewRequest{})
	require.Error(t, err)
}
