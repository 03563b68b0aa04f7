package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() PreviewInput {
	return PreviewInput{
		RoomName:      "A-101",
		RoomPrice:     dec("2000000"),
		ElectricPrev:  100,
		WaterPrev:     50,
		ElectricFee:   dec("3500"),
		WaterFee:      dec("8000"),
		ElectricNext:  f64(150),
		WaterNext:     f64(60),
		ActiveTenants: 1,
		Services: []RoomServiceInput{
			{Name: "Internet", Price: dec("100000"), Quantity: 1, PriceType: PriceFixed},
		},
	}
}

func criticalCount(p Preview) int {
	n := 0
	for _, issue := range p.Issues {
		if issue.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

func TestBuildPreview_HappyPath(t *testing.T) {
	p := BuildPreview(baseInput())

	assert.Empty(t, p.Issues)
	assert.True(t, p.CanSend)
	assert.Equal(t, 50.0, p.ElectricUsage)
	assert.Equal(t, 10.0, p.WaterUsage)
	assert.True(t, p.ElectricCost.Equal(dec("175000")), "got %s", p.ElectricCost)
	assert.True(t, p.WaterCost.Equal(dec("80000")), "got %s", p.WaterCost)
	assert.True(t, p.ServiceCost.Equal(dec("100000")))
	// 2000000 + 175000 + 80000 + 100000
	assert.True(t, p.Total.Equal(dec("2355000")), "got %s", p.Total)
}

func TestBuildPreview_NoActiveTenantBlocksSending(t *testing.T) {
	in := baseInput()
	in.ActiveTenants = 0

	p := BuildPreview(in)

	assert.False(t, p.CanSend)
	require.NotEmpty(t, p.Issues)
	assert.Equal(t, "Room has no active rental contract", p.Issues[0].Message)
	assert.Equal(t, SeverityCritical, p.Issues[0].Severity)
	// The rest of the breakdown stays usable for the UI.
	assert.True(t, p.Total.Equal(dec("2355000")))
}

func TestBuildPreview_MeterRegressionIsCriticalButPartial(t *testing.T) {
	in := baseInput()
	in.ElectricNext = f64(90) // below the 100 baseline

	p := BuildPreview(in)

	assert.False(t, p.CanSend)
	assert.Equal(t, 1, criticalCount(p))
	// The electric component zeroes out, water still computes.
	assert.Equal(t, 0.0, p.ElectricUsage)
	assert.True(t, p.ElectricCost.IsZero())
	assert.True(t, p.WaterCost.Equal(dec("80000")))
}

func TestBuildPreview_MissingReadingsMeanZeroUsage(t *testing.T) {
	in := baseInput()
	in.ElectricNext = nil
	in.WaterNext = nil

	p := BuildPreview(in)

	assert.True(t, p.CanSend)
	assert.Equal(t, 0.0, p.ElectricUsage)
	assert.Equal(t, 0.0, p.WaterUsage)
	assert.Equal(t, in.ElectricPrev, p.ElectricNext)
	assert.True(t, p.Total.Equal(dec("2100000")), "got %s", p.Total)
}

func TestBuildPreview_ExpectedTotalCrossCheck(t *testing.T) {
	t.Run("within tolerance passes silently", func(t *testing.T) {
		in := baseInput()
		expected := dec("2355000.01")
		in.ExpectedTotal = &expected

		p := BuildPreview(in)
		assert.Empty(t, p.Issues)
		assert.True(t, p.CanSend)
	})

	t.Run("mismatch warns without blocking", func(t *testing.T) {
		in := baseInput()
		expected := dec("2300000")
		in.ExpectedTotal = &expected

		p := BuildPreview(in)
		require.Len(t, p.Issues, 1)
		assert.Equal(t, SeverityWarning, p.Issues[0].Severity)
		assert.True(t, p.CanSend)
	})
}

func TestBuildPreview_CollectsMultipleIssues(t *testing.T) {
	in := baseInput()
	in.ActiveTenants = 0
	in.ElectricNext = f64(90)
	in.WaterNext = f64(40)

	p := BuildPreview(in)

	assert.False(t, p.CanSend)
	assert.Equal(t, 3, criticalCount(p))
}

func TestBuildPreview_ZeroTotalIsCritical(t *testing.T) {
	in := PreviewInput{
		RoomPrice:     decimal.Zero,
		ElectricFee:   decimal.Zero,
		WaterFee:      decimal.Zero,
		ActiveTenants: 1,
	}

	p := BuildPreview(in)

	assert.False(t, p.CanSend)
	require.NotEmpty(t, p.Issues)
	assert.Contains(t, p.Issues[0].Message, "must be greater than zero")
}
