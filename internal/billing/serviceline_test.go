package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateServiceLines(t *testing.T) {
	roomPrice := dec("2000000")

	t.Run("fixed and unit based lines total price times quantity", func(t *testing.T) {
		lines, subtotal, err := AggregateServiceLines([]RoomServiceInput{
			{Name: "Internet", Price: dec("100000"), Quantity: 1, PriceType: PriceFixed},
			{Name: "Trash", Price: dec("25000"), Quantity: 2, PriceType: PriceUnitBased, Unit: "person"},
		}, roomPrice)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.True(t, lines[0].LineTotal.Equal(dec("100000")))
		assert.True(t, lines[1].LineTotal.Equal(dec("50000")))
		assert.True(t, subtotal.Equal(dec("150000")))
	})

	t.Run("percentage lines charge a share of the rent and ignore quantity", func(t *testing.T) {
		lines, subtotal, err := AggregateServiceLines([]RoomServiceInput{
			{Name: "Management fee", Price: dec("5"), Quantity: 3, PriceType: PricePercentage},
		}, roomPrice)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.True(t, lines[0].LineTotal.Equal(dec("100000")), "got %s", lines[0].LineTotal)
		assert.True(t, subtotal.Equal(dec("100000")))
	})

	t.Run("empty input yields zero subtotal", func(t *testing.T) {
		lines, subtotal, err := AggregateServiceLines(nil, roomPrice)
		require.NoError(t, err)
		assert.Empty(t, lines)
		assert.True(t, subtotal.IsZero())
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, _, err := AggregateServiceLines([]RoomServiceInput{
			{Name: "Broken", Price: dec("-1"), Quantity: 1, PriceType: PriceFixed},
		}, roomPrice)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidServiceLine)
		assert.Contains(t, err.Error(), "Broken")
	})

	t.Run("rejects non-positive quantity for non-percentage lines", func(t *testing.T) {
		_, _, err := AggregateServiceLines([]RoomServiceInput{
			{Name: "Internet", Price: dec("100000"), Quantity: 0, PriceType: PriceFixed},
		}, roomPrice)
		assert.ErrorIs(t, err, ErrInvalidServiceLine)
	})
}
