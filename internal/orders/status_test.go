package orders

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanTransitionForward(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusProcessing},
		{StatusProcessing, StatusShipped},
		{StatusShipped, StatusDelivered},
		// Skips along the forward path are legal.
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusProcessing, StatusDelivered},
	}
	for _, tc := range cases {
		require.NoError(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionBackwardRejected(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
	}{
		{StatusProcessing, StatusPending},
		{StatusShipped, StatusProcessing},
		{StatusShipped, StatusPending},
		{StatusPending, StatusPending},
		{StatusProcessing, StatusProcessing},
	}
	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to)
		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid, "%s -> %s", tc.from, tc.to)
		require.Equal(t, tc.from, invalid.From)
		require.Equal(t, tc.to, invalid.To)
	}
}

func TestCanTransitionCancel(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusProcessing, StatusShipped} {
		require.NoError(t, CanTransition(from, StatusCancelled), "%s -> cancelled", from)
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	for _, terminal := range []Status{StatusDelivered, StatusCancelled} {
		// Re-requesting the terminal state reports the state, not a bad edge.
		var already *AlreadyInStateError
		err := CanTransition(terminal, terminal)
		require.ErrorAs(t, err, &already)
		require.Equal(t, terminal, already.Status)

		for _, to := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
			if to == terminal {
				continue
			}
			var invalid *InvalidTransitionError
			require.ErrorAs(t, CanTransition(terminal, to), &invalid, "%s -> %s", terminal, to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err)
		require.Equal(t, Status(raw), s)
	}

	for _, raw := range []string{"", "Pending", "SHIPPED", "unknown", "canceled"} {
		_, err := ParseStatus(raw)
		require.ErrorIs(t, err, ErrInvalidStatus, "raw=%q", raw)
	}
}

func TestTransitionSetsTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	order := Order{Status: StatusPending}
	restocks, err := order.Transition(StatusShipped, now)
	require.NoError(t, err)
	require.Empty(t, restocks)
	require.NotNil(t, order.ShippedAt)
	require.Equal(t, now, *order.ShippedAt)

	later := now.Add(48 * time.Hour)
	restocks, err = order.Transition(StatusDelivered, later)
	require.NoError(t, err)
	require.Empty(t, restocks)
	require.True(t, order.IsDelivered)
	require.NotNil(t, order.DeliveredAt)
	require.Equal(t, later, *order.DeliveredAt)
	// ShippedAt keeps its original value.
	require.Equal(t, now, *order.ShippedAt)
}

func TestTransitionCancelReturnsRestocks(t *testing.T) {
	order := Order{
		Status: StatusProcessing,
		Items: []Item{
			{ProductID: 7, Quantity: 2},
			{ProductID: 9, Quantity: 1},
		},
	}
	restocks, err := order.Transition(StatusCancelled, time.Now())
	require.NoError(t, err)
	require.Len(t, restocks, 2)
	require.Equal(t, int64(7), restocks[0].ProductID)
	require.Equal(t, int64(2), restocks[0].Delta)
	require.Equal(t, int64(9), restocks[1].ProductID)
	require.Equal(t, int64(1), restocks[1].Delta)
}

func TestTransitionInvalidLeavesOrderUntouched(t *testing.T) {
	order := Order{Status: StatusDelivered, IsDelivered: true}
	_, err := order.Transition(StatusShipped, time.Now())
	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, StatusDelivered, order.Status)
}

func TestDecrements(t *testing.T) {
	order := Order{Items: []Item{
		{ProductID: 3, Quantity: 4},
		{ProductID: 5, Quantity: 1},
	}}
	decs := order.Decrements()
	require.Len(t, decs, 2)
	require.Equal(t, int64(-4), decs[0].Delta)
	require.Equal(t, int64(-1), decs[1].Delta)
}
