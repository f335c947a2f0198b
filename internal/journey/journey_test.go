package journey

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedJourney finds a seed whose search returns at least one event.
func completedJourney(t *testing.T, p Policy) (*memorySink, Outcome) {
	t.Helper()
	for seed := int64(0); seed < 100; seed++ {
		sink := &memorySink{}
		out, err := newTestJourney(sink, seed, p).Run(context.Background())
		require.NoError(t, err)
		if out.Status != StatusAbandoned {
			return sink, out
		}
	}
	t.Fatal("no journey got past the search")
	return nil, Outcome{}
}

func TestHappyPathStageOrder(t *testing.T) {
	sink, out := completedJourney(t, NoFailures())
	require.Equal(t, StatusCompleted, out.Status)
	assert.NoError(t, out.Err)

	records := sink.all()
	var calls []string
	var lastID string
	for _, r := range records {
		assert.Equal(t, LevelInfo, r.Level, r.Message)
		if r.CorrelationID != lastID {
			calls = append(calls, r.Service)
			lastID = r.CorrelationID
		}
	}

	k := len(calls) - 6
	require.GreaterOrEqual(t, k, 1)
	want := []string{"auth-service", "event-service"}
	for i := 0; i < k; i++ {
		want = append(want, "event-service")
	}
	want = append(want, "ticket-service", "order-service", "billing-service", "notification-service")
	assert.Equal(t, want, calls)

	assert.Equal(t, []string{
		"Checking availability for " + strconv.Itoa(out.State.NumTickets) + " tickets",
		"HTTP request",
		"Reserved " + strconv.Itoa(out.State.NumTickets) + " tickets",
		"HTTP request",
		"Purchased " + strconv.Itoa(out.State.NumTickets) + " tickets",
		"HTTP request",
		"Creating purchase event",
	}, messages(sink.byService("ticket-service")))
	assert.Equal(t, []string{"Processing purchase event", "Created Order", "Initiating payment"},
		messages(sink.byService("order-service")))
	assert.Equal(t, []string{"Payment successful", "HTTP request", "Creating Payment successful event"},
		messages(sink.byService("billing-service")))
	assert.Equal(t, []string{"Processing Payment successful event", "Order confirmation sent"},
		messages(sink.byService("notification-service")))

	assert.NotEmpty(t, out.State.OrderID)
	assert.Greater(t, out.State.Amount, 0.0)
	assert.GreaterOrEqual(t, out.State.NumTickets, 1)
	assert.LessOrEqual(t, out.State.NumTickets, 5)
}

func TestComplaintCarriesLoginUser(t *testing.T) {
	p := NoFailures()
	p.NotificationFailure = 1
	sink, out := completedJourney(t, p)
	require.Equal(t, StatusComplained, out.Status)

	var complaint *CustomerComplaint
	require.ErrorAs(t, out.Err, &complaint)

	login := sink.byService("auth-service")
	require.Equal(t, "User logged in", login[0].Message)
	assert.Equal(t, login[0].UserID, complaint.UserID)
	assert.Equal(t, login[0].UserID, out.UserID)
}

func TestFailureAbortsRemainder(t *testing.T) {
	p := NoFailures()
	p.LoginFailure = 1
	sink := &memorySink{}
	out, err := newTestJourney(sink, 1, p).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	assert.EqualError(t, out.Err, "Failed login - Invalid credentials")

	records := sink.all()
	require.Len(t, records, 2)
	assert.Equal(t, LevelError, records[0].Level)
	assert.Equal(t, 401, records[1].Status)
	assert.Empty(t, sink.byService("event-service"))
}

func TestJourneyStartsInThePast(t *testing.T) {
	sink := &memorySink{}
	_, err := newTestJourney(sink, 4, DefaultPolicy()).Run(context.Background())
	require.NoError(t, err)

	first := sink.all()[0]
	age := testNow.Sub(first.At)
	assert.LessOrEqual(t, age, 6*FrontEndActionDelay)
	assert.Greater(t, age, 5*FrontEndActionDelay-NetworkDelay)
}

func TestTimestampsMonotonicPerCorrelationID(t *testing.T) {
	for seed := int64(0); seed < 300; seed++ {
		sink := &memorySink{}
		_, err := newTestJourney(sink, seed, DefaultPolicy()).Run(context.Background())
		require.NoError(t, err)

		last := map[string]Record{}
		for _, r := range sink.all() {
			if prev, ok := last[r.CorrelationID]; ok {
				assert.False(t, r.At.Before(prev.At), "seed %d: %q before %q", seed, r.Message, prev.Message)
			}
			last[r.CorrelationID] = r
		}
	}
}

func TestEmptySearchAbandons(t *testing.T) {
	sink := &memorySink{}
	out, err := newDrawJourney(sink, 0, NoFailures()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusAbandoned, out.Status)
	assert.Empty(t, sink.byService("ticket-service"))
	assert.Contains(t, messages(sink.all()), "Found 0 events")
}
