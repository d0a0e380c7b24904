package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscriber-activity-backend/internal/event"
)

var (
	baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testNow  = baseTime.Add(1 * time.Hour)
)

func at(offset time.Duration) time.Time {
	return baseTime.Add(offset)
}

func ev(eventType string, ts time.Time) event.LifecycleEvent {
	return event.LifecycleEvent{
		EventType: eventType,
		TS:        ts,
		Username:  "bng-1/rtr-7/circ-42",
		CircuitID: "circ-42",
		RemoteID:  "rtr-7",
	}
}

func evStatus(eventType string, ts time.Time, status string) event.LifecycleEvent {
	e := ev(eventType, ts)
	e.Status = status
	return e
}

func evAuth(ts time.Time, authState string) event.LifecycleEvent {
	e := ev(event.TypePolicyApply, ts)
	e.AuthState = authState
	return e
}

func TestBuildPeriods(t *testing.T) {
	t0 := at(0)
	t1 := at(10 * time.Minute)
	t2 := at(20 * time.Minute)

	testCases := []struct {
		name     string
		events   []event.LifecycleEvent
		expected []ActivityPeriod
	}{
		{
			name:     "single start extends to now",
			events:   []event.LifecycleEvent{ev(event.TypeSessionStart, t0)},
			expected: []ActivityPeriod{{Start: t0, End: testNow, Status: StatusActive}},
		},
		{
			name: "start update stop leaves trailing offline to now",
			events: []event.LifecycleEvent{
				ev(event.TypeSessionStart, t0),
				evStatus(event.TypeSessionUpdate, t1, "ACTIVE"),
				ev(event.TypeSessionStop, t2),
			},
			expected: []ActivityPeriod{
				{Start: t0, End: t2, Status: StatusActive},
				{Start: t2, End: testNow, Status: StatusOffline},
			},
		},
		{
			name: "idle transition bridges from prior period end",
			events: []event.LifecycleEvent{
				ev(event.TypeSessionStart, t0),
				evStatus(event.TypeSessionUpdate, t1, "IDLE"),
			},
			expected: []ActivityPeriod{
				{Start: t0, End: t0, Status: StatusActive},
				{Start: t0, End: testNow, Status: StatusIdle},
			},
		},
		{
			name: "rejection followed by start swallows the gap",
			events: []event.LifecycleEvent{
				ev(event.TypeSessionStart, t0),
				evAuth(t1, "REJECTED"),
				ev(event.TypeSessionStart, t2),
			},
			expected: []ActivityPeriod{
				{Start: t0, End: t1, Status: StatusActive},
				{Start: t2, End: testNow, Status: StatusActive},
			},
		},
		{
			name: "rejection followed by update inserts offline period",
			events: []event.LifecycleEvent{
				ev(event.TypeSessionStart, t0),
				evAuth(t1, "rejected"),
				evStatus(event.TypeSessionUpdate, t2, "ACTIVE"),
			},
			expected: []ActivityPeriod{
				{Start: t0, End: t1, Status: StatusActive},
				{Start: t1, End: t2, Status: StatusOffline},
				{Start: t2, End: testNow, Status: StatusActive},
			},
		},
		{
			name: "rejection as last event goes offline until now",
			events: []event.LifecycleEvent{
				ev(event.TypeSessionStart, t0),
				evAuth(t1, "REJECTED"),
			},
			expected: []ActivityPeriod{
				{Start: t0, End: t1, Status: StatusActive},
				{Start: t1, End: testNow, Status: StatusOffline},
			},
		},
		{
			name: "policy apply with authorized state behaves like update",
			events: []event.LifecycleEvent{
				ev(event.TypeSessionStart, t0),
				evAuth(t1, "AUTHORIZED"),
			},
			expected: []ActivityPeriod{
				{Start: t0, End: testNow, Status: StatusActive},
			},
		},
		{
			name: "update without a prior period opens one at the event time",
			events: []event.LifecycleEvent{
				evStatus(event.TypeSessionUpdate, t1, "IDLE"),
			},
			expected: []ActivityPeriod{
				{Start: t1, End: testNow, Status: StatusIdle},
			},
		},
		{
			name: "same status updates extend the open period",
			events: []event.LifecycleEvent{
				ev(event.TypeSessionStart, t0),
				evStatus(event.TypeSessionUpdate, t1, "ACTIVE"),
				evStatus(event.TypeSessionUpdate, t2, "active"),
			},
			expected: []ActivityPeriod{
				{Start: t0, End: testNow, Status: StatusActive},
			},
		},
		{
			name: "stop with following non-start inserts bounded offline period",
			events: []event.LifecycleEvent{
				ev(event.TypeSessionStart, t0),
				ev(event.TypeSessionStop, t1),
				evStatus(event.TypeSessionUpdate, t2, "ACTIVE"),
			},
			expected: []ActivityPeriod{
				{Start: t0, End: t1, Status: StatusActive},
				{Start: t1, End: t2, Status: StatusOffline},
				{Start: t2, End: testNow, Status: StatusActive},
			},
		},
		{
			name: "unrecognized event types are ignored",
			events: []event.LifecycleEvent{
				ev(event.TypeSessionStart, t0),
				ev("SESSION_PING", t1),
			},
			expected: []ActivityPeriod{
				{Start: t0, End: testNow, Status: StatusActive},
			},
		},
		{
			name:     "empty event list yields no periods",
			events:   nil,
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			periods := BuildPeriods(tc.events, testNow)
			assert.Equal(t, tc.expected, periods)
		})
	}
}

// A second SESSION_START while a period is still open appends a new period
// without closing the old one, leaving two periods that both extend. This
// mirrors the deployed behavior; the test pins it so a change is deliberate.
func TestBuildPeriodsDoubleStartKeepsBothOpen(t *testing.T) {
	t0 := at(0)
	t1 := at(5 * time.Minute)

	periods := BuildPeriods([]event.LifecycleEvent{
		ev(event.TypeSessionStart, t0),
		ev(event.TypeSessionStart, t1),
	}, testNow)

	require.Len(t, periods, 2)
	assert.Equal(t, ActivityPeriod{Start: t0, End: t0, Status: StatusActive}, periods[0])
	assert.Equal(t, ActivityPeriod{Start: t1, End: testNow, Status: StatusActive}, periods[1])
}

func TestBuildPeriodsIsIdempotent(t *testing.T) {
	events := []event.LifecycleEvent{
		ev(event.TypeSessionStart, at(0)),
		evStatus(event.TypeSessionUpdate, at(5*time.Minute), "IDLE"),
		evAuth(at(10*time.Minute), "REJECTED"),
		evStatus(event.TypeSessionUpdate, at(15*time.Minute), "ACTIVE"),
		ev(event.TypeSessionStop, at(20*time.Minute)),
	}

	first := BuildPeriods(events, testNow)
	second := BuildPeriods(events, testNow)
	assert.Equal(t, first, second)
}

// For any non-empty recognized event list, the final period must reach now:
// either an open period auto-extended, or an offline tail from a stop or
// rejection with no successor.
func TestBuildPeriodsCoverageToNow(t *testing.T) {
	sequences := [][]event.LifecycleEvent{
		{ev(event.TypeSessionStart, at(0))},
		{ev(event.TypeSessionStart, at(0)), evStatus(event.TypeSessionUpdate, at(time.Minute), "IDLE")},
		{ev(event.TypeSessionStart, at(0)), ev(event.TypeSessionStop, at(time.Minute))},
		{ev(event.TypeSessionStart, at(0)), evAuth(at(time.Minute), "REJECTED")},
	}

	for _, events := range sequences {
		periods := BuildPeriods(events, testNow)
		require.NotEmpty(t, periods)
		assert.True(t, periods[len(periods)-1].End.Equal(testNow))
	}
}

func TestBuildPeriodsStartOrderIsNonDecreasing(t *testing.T) {
	events := []event.LifecycleEvent{
		ev(event.TypeSessionStart, at(0)),
		evStatus(event.TypeSessionUpdate, at(2*time.Minute), "IDLE"),
		evStatus(event.TypeSessionUpdate, at(4*time.Minute), "ACTIVE"),
		evAuth(at(6*time.Minute), "REJECTED"),
		evStatus(event.TypeSessionUpdate, at(8*time.Minute), "ACTIVE"),
		ev(event.TypeSessionStop, at(10*time.Minute)),
	}

	periods := BuildPeriods(events, testNow)
	for i := 1; i < len(periods); i++ {
		assert.False(t, periods[i].Start.Before(periods[i-1].Start),
			"period %d starts before period %d", i, i-1)
	}
	for _, p := range periods {
		assert.False(t, p.End.Before(p.Start))
	}
}

func TestBuildTimelines(t *testing.T) {
	t0 := at(0)

	evA := ev(event.TypeSessionStart, t0)
	evB := event.LifecycleEvent{
		EventType: event.TypeSessionStart,
		TS:        t0.Add(time.Minute),
		CircuitID: "circ-99",
		RemoteID:  "rtr-9",
	}

	timelines := BuildTimelines([]event.LifecycleEvent{evB, evA}, testNow)
	require.Len(t, timelines, 2)

	// Sorted by service key: evA's username sorts before evB's circuit id.
	assert.Equal(t, "bng-1/rtr-7/circ-42", timelines[0].Key)
	assert.Equal(t, "rtr-7 - circ-42", timelines[0].Label)
	assert.Equal(t, "circ-99", timelines[1].Key)
	assert.Equal(t, "rtr-9 - circ-99", timelines[1].Label)

	for _, tl := range timelines {
		require.Len(t, tl.Periods, 1)
		assert.Equal(t, StatusActive, tl.Periods[0].Status)
	}
}

func TestBuildTimelinesLabelTruncation(t *testing.T) {
	e := event.LifecycleEvent{
		EventType: event.TypeSessionStart,
		TS:        at(0),
		CircuitID: "eth 0/0/1:100.200 vlan-tagged access node 7",
		RemoteID:  "rtr-long-name-01",
	}

	timelines := BuildTimelines([]event.LifecycleEvent{e}, testNow)
	require.Len(t, timelines, 1)
	assert.Len(t, timelines[0].Label, 40)
}

func TestBuildTimelinesEmptyInput(t *testing.T) {
	assert.Empty(t, BuildTimelines(nil, testNow))
}
