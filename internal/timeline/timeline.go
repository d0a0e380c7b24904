// Package timeline reconstructs per-service activity timelines from a raw
// snapshot of subscriber session lifecycle events. The input is an unordered
// event log; the output is a gap-free sequence of non-overlapping
// active/idle/offline intervals per logical service, a shared time window for
// rendering them on one axis, and aggregate presence totals.
package timeline

import "time"

// Status labels one reconstructed activity interval.
type Status string

const (
	StatusActive  Status = "active"
	StatusIdle    Status = "idle"
	StatusOffline Status = "offline"
)

// ActivityPeriod is a half-open time interval with a status label.
// End is never before Start.
type ActivityPeriod struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status Status    `json:"status"`
}

// ServiceTimeline holds the reconstructed periods for one logical service.
// It is rebuilt wholesale on every poll cycle and never persisted.
type ServiceTimeline struct {
	Key     string           `json:"service_key"`
	Label   string           `json:"label"`
	Periods []ActivityPeriod `json:"periods"`
}

// TimeWindow is the shared range all services are projected against.
type TimeWindow struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// ProjectedPeriod is an ActivityPeriod with window-relative geometry for the
// renderer. Percent offsets are computed from the clipped interval; the
// embedded period keeps its original absolute times.
type ProjectedPeriod struct {
	ActivityPeriod
	LeftPercent  float64 `json:"left_percent"`
	WidthPercent float64 `json:"width_percent"`
}

// DurationTotals aggregates presence time across all services. Offline
// periods count toward neither total.
type DurationTotals struct {
	TotalActiveMs int64 `json:"total_active_ms"`
	TotalIdleMs   int64 `json:"total_idle_ms"`
}
