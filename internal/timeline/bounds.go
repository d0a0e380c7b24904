package timeline

import "time"

// windowFloor caps how far back the shared render window may reach.
const windowFloor = 24 * time.Hour

// ComputeWindow derives the one shared time window across all services'
// periods. The window ends at now and starts at the earliest period start,
// floored at now-24h. With no periods at all the window collapses to
// [now, now].
func ComputeWindow(timelines []ServiceTimeline, now time.Time) TimeWindow {
	oneDayAgo := now.Add(-windowFloor)

	earliest := now
	for _, tl := range timelines {
		for _, p := range tl.Periods {
			if p.Start.Before(earliest) {
				earliest = p.Start
			}
		}
	}

	start := earliest
	if earliest.Before(oneDayAgo) {
		start = oneDayAgo
	}

	return TimeWindow{
		Start:    start,
		End:      now,
		Duration: now.Sub(start),
	}
}
