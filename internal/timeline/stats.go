package timeline

// SumDurations totals active and idle time across every service's unclipped
// periods. Aggregates reflect full reconstructed history, not just the
// visible window; offline periods are excluded.
func SumDurations(timelines []ServiceTimeline) DurationTotals {
	var totals DurationTotals
	for _, tl := range timelines {
		for _, p := range tl.Periods {
			ms := p.End.Sub(p.Start).Milliseconds()
			switch p.Status {
			case StatusActive:
				totals.TotalActiveMs += ms
			case StatusIdle:
				totals.TotalIdleMs += ms
			}
		}
	}
	return totals
}
