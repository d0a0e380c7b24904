package timeline

// Project clips one service's periods to the shared window and converts them
// to normalized horizontal offsets for rendering. Periods fully outside the
// window are dropped. A service with no periods yields nil, which the caller
// must treat as "no data" rather than an error.
func Project(periods []ActivityPeriod, window TimeWindow) []ProjectedPeriod {
	if len(periods) == 0 || window.Duration <= 0 {
		return nil
	}

	out := make([]ProjectedPeriod, 0, len(periods))
	for _, p := range periods {
		start := p.Start
		if start.Before(window.Start) {
			start = window.Start
		}
		end := p.End
		if end.After(window.End) {
			end = window.End
		}

		widthPercent := float64(end.Sub(start)) / float64(window.Duration) * 100
		if widthPercent <= 0 {
			continue
		}
		leftPercent := float64(start.Sub(window.Start)) / float64(window.Duration) * 100

		out = append(out, ProjectedPeriod{
			ActivityPeriod: p,
			LeftPercent:    leftPercent,
			WidthPercent:   widthPercent,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
